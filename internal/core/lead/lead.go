// Package lead defines the CRM lead record and the rules for its editable fields.
package lead

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors for lead operations.
var (
	// ErrValidation is returned when lead fields are missing or malformed,
	// either before a request is sent or when the server rejects the input.
	ErrValidation = errors.New("invalid lead")
	// ErrNotFound is returned when the targeted lead no longer exists.
	ErrNotFound = errors.New("lead not found")
)

// DateLayout is the date-only layout used for display and edit prefill.
const DateLayout = "2006-01-02"

// Level is the qualitative interest level of a lead.
type Level string

const (
	LevelVeryHot Level = "Very Hot"
	LevelHot     Level = "Hot"
	LevelCold    Level = "Cold"
)

// Levels returns all levels in display order.
func Levels() []Level {
	return []Level{LevelVeryHot, LevelHot, LevelCold}
}

// Valid reports whether l is one of the exact wire strings.
func (l Level) Valid() bool {
	return slices.Contains(Levels(), l)
}

// ParseLevel resolves user input to a Level. Matching ignores case, spaces,
// dashes and underscores so "very-hot" and "VeryHot" both resolve.
func ParseLevel(s string) (Level, error) {
	key := normalizeLevel(s)
	for _, l := range Levels() {
		if normalizeLevel(string(l)) == key {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", s)
}

func normalizeLevel(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// Fields holds every mutable field of a lead. It is the body of create and
// update requests.
type Fields struct {
	FirstName     string `json:"firstName" validate:"notblank"`
	LastName      string `json:"lastName" validate:"notblank"`
	Age           int    `json:"age" validate:"gte=1,lte=150"`
	DateOfContact string `json:"dateOfContact" validate:"required,datetime=2006-01-02"`
	Level         Level  `json:"level" validate:"level"`
	Notes         string `json:"notes" validate:"notblank"`
}

// Lead is a CRM contact record. ID is assigned by the server.
type Lead struct {
	ID string `json:"id"`
	Fields
}

// UnmarshalJSON accepts the legacy "_id" key used by document-store backends
// when "id" is not present.
func (l *Lead) UnmarshalJSON(data []byte) error {
	type plain Lead
	var raw struct {
		plain
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = Lead(raw.plain)
	if l.ID == "" {
		l.ID = raw.LegacyID
	}
	return nil
}

// FullName joins first and last name for display.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// ContactDate returns the date portion of DateOfContact.
func (l Lead) ContactDate() string {
	return TruncateDate(l.DateOfContact)
}

// EditFields returns a snapshot of the lead's fields suitable for prefilling a
// draft. The contact date is truncated to its date portion.
func (l Lead) EditFields() Fields {
	f := l.Fields
	f.DateOfContact = TruncateDate(f.DateOfContact)
	return f
}

// TruncateDate keeps the first 10 characters of an ISO-8601 timestamp,
// discarding any time of day.
func TruncateDate(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
