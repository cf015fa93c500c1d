package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/leadr/internal/core/lead"
	"github.com/hay-kot/leadr/internal/core/validate"
	"github.com/hay-kot/leadr/internal/dashboard"
	"github.com/hay-kot/leadr/internal/styles"
)

// LeadForm wraps a huh.Form bound to a dashboard draft.
type LeadForm struct {
	form *huh.Form
	mode dashboard.Mode

	firstName string
	lastName  string
	age       string
	date      string
	level     lead.Level
	notes     string
}

// NewLeadForm creates a form prefilled from draft. The title follows the
// draft mode.
func NewLeadForm(draft dashboard.Draft) *LeadForm {
	f := &LeadForm{
		mode:      draft.Mode,
		firstName: draft.Fields.FirstName,
		lastName:  draft.Fields.LastName,
		date:      draft.Fields.DateOfContact,
		level:     draft.Fields.Level,
		notes:     draft.Fields.Notes,
	}
	if draft.Fields.Age != 0 {
		f.age = strconv.Itoa(draft.Fields.Age)
	}
	if f.level == "" {
		f.level = lead.LevelHot
	}

	levels := make([]huh.Option[lead.Level], 0, len(lead.Levels()))
	for _, l := range lead.Levels() {
		levels = append(levels, huh.NewOption(string(l), l))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("First Name").
				Value(&f.firstName).
				Validate(requiredValidator("first name")),
			huh.NewInput().
				Title("Last Name").
				Value(&f.lastName).
				Validate(requiredValidator("last name")),
			huh.NewInput().
				Title("Age").
				Value(&f.age).
				Validate(validateAge),
			huh.NewInput().
				Title("Date of Contact").
				Placeholder(lead.DateLayout).
				Value(&f.date).
				Validate(validateDate),
			huh.NewSelect[lead.Level]().
				Title("Level").
				Options(levels...).
				Value(&f.level),
			huh.NewText().
				Title("Notes").
				Description("Markdown is supported").
				Value(&f.notes).
				Validate(requiredValidator("notes")),
		).Title(f.Title()),
	).WithTheme(styles.FormTheme()).WithShowHelp(true)

	return f
}

// Title is the form heading for the draft mode.
func (f *LeadForm) Title() string {
	if f.mode.IsCreating() {
		return "Add New Lead"
	}
	return "Update Lead"
}

// Mode returns the mode the form was opened in.
func (f *LeadForm) Mode() dashboard.Mode {
	return f.mode
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *LeadForm) Form() *huh.Form {
	return f.form
}

// Fields converts the form values into lead fields. An unparsable age becomes
// zero and is reported by validation.
func (f *LeadForm) Fields() lead.Fields {
	age, _ := strconv.Atoi(strings.TrimSpace(f.age))
	return lead.Fields{
		FirstName:     strings.TrimSpace(f.firstName),
		LastName:      strings.TrimSpace(f.lastName),
		Age:           age,
		DateOfContact: strings.TrimSpace(f.date),
		Level:         f.level,
		Notes:         f.notes,
	}
}

// View renders the form.
func (f *LeadForm) View() string {
	return f.form.View()
}

func requiredValidator(label string) func(string) error {
	return func(s string) error {
		return validate.Required(label, s)
	}
}

func validateAge(s string) error {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("age must be a number")
	}
	if age < 1 || age > 150 {
		return errors.New("age must be between 1 and 150")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(lead.DateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}
