package session

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthenticated is returned when an operation requires a token and none
// is present, or when the server rejects the presented token.
var ErrUnauthenticated = errors.New("not authenticated")

// Record is the persisted form of a session.
type Record struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Store defines persistence operations for the session token.
type Store interface {
	// Load returns the persisted record. A missing record is returned as the
	// zero Record with a nil error.
	Load(ctx context.Context) (Record, error)
	// Save replaces the persisted record.
	Save(ctx context.Context, r Record) error
	// Clear removes the persisted record.
	Clear(ctx context.Context) error
}

// TokenSource provides the current bearer token.
type TokenSource interface {
	CurrentToken() (string, bool)
}
