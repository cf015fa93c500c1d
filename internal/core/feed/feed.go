// Package feed is the read-only view over the external user collection.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hay-kot/leadr/internal/core/session"
)

// ErrStale is returned when a newer Enter superseded the call before its
// response arrived.
var ErrStale = errors.New("stale feed response")

// Address is the postal address of an external user.
type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// Company is the employer of an external user.
type Company struct {
	Name string `json:"name"`
}

// User is a record from the external data endpoint.
type User struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Company  Company `json:"company"`
}

// Source fetches the external collection.
type Source interface {
	ExternalUsers(ctx context.Context) ([]User, error)
}

// Gate decides whether a route may be entered.
type Gate interface {
	CanEnter(route string) session.Decision
}

// Viewer performs one gated fetch per entry into the external view.
type Viewer struct {
	gate   Gate
	source Source

	mu  sync.Mutex
	gen uint64
}

// NewViewer creates a Viewer.
func NewViewer(gate Gate, source Source) *Viewer {
	return &Viewer{gate: gate, source: source}
}

// Enter checks the gate and fetches the collection once. It returns
// session.ErrUnauthenticated when the gate redirects, and ErrStale when a
// later Enter or Leave happened while the request was outstanding.
func (v *Viewer) Enter(ctx context.Context) ([]User, error) {
	if v.gate.CanEnter(session.RouteExternal) != session.Allow {
		return nil, session.ErrUnauthenticated
	}

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	users, err := v.source.ExternalUsers(ctx)

	v.mu.Lock()
	current := v.gen
	v.mu.Unlock()
	if gen != current {
		return nil, ErrStale
	}

	if err != nil {
		return nil, fmt.Errorf("load external data: %w", err)
	}
	return users, nil
}

// Leave invalidates any outstanding Enter.
func (v *Viewer) Leave() {
	v.mu.Lock()
	v.gen++
	v.mu.Unlock()
}
