// Package session holds the authenticated session: the bearer token, its
// persistence, and the navigation gate that depends on it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Session is a point-in-time view of the authentication state.
type Session struct {
	Token string
}

// LoggedIn reports whether a token is present.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Manager is the process-wide session store. It keeps the token in memory,
// mirrors it to a Store, and notifies subscribers after every change.
type Manager struct {
	mu     sync.RWMutex
	token  string
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Session)
}

// NewManager creates a Manager backed by store. A nil store keeps the session
// in memory only.
func NewManager(store Store, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]func(Session)),
	}
}

// Restore rehydrates the token from the store.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	rec, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.token = rec.Token
	m.mu.Unlock()

	m.logger.Debug().Bool("logged_in", rec.Token != "").Msg("session restored")
	m.notify()
	return nil
}

// Login makes token the active credential for all subsequent requests. The
// token is not inspected.
func (m *Manager) Login(ctx context.Context, token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(ctx, Record{Token: token, SavedAt: m.now()}); err != nil {
			m.logger.Warn().Err(err).Msg("failed to persist session")
		}
	}

	m.logger.Info().Msg("logged in")
	m.notify()
}

// Logout clears the token locally. The server is not contacted.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("failed to clear persisted session")
		}
	}

	m.logger.Info().Msg("logged out")
	m.notify()
}

// CurrentToken returns the active token and whether one is present.
func (m *Manager) CurrentToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Current returns the current session.
func (m *Manager) Current() Session {
	tok, _ := m.CurrentToken()
	return Session{Token: tok}
}

// Subscribe registers fn to be called after every login, logout or restore.
// The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify() {
	s := m.Current()

	m.subMu.Lock()
	fns := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
