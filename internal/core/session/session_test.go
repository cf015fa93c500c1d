package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rec     Record
	saves   int
	clears  int
	failErr error
}

func (s *memStore) Load(context.Context) (Record, error) {
	return s.rec, s.failErr
}

func (s *memStore) Save(_ context.Context, r Record) error {
	s.saves++
	if s.failErr != nil {
		return s.failErr
	}
	s.rec = r
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.clears++
	if s.failErr != nil {
		return s.failErr
	}
	s.rec = Record{}
	return nil
}

func TestManager_LoginLogout(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	m := NewManager(store, zerolog.Nop())

	_, ok := m.CurrentToken()
	assert.False(t, ok, "new manager starts logged out")

	m.Login(ctx, "T1")
	tok, ok := m.CurrentToken()
	assert.True(t, ok)
	assert.Equal(t, "T1", tok)
	assert.Equal(t, "T1", store.rec.Token)
	assert.False(t, store.rec.SavedAt.IsZero())

	m.Logout(ctx)
	_, ok = m.CurrentToken()
	assert.False(t, ok)
	assert.Equal(t, "", store.rec.Token)
	assert.Equal(t, 1, store.clears)
}

func TestManager_Restore(t *testing.T) {
	store := &memStore{rec: Record{Token: "persisted"}}
	m := NewManager(store, zerolog.Nop())

	require.NoError(t, m.Restore(context.Background()))
	assert.Equal(t, Session{Token: "persisted"}, m.Current())
	assert.True(t, m.Current().LoggedIn())
}

func TestManager_RestoreError(t *testing.T) {
	store := &memStore{failErr: errors.New("disk on fire")}
	m := NewManager(store, zerolog.Nop())

	assert.Error(t, m.Restore(context.Background()))
	assert.False(t, m.Current().LoggedIn())
}

func TestManager_PersistFailureKeepsMemoryState(t *testing.T) {
	store := &memStore{failErr: errors.New("read-only")}
	m := NewManager(store, zerolog.Nop())

	m.Login(context.Background(), "T1")
	tok, ok := m.CurrentToken()
	assert.True(t, ok)
	assert.Equal(t, "T1", tok)
}

func TestManager_NilStore(t *testing.T) {
	m := NewManager(nil, zerolog.Nop())
	require.NoError(t, m.Restore(context.Background()))

	m.Login(context.Background(), "T1")
	assert.True(t, m.Current().LoggedIn())
	m.Logout(context.Background())
	assert.False(t, m.Current().LoggedIn())
}

func TestManager_Subscribe(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, zerolog.Nop())

	var seen []Session
	unsubscribe := m.Subscribe(func(s Session) { seen = append(seen, s) })

	m.Login(ctx, "T1")
	m.Logout(ctx)
	unsubscribe()
	m.Login(ctx, "T2")

	assert.Equal(t, []Session{{Token: "T1"}, {Token: ""}}, seen)
}
