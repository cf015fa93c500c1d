package crm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/leadr/internal/core/lead"
	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/devserver"
)

func newDevAPI(t *testing.T) (*Client, *session.Manager) {
	t.Helper()

	srv := httptest.NewServer(devserver.New(devserver.Config{
		Username: "a",
		Password: "b",
		Secret:   "test-secret",
		Logger:   zerolog.Nop(),
	}).Handler())
	t.Cleanup(srv.Close)

	sess := session.NewManager(nil, zerolog.Nop())
	c, err := New(sess, Options{BaseURL: srv.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return c, sess
}

func sampleFields() lead.Fields {
	return lead.Fields{
		FirstName:     "Jo",
		LastName:      "Ann",
		Age:           30,
		DateOfContact: "2024-01-05",
		Level:         lead.LevelHot,
		Notes:         "x",
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(session.NewManager(nil, zerolog.Nop()), Options{BaseURL: "localhost:5000"})
	assert.Error(t, err)
}

func TestLogin_Failure(t *testing.T) {
	c, _ := newDevAPI(t)

	_, err := c.Login(context.Background(), "a", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Equal(t, "Invalid credentials", Message(err))
}

func TestLoginThenListCarriesBearer(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"T1"}`))
		case "/leads":
			gotAuth.Store(r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	sess := session.NewManager(nil, zerolog.Nop())
	c, err := New(sess, Options{BaseURL: srv.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	token, err := c.Login(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
	sess.Login(ctx, token)

	leads, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.Equal(t, "Bearer T1", gotAuth.Load())
}

func TestAuthenticatedCallsRequireToken(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	ctx := context.Background()
	c, err := New(session.NewManager(nil, zerolog.Nop()), Options{BaseURL: srv.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = c.List(ctx)
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
	_, err = c.Create(ctx, sampleFields())
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
	_, err = c.Update(ctx, "L1", sampleFields())
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.ErrorIs(t, c.Delete(ctx, "L1"), session.ErrUnauthenticated)
	_, err = c.ExternalUsers(ctx)
	assert.ErrorIs(t, err, session.ErrUnauthenticated)

	assert.Equal(t, int32(0), hits.Load(), "no request may be sent without a token")
}

func TestCreateThenList(t *testing.T) {
	ctx := context.Background()
	c, sess := newDevAPI(t)

	token, err := c.Login(ctx, "a", "b")
	require.NoError(t, err)
	sess.Login(ctx, token)

	before, err := c.List(ctx)
	require.NoError(t, err)

	created, err := c.Create(ctx, sampleFields())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	after, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)

	got := after[len(after)-1]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "2024-01-05", got.ContactDate())
	assert.Equal(t, sampleFields(), got.EditFields())
	for _, l := range before {
		assert.NotEqual(t, created.ID, l.ID)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	c, sess := newDevAPI(t)

	token, err := c.Login(ctx, "a", "b")
	require.NoError(t, err)
	sess.Login(ctx, token)

	created, err := c.Create(ctx, sampleFields())
	require.NoError(t, err)

	changed := sampleFields()
	changed.Level = lead.LevelVeryHot
	updated, err := c.Update(ctx, created.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, lead.LevelVeryHot, updated.Level)

	require.NoError(t, c.Delete(ctx, created.ID))

	leads, err := c.List(ctx)
	require.NoError(t, err)
	for _, l := range leads {
		assert.NotEqual(t, created.ID, l.ID)
	}

	_, err = c.Update(ctx, created.ID, changed)
	assert.ErrorIs(t, err, lead.ErrNotFound)
	assert.ErrorIs(t, c.Delete(ctx, created.ID), lead.ErrNotFound)
}

func TestCreateValidatesBeforeSending(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	ctx := context.Background()
	sess := session.NewManager(nil, zerolog.Nop())
	sess.Login(ctx, "T1")
	c, err := New(sess, Options{BaseURL: srv.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	fields := sampleFields()
	fields.FirstName = ""
	_, err = c.Create(ctx, fields)
	assert.ErrorIs(t, err, lead.ErrValidation)
	assert.Equal(t, int32(0), hits.Load())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantIs  error
		wantMsg string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Invalid token"}`, session.ErrUnauthenticated, "Invalid token"},
		{"forbidden", http.StatusForbidden, ``, session.ErrUnauthenticated, "Forbidden"},
		{"not found", http.StatusNotFound, `{"message":"Lead not found"}`, lead.ErrNotFound, "Lead not found"},
		{"bad request", http.StatusBadRequest, `{"message":"age is required"}`, lead.ErrValidation, "age is required"},
		{"unprocessable", http.StatusUnprocessableEntity, `{"error":"bad level"}`, lead.ErrValidation, "bad level"},
		{"server error text", http.StatusInternalServerError, `database exploded`, nil, "database exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			ctx := context.Background()
			sess := session.NewManager(nil, zerolog.Nop())
			sess.Login(ctx, "T1")
			c, err := New(sess, Options{BaseURL: srv.URL, Logger: zerolog.Nop()})
			require.NoError(t, err)

			_, err = c.List(ctx)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.wantMsg, Message(err))
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctx := context.Background()
	sess := session.NewManager(nil, zerolog.Nop())
	sess.Login(ctx, "T1")
	c, err := New(sess, Options{BaseURL: url, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = c.List(ctx)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, reqErr.Status)
	assert.Error(t, reqErr.Err)
}

func TestExternalUsers(t *testing.T) {
	ctx := context.Background()
	c, sess := newDevAPI(t)

	token, err := c.Login(ctx, "a", "b")
	require.NoError(t, err)
	sess.Login(ctx, token)

	users, err := c.ExternalUsers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, users)
	assert.Equal(t, "Gwenborough", users[0].Address.City)
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"id":"L1"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	sess := session.NewManager(nil, zerolog.Nop())
	sess.Login(ctx, "T1")
	c, err := New(sess, Options{BaseURL: srv.URL + "/", RateLimit: 100, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = c.Create(ctx, sampleFields())
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "Bearer T1", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}
