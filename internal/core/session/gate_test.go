package session

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGate_CanEnter(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, zerolog.Nop())
	g := NewGate(m, nil)

	tests := []struct {
		route    string
		loggedIn bool
		want     Decision
	}{
		{RouteLogin, false, Allow},
		{RouteLogin, true, Allow},
		{RouteDashboard, false, RedirectLogin},
		{RouteDashboard, true, Allow},
		{RouteExternal, false, RedirectLogin},
		{RouteExternal, true, Allow},
		{"/external/users", false, RedirectLogin},
		{"/about", false, Allow},
	}

	for _, tt := range tests {
		name := tt.route + "/" + tt.want.String()
		t.Run(name, func(t *testing.T) {
			if tt.loggedIn {
				m.Login(ctx, "T1")
			} else {
				m.Logout(ctx)
			}
			assert.Equal(t, tt.want, g.CanEnter(tt.route))
		})
	}
}

func TestGate_CustomPatterns(t *testing.T) {
	m := NewManager(nil, zerolog.Nop())
	g := NewGate(m, []string{"/reports/**", "[bad"})

	assert.True(t, g.IsProtected("/reports/q1"))
	assert.False(t, g.IsProtected("/"))
	assert.Equal(t, Allow, g.CanEnter("/"))
	assert.Equal(t, RedirectLogin, g.CanEnter("/reports/q1"))
}

// The gate allows entry iff the most recent operation was a login.
func TestGate_FollowsLatestOperation(t *testing.T) {
	ctx := context.Background()
	sequences := [][]string{
		{},
		{"login"},
		{"logout"},
		{"login", "logout"},
		{"logout", "login"},
		{"login", "login", "logout", "login"},
		{"login", "logout", "logout"},
	}

	for _, seq := range sequences {
		m := NewManager(nil, zerolog.Nop())
		g := NewGate(m, nil)

		want := RedirectLogin
		for _, op := range seq {
			switch op {
			case "login":
				m.Login(ctx, "T")
				want = Allow
			case "logout":
				m.Logout(ctx)
				want = RedirectLogin
			}
			// evaluated on every step, never cached
			assert.Equal(t, want, g.CanEnter(RouteDashboard), "sequence %v", seq)
		}
		assert.Equal(t, want, g.CanEnter(RouteExternal), "sequence %v", seq)
	}
}
