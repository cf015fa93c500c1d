package session

import (
	"github.com/bmatcuk/doublestar/v4"
)

// Routes known to the client.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/"
	RouteExternal  = "/external"
)

// DefaultProtectedRoutes are the route patterns that require a token.
var DefaultProtectedRoutes = []string{RouteDashboard, RouteExternal, RouteExternal + "/**"}

// Decision is the outcome of a navigation check.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	default:
		return "unknown"
	}
}

// Gate decides whether a route may be entered. It holds no state of its own
// and reads the token on every call.
type Gate struct {
	tokens    TokenSource
	protected []string
}

// NewGate creates a gate over tokens. Routes matching any of the doublestar
// patterns in protected require a token. Nil protected uses
// DefaultProtectedRoutes.
func NewGate(tokens TokenSource, protected []string) *Gate {
	if protected == nil {
		protected = DefaultProtectedRoutes
	}
	return &Gate{tokens: tokens, protected: protected}
}

// CanEnter returns Allow when route is unprotected or a token is present.
func (g *Gate) CanEnter(route string) Decision {
	if route == RouteLogin || !g.IsProtected(route) {
		return Allow
	}
	return CanEnter(g.tokens)
}

// IsProtected reports whether route matches a protected pattern. Malformed
// patterns never match.
func (g *Gate) IsProtected(route string) bool {
	for _, pattern := range g.protected {
		if ok, err := doublestar.Match(pattern, route); err == nil && ok {
			return true
		}
	}
	return false
}

// CanEnter is the gate decision for a protected view.
func CanEnter(tokens TokenSource) Decision {
	if _, ok := tokens.CurrentToken(); ok {
		return Allow
	}
	return RedirectLogin
}
