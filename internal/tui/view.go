package tui

import "github.com/hay-kot/leadr/internal/core/session"

// UIState represents what has focus within the current route.
type UIState int

const (
	stateNormal UIState = iota
	stateEditing
	stateConfirming
)

// routeTitle is the header shown for each route.
func routeTitle(route string) string {
	switch route {
	case session.RouteLogin:
		return "Login"
	case session.RouteExternal:
		return "External Data"
	default:
		return "Dashboard"
	}
}
