package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/hay-kot/leadr/internal/core/session"
)

// keyMap holds the bindings of the non-form views.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	External key.Binding
	Back     key.Binding
	Logout   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		New: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "new lead"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", keyEnter),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		External: key.NewBinding(
			key.WithKeys("tab", "o"),
			key.WithHelp("tab", "external data"),
		),
		Back: key.NewBinding(
			key.WithKeys("tab", "esc", "b"),
			key.WithHelp("tab", "dashboard"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", keyCtrlC),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown for route.
func (k keyMap) ShortHelp(route string) []key.Binding {
	switch route {
	case session.RouteExternal:
		return []key.Binding{k.Up, k.Down, k.Refresh, k.Back, k.Logout, k.Quit}
	case session.RouteLogin:
		return nil
	default:
		return []key.Binding{k.New, k.Edit, k.Delete, k.Refresh, k.External, k.Logout, k.Quit}
	}
}
