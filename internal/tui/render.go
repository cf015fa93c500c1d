package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/styles"
)

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.route {
	case session.RouteLogin:
		body = m.renderLogin()
	case session.RouteExternal:
		body = m.renderExternal()
	default:
		body = m.renderDashboard()
	}

	mainView := lipgloss.JoinVertical(
		lipgloss.Left,
		bannerStyle.Render(styles.Banner),
		titleStyle.Render(m.title()),
		"",
		body,
		"",
		m.renderFooter(),
	)

	if m.state == stateConfirming {
		return m.modal.Overlay(mainView, m.width, m.height)
	}
	return mainView
}

func (m Model) title() string {
	if m.route == session.RouteDashboard && m.state == stateEditing && m.form != nil {
		return m.form.Title()
	}
	return routeTitle(m.route)
}

func (m Model) renderLogin() string {
	if m.login == nil {
		return m.spinner.View() + " Signing in..."
	}
	return formStyle.Render(m.login.View())
}

func (m Model) renderDashboard() string {
	if m.state == stateEditing && m.form != nil {
		return formStyle.Render(m.form.View())
	}
	if m.dash == nil {
		return ""
	}

	snap := m.dash.Snapshot()
	if !snap.Loaded {
		if m.loading {
			return m.spinner.View() + " Loading leads..."
		}
		return mutedStyle.Render("Leads could not be loaded. Press r to retry.")
	}
	if len(snap.Leads) == 0 {
		return mutedStyle.Render("No leads yet. Press n to add one.")
	}

	parts := []string{
		m.table.View(),
		mutedStyle.Render(fmt.Sprintf("%d lead(s)", len(snap.Leads))),
	}

	if l, ok := m.selectedLead(); ok {
		width := m.width - 4
		if width <= 0 {
			width = 76
		}
		header := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(l.FullName()),
			"  ",
			styles.LevelStyle(l.Level).Render(string(l.Level)),
		)
		notes := m.notes.Render(l.Notes, width-4)
		parts = append(parts, "", notesStyle.Width(width).Render(header+"\n\n"+notes))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderExternal() string {
	if m.loading && len(m.users) == 0 {
		return m.spinner.View() + " Loading external data..."
	}
	if len(m.users) == 0 {
		return mutedStyle.Render("No external data.")
	}

	cards := make([]string, 0, len(m.users))
	for i, u := range m.users {
		lines := []string{
			lipgloss.NewStyle().Bold(true).Render(u.Name),
			mutedStyle.Render("@" + u.Username),
			"Email:   " + u.Email,
			"Phone:   " + u.Phone,
			"Address: " + strings.TrimSpace(fmt.Sprintf("%s %s, %s %s", u.Address.Street, u.Address.Suite, u.Address.City, u.Address.Zipcode)),
			"Company: " + u.Company.Name,
		}

		style := styles.CardStyle
		if i == m.cursor {
			style = style.BorderForeground(styles.ColorBlue)
		}
		cards = append(cards, style.Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) renderFooter() string {
	var lines []string

	switch {
	case m.err != nil:
		lines = append(lines, errorStyle.Render("✘ "+m.err.Error()))
	case m.loading:
		lines = append(lines, " "+m.spinner.View()+" Working...")
	case m.status != "":
		lines = append(lines, statusStyle.Render("✔ "+m.status))
	}

	if m.state == stateNormal {
		if bindings := m.keys.ShortHelp(m.route); len(bindings) > 0 {
			lines = append(lines, lipgloss.NewStyle().PaddingLeft(1).Render(m.help.ShortHelpView(bindings)))
		}
	}

	return strings.Join(lines, "\n")
}
