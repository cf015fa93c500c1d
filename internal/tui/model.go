package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/leadr/internal/core/feed"
	"github.com/hay-kot/leadr/internal/core/lead"
	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/crm"
	"github.com/hay-kot/leadr/internal/dashboard"
	"github.com/hay-kot/leadr/internal/styles"
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyCtrlC = "ctrl+c"
)

// API is the part of the CRM client the TUI talks to.
type API interface {
	dashboard.Repository
	feed.Source
	Login(ctx context.Context, username, password string) (string, error)
}

// Options configures the TUI behavior.
type Options struct {
	ConfirmDelete      bool // ask before deleting a lead
	ClearDraftOnDelete bool // reset the form when the edited lead is deleted
	Logger             zerolog.Logger
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	api     API
	session *session.Manager
	gate    *session.Gate
	opts    Options
	logger  zerolog.Logger
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	notes   *notesRenderer

	route   string
	gen     uint64 // bumped on every route entry; older results are dropped
	state   UIState
	loading bool
	status  string
	err     error

	// Login
	login      *LoginForm
	afterLogin string
	lastUser   string

	// Dashboard
	dash          *dashboard.Reconciler
	table         table.Model
	rows          []lead.Lead // leads as last shown in table, by row
	form          *LeadForm
	modal         Modal
	pendingDelete string

	// External feed
	viewer *feed.Viewer
	users  []feed.User
	cursor int

	width    int
	height   int
	quitting bool
}

// leadsLoadedMsg is sent when a list fetch finishes.
type leadsLoadedMsg struct {
	gen uint64
	err error
}

// leadSavedMsg is sent when a submit finishes.
type leadSavedMsg struct {
	gen  uint64
	lead lead.Lead
	err  error
}

// leadDeletedMsg is sent when a delete and its refetch finish.
type leadDeletedMsg struct {
	gen uint64
	id  string
	err error
}

// loggedInMsg is sent when a login request finishes.
type loggedInMsg struct {
	gen      uint64
	username string
	token    string
	err      error
}

// feedLoadedMsg is sent when the external feed fetch finishes.
type feedLoadedMsg struct {
	gen   uint64
	users []feed.User
	err   error
}

// sessionChangedMsg reports a login or logout made outside the model.
type sessionChangedMsg struct {
	loggedIn bool
}

// SessionChanged converts a session notification into a program message.
func SessionChanged(s session.Session) tea.Msg {
	return sessionChangedMsg{loggedIn: s.LoggedIn()}
}

// New creates a new TUI model. The first route is the dashboard, which the
// gate turns into the login form when no token is stored.
func New(api API, sess *session.Manager, gate *session.Gate, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	h := help.New()
	h.Styles.ShortKey = mutedStyle
	h.Styles.ShortDesc = mutedStyle
	h.Styles.ShortSeparator = mutedStyle
	h.ShortSeparator = " • "

	t := table.New(
		table.WithColumns(leadColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ColorGray).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("#1a1b26")).
		Background(styles.ColorBlue)
	t.SetStyles(ts)

	return Model{
		api:     api,
		session: sess,
		gate:    gate,
		opts:    opts,
		logger:  opts.Logger,
		keys:    defaultKeyMap(),
		help:    h,
		spinner: s,
		notes:   &notesRenderer{},
		table:   t,
		route:   session.RouteDashboard,
	}
}

func leadColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Age", Width: 5},
		{Title: "Contacted", Width: 12},
		{Title: "Level", Width: 10},
	}
}

// Init enters the first route and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return navigateMsg{route: m.route} },
		m.spinner.Tick,
	)
}

// navigateMsg asks the model to enter a route.
type navigateMsg struct {
	route string
}

// navigate leaves the current route and enters route, or the login route
// when the gate redirects.
func (m Model) navigate(route string) (Model, tea.Cmd) {
	m.leave()
	m.gen++
	m.state = stateNormal
	m.loading = false
	m.status = ""
	m.err = nil

	if m.gate.CanEnter(route) == session.RedirectLogin {
		m.logger.Debug().Str("route", route).Msg("redirecting to login")
		m.afterLogin = route
		route = session.RouteLogin
	}
	m.route = route

	switch route {
	case session.RouteLogin:
		m.login = NewLoginForm(m.lastUser)
		return m, m.login.Form().Init()

	case session.RouteExternal:
		m.viewer = feed.NewViewer(m.gate, m.api)
		m.users = nil
		m.cursor = 0
		m.loading = true
		return m, m.loadFeed()

	default:
		m.dash = dashboard.New(m.api, dashboard.Options{
			ClearDraftOnDelete: m.opts.ClearDraftOnDelete,
			Logger:             m.logger.With().Str("component", "dashboard").Logger(),
		})
		m.table.SetRows(nil)
		m.rows = nil
		m.loading = true
		return m, m.loadLeads()
	}
}

// leave detaches the current route so late results are discarded.
func (m *Model) leave() {
	if m.dash != nil {
		m.dash.Close()
		m.dash = nil
	}
	if m.viewer != nil {
		m.viewer.Leave()
		m.viewer = nil
	}
	m.login = nil
	m.form = nil
	m.modal = Modal{}
	m.pendingDelete = ""
}

func (m Model) loadLeads() tea.Cmd {
	dash, gen := m.dash, m.gen
	return func() tea.Msg {
		return leadsLoadedMsg{gen: gen, err: dash.Load(context.Background())}
	}
}

func (m Model) refreshLeads() tea.Cmd {
	dash, gen := m.dash, m.gen
	return func() tea.Msg {
		return leadsLoadedMsg{gen: gen, err: dash.Refresh(context.Background())}
	}
}

func (m Model) submit() tea.Cmd {
	dash, gen := m.dash, m.gen
	return func() tea.Msg {
		saved, err := dash.Submit(context.Background())
		return leadSavedMsg{gen: gen, lead: saved, err: err}
	}
}

func (m Model) deleteLead(id string) tea.Cmd {
	dash, gen := m.dash, m.gen
	return func() tea.Msg {
		return leadDeletedMsg{gen: gen, id: id, err: dash.Delete(context.Background(), id)}
	}
}

func (m Model) doLogin(username, password string) tea.Cmd {
	api, gen := m.api, m.gen
	return func() tea.Msg {
		token, err := api.Login(context.Background(), username, password)
		return loggedInMsg{gen: gen, username: username, token: token, err: err}
	}
}

func (m Model) loadFeed() tea.Cmd {
	viewer, gen := m.viewer, m.gen
	return func() tea.Msg {
		users, err := viewer.Enter(context.Background())
		return feedLoadedMsg{gen: gen, users: users, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// banner (4) + title (2) + footer (3)
		tableHeight := msg.Height - 9
		if m.dash != nil && len(m.dash.Snapshot().Leads) > 0 {
			tableHeight /= 2 // leave room for the notes preview
		}
		m.table.SetHeight(max(tableHeight, 3))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case navigateMsg:
		return m.navigate(msg.route)

	case sessionChangedMsg:
		if !msg.loggedIn && m.route != session.RouteLogin {
			return m.navigate(m.route)
		}
		return m, nil

	case loggedInMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.handleLoggedIn(msg)

	case leadsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.syncTable()
		if msg.err != nil {
			return m.handleError(msg.err)
		}
		return m, nil

	case leadSavedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.handleSaved(msg)

	case leadDeletedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.syncTable()
		if msg.err != nil {
			return m.handleError(msg.err)
		}
		m.status = "Lead deleted"
		return m, nil

	case feedLoadedMsg:
		if msg.gen != m.gen || errors.Is(msg.err, feed.ErrStale) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m.handleError(msg.err)
		}
		m.users = msg.users
		m.cursor = min(m.cursor, max(len(m.users)-1, 0))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Route all other messages to the active form
	if m.route == session.RouteLogin && m.login != nil {
		return m.updateLoginForm(msg)
	}
	if m.state == stateEditing && m.form != nil {
		return m.updateLeadForm(msg)
	}
	return m, nil
}

func (m Model) handleLoggedIn(msg loggedInMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.logger.Debug().Err(msg.err).Msg("login failed")
		m.login = NewLoginForm(msg.username)
		m.err = errors.New(crm.Message(msg.err))
		return m, m.login.Form().Init()
	}

	m.session.Login(context.Background(), msg.token)

	target := m.afterLogin
	if target == "" || target == session.RouteLogin {
		target = session.RouteDashboard
	}
	m.afterLogin = ""
	return m.navigate(target)
}

func (m Model) handleSaved(msg leadSavedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.syncTable()

	if msg.err == nil {
		m.status = fmt.Sprintf("Saved %s", msg.lead.FullName())
		return m, nil
	}
	if errors.Is(msg.err, dashboard.ErrClosed) || errors.Is(msg.err, session.ErrUnauthenticated) {
		return m.handleError(msg.err)
	}

	// Reopen the form with the retained draft so nothing typed is lost.
	m.err = errors.New(crm.Message(msg.err))
	m.form = NewLeadForm(m.dash.Snapshot().Draft)
	m.state = stateEditing
	return m, m.form.Form().Init()
}

// handleError shows err. A missing or rejected token logs out and shows the
// login form, even for routes the gate leaves unprotected.
func (m Model) handleError(err error) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(err, dashboard.ErrClosed):
		return m, nil
	case errors.Is(err, session.ErrUnauthenticated):
		msg := "please log in"
		if m.session.Current().LoggedIn() {
			m.logger.Warn().Err(err).Msg("request rejected, logging out")
			m.session.Logout(context.Background())
			msg = "session expired, please log in again"
		}
		if m.route != session.RouteLogin {
			m.afterLogin = m.route
		}
		next, cmd := m.navigate(session.RouteLogin)
		next.err = errors.New(msg)
		return next, cmd
	default:
		m.err = errors.New(crm.Message(err))
		return m, nil
	}
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if keyStr == keyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.route == session.RouteLogin {
		if m.login == nil {
			return m, nil // request in flight
		}
		return m.updateLoginForm(msg)
	}

	switch m.state {
	case stateEditing:
		if keyStr == "esc" {
			m.dash.Cancel()
			m.form = nil
			m.state = stateNormal
			return m, nil
		}
		return m.updateLeadForm(msg)
	case stateConfirming:
		return m.handleConfirmModalKey(keyStr)
	}

	if m.route == session.RouteExternal {
		return m.handleExternalKey(msg)
	}
	return m.handleDashboardKey(msg)
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.New):
		// a failed create keeps its draft; an abandoned edit does not
		if !m.dash.Snapshot().Draft.Mode.IsCreating() {
			m.dash.Cancel()
		}
		return m.openForm()

	case key.Matches(msg, m.keys.Edit):
		l, ok := m.selectedLead()
		if !ok {
			return m, nil
		}
		m.dash.Edit(l)
		return m.openForm()

	case key.Matches(msg, m.keys.Delete):
		l, ok := m.selectedLead()
		if !ok {
			return m, nil
		}
		if !m.opts.ConfirmDelete {
			return m.startDelete(l.ID)
		}
		m.pendingDelete = l.ID
		m.modal = NewModal("Delete lead", fmt.Sprintf("Delete %s? This cannot be undone.", l.FullName()))
		m.state = stateConfirming
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.err = nil
		return m, m.refreshLeads()

	case key.Matches(msg, m.keys.External):
		return m.navigate(session.RouteExternal)

	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleExternalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m.navigate(session.RouteDashboard)
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.err = nil
		return m, m.loadFeed()
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.users)-1 {
			m.cursor++
		}
	}
	return m, nil
}

// handleConfirmModalKey handles keys when the delete modal is shown.
func (m Model) handleConfirmModalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEnter:
		if m.modal.ConfirmSelected() {
			return m.startDelete(m.pendingDelete)
		}
		return m.closeModal(), nil
	case "y":
		return m.startDelete(m.pendingDelete)
	case "esc", "n", "q":
		return m.closeModal(), nil
	case "left", "right", "h", "l", "tab":
		m.modal.ToggleSelection()
	}
	return m, nil
}

func (m Model) closeModal() Model {
	m.modal = Modal{}
	m.pendingDelete = ""
	m.state = stateNormal
	return m
}

func (m Model) startDelete(id string) (tea.Model, tea.Cmd) {
	m = m.closeModal()
	m.loading = true
	m.err = nil
	m.status = ""
	return m, m.deleteLead(id)
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	m.session.Logout(context.Background())
	return m.navigate(session.RouteDashboard)
}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	m.form = NewLeadForm(m.dash.Snapshot().Draft)
	m.state = stateEditing
	m.err = nil
	m.status = ""
	return m, m.form.Form().Init()
}

// updateLoginForm routes msg to the login form and starts the request once
// the form completes.
func (m Model) updateLoginForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.login.Form().Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.login.form = f

	switch f.State {
	case huh.StateCompleted:
		username, password := m.login.Credentials()
		m.lastUser = username
		m.login = nil
		m.loading = true
		m.err = nil
		return m, m.doLogin(username, password)
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

// updateLeadForm routes msg to the lead form and submits once it completes.
func (m Model) updateLeadForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Form().Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.form.form = f

	switch f.State {
	case huh.StateCompleted:
		return m.submitLead(m.form.Fields())
	case huh.StateAborted:
		m.dash.Cancel()
		m.form = nil
		m.state = stateNormal
		return m, nil
	}
	return m, cmd
}

// submitLead stores fields in the draft and submits it.
func (m Model) submitLead(fields lead.Fields) (tea.Model, tea.Cmd) {
	m.dash.SetFields(fields)
	m.form = nil
	m.state = stateNormal
	m.loading = true
	m.err = nil
	m.status = ""
	return m, m.submit()
}

// syncTable copies the reconciler list into the table.
func (m *Model) syncTable() {
	if m.dash == nil {
		return
	}

	leads := m.dash.Snapshot().Leads
	rows := make([]table.Row, len(leads))
	for i, l := range leads {
		rows[i] = table.Row{l.FullName(), strconv.Itoa(l.Age), l.ContactDate(), string(l.Level)}
	}
	m.table.SetRows(rows)
	m.rows = leads

	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// selectedLead is the lead on the highlighted row. It reads the list the table
// was built from, not the reconciler's, which may be newer.
func (m Model) selectedLead() (lead.Lead, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return lead.Lead{}, false
	}
	return m.rows[idx], true
}
