package tui

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/leadr/internal/core/feed"
	"github.com/hay-kot/leadr/internal/core/lead"
	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/crm"
)

// fakeAPI is an in-memory CRM. It records the calls it receives.
type fakeAPI struct {
	mu        sync.Mutex
	leads     []lead.Lead
	users     []feed.User
	nextID    int
	calls     []string
	createErr error
	listErr   error
	loginErr  error
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Login(context.Context, string, string) (string, error) {
	f.record("login")
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "T1", nil
}

func (f *fakeAPI) List(context.Context) ([]lead.Lead, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.leads), nil
}

func (f *fakeAPI) Create(_ context.Context, fields lead.Fields) (lead.Lead, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return lead.Lead{}, f.createErr
	}
	f.nextID++
	l := lead.Lead{ID: fmt.Sprintf("L%d", f.nextID), Fields: fields}
	f.leads = append(f.leads, l)
	return l, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, fields lead.Fields) (lead.Lead, error) {
	f.record("update:" + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.leads {
		if f.leads[i].ID == id {
			f.leads[i].Fields = fields
			return f.leads[i], nil
		}
	}
	return lead.Lead{}, lead.ErrNotFound
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.record("delete:" + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.leads {
		if f.leads[i].ID == id {
			f.leads = slices.Delete(f.leads, i, i+1)
			return nil
		}
	}
	return lead.ErrNotFound
}

func (f *fakeAPI) ExternalUsers(context.Context) ([]feed.User, error) {
	f.record("external")
	return f.users, nil
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func sampleLead(id, first string) lead.Lead {
	return lead.Lead{ID: id, Fields: lead.Fields{
		FirstName:     first,
		LastName:      "Ann",
		Age:           30,
		DateOfContact: "2024-01-05T00:00:00.000Z",
		Level:         lead.LevelHot,
		Notes:         "x",
	}}
}

func newTestModel(t *testing.T, api *fakeAPI, token string, opts Options) (Model, *session.Manager) {
	t.Helper()
	sess := session.NewManager(nil, zerolog.Nop())
	if token != "" {
		sess.Login(context.Background(), token)
	}
	opts.Logger = zerolog.Nop()
	return New(api, sess, session.NewGate(sess, nil), opts), sess
}

// step feeds msg to the model.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// enterDashboard navigates to the dashboard and applies the initial load.
func enterDashboard(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := m.navigate(session.RouteDashboard)
	require.Equal(t, session.RouteDashboard, m.route)
	m, _ = step(t, m, cmd())
	return m
}

func TestModel_RedirectsToLoginWithoutToken(t *testing.T) {
	api := &fakeAPI{}
	m, _ := newTestModel(t, api, "", Options{})

	m, _ = m.navigate(session.RouteDashboard)

	assert.Equal(t, session.RouteLogin, m.route)
	assert.Equal(t, session.RouteDashboard, m.afterLogin)
	assert.NotNil(t, m.login)
	assert.Equal(t, 0, api.callCount(), "no request before login")
}

func TestModel_LoginSuccessEntersRequestedRoute(t *testing.T) {
	api := &fakeAPI{leads: []lead.Lead{sampleLead("A", "Al")}}
	m, sess := newTestModel(t, api, "", Options{})
	m, _ = m.navigate(session.RouteExternal)
	require.Equal(t, session.RouteLogin, m.route)

	m, cmd := step(t, m, m.doLogin("admin", "pw")())

	token, ok := sess.CurrentToken()
	require.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Equal(t, session.RouteExternal, m.route)
	require.NotNil(t, cmd)
}

func TestModel_LoginFailureShowsServerMessage(t *testing.T) {
	api := &fakeAPI{loginErr: &crm.RequestError{Status: 401, Message: "Invalid credentials", Err: session.ErrUnauthenticated}}
	m, sess := newTestModel(t, api, "", Options{})
	m, _ = m.navigate(session.RouteDashboard)

	m, _ = step(t, m, m.doLogin("admin", "bad")())

	assert.False(t, sess.Current().LoggedIn())
	assert.Equal(t, session.RouteLogin, m.route)
	require.Error(t, m.err)
	assert.Equal(t, "Invalid credentials", m.err.Error())
	assert.Equal(t, "admin", m.login.username, "username is kept for the retry")
}

func TestModel_LoadsLeadsIntoTable(t *testing.T) {
	api := &fakeAPI{leads: []lead.Lead{sampleLead("A", "Al"), sampleLead("B", "Bo")}}
	m, _ := newTestModel(t, api, "T1", Options{})

	m = enterDashboard(t, m)

	assert.False(t, m.loading)
	require.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "Al Ann", m.table.Rows()[0][0])
	assert.Equal(t, "2024-01-05", m.table.Rows()[0][2])
	assert.Contains(t, m.View(), "Bo Ann")
}

func TestModel_DropsResultsFromPreviousRoute(t *testing.T) {
	api := &fakeAPI{leads: []lead.Lead{sampleLead("A", "Al")}}
	m, _ := newTestModel(t, api, "T1", Options{})

	m, load := m.navigate(session.RouteDashboard)
	m, _ = m.navigate(session.RouteExternal)

	m, _ = step(t, m, load())
	assert.Equal(t, session.RouteExternal, m.route)
	assert.True(t, m.loading, "stale list result must not touch the external view")
}

func TestModel_UnauthorizedLogsOut(t *testing.T) {
	api := &fakeAPI{listErr: fmt.Errorf("GET /leads: %w", session.ErrUnauthenticated)}
	m, sess := newTestModel(t, api, "T1", Options{})

	m = enterDashboard(t, m)

	assert.False(t, sess.Current().LoggedIn())
	assert.Equal(t, session.RouteLogin, m.route)
	assert.Error(t, m.err)
}

func TestModel_NewLeadSubmit(t *testing.T) {
	api := &fakeAPI{}
	m, _ := newTestModel(t, api, "T1", Options{})
	m = enterDashboard(t, m)

	m, _ = step(t, m, runeKey('n'))
	require.Equal(t, stateEditing, m.state)
	assert.Equal(t, "Add New Lead", m.title())

	fields := sampleLead("", "Jo").EditFields()
	next, cmd := m.submitLead(fields)
	m = next.(Model)
	m, _ = step(t, m, cmd())

	assert.Equal(t, stateNormal, m.state)
	assert.NoError(t, m.err)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "Jo Ann", m.table.Rows()[0][0])
}

func TestModel_FailedSubmitReopensFormWithDraft(t *testing.T) {
	api := &fakeAPI{createErr: &crm.RequestError{Status: 500, Message: "database down"}}
	m, _ := newTestModel(t, api, "T1", Options{})
	m = enterDashboard(t, m)

	fields := sampleLead("", "Jo").EditFields()
	next, cmd := m.submitLead(fields)
	m = next.(Model)
	m, _ = step(t, m, cmd())

	require.Equal(t, stateEditing, m.state)
	require.NotNil(t, m.form)
	assert.Equal(t, fields, m.form.Fields())
	assert.Equal(t, "Add New Lead", m.form.Title())
	require.Error(t, m.err)
	assert.Equal(t, "database down", m.err.Error())
}

func TestModel_EditSelectedLead(t *testing.T) {
	api := &fakeAPI{leads: []lead.Lead{sampleLead("A", "Al")}}
	m, _ := newTestModel(t, api, "T1", Options{})
	m = enterDashboard(t, m)

	m, _ = step(t, m, runeKey('e'))

	require.Equal(t, stateEditing, m.state)
	assert.Equal(t, "Update Lead", m.title())
	assert.Equal(t, "2024-01-05", m.form.Fields().DateOfContact)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateNormal, m.state)
	assert.True(t, m.dash.Snapshot().Draft.Mode.IsCreating(), "esc abandons the edit")
}

func TestModel_DeleteWithConfirmation(t *testing.T) {
	api := &fakeAPI{leads: []lead.Lead{sampleLead("A", "Al"), sampleLead("B", "Bo")}}
	m, _ := newTestModel(t, api, "T1", Options{ConfirmDelete: true})
	m = enterDashboard(t, m)

	m, cmd := step(t, m, runeKey('d'))
	require.Equal(t, stateConfirming, m.state)
	assert.Nil(t, cmd)

	// enter on the default button cancels
	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, cmd)

	m, _ = step(t, m, runeKey('d'))
	m, cmd = step(t, m, runeKey('y'))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "Bo Ann", m.table.Rows()[0][0])
	assert.Equal(t, "Lead deleted", m.status)
}

func TestModel_DeleteWithoutConfirmation(t *testing.T) {
	api := &fakeAPI{leads: []lead.Lead{sampleLead("A", "Al")}}
	m, _ := newTestModel(t, api, "T1", Options{ConfirmDelete: false})
	m = enterDashboard(t, m)

	m, cmd := step(t, m, runeKey('d'))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	assert.Empty(t, m.table.Rows())
}

func TestModel_ExternalFeed(t *testing.T) {
	api := &fakeAPI{users: []feed.User{
		{ID: 1, Name: "Leanne Graham", Username: "Bret", Address: feed.Address{City: "Gwenborough"}},
	}}
	m, _ := newTestModel(t, api, "T1", Options{})

	m, cmd := m.navigate(session.RouteExternal)
	m, _ = step(t, m, cmd())

	require.Len(t, m.users, 1)
	view := m.View()
	assert.Contains(t, view, "Leanne Graham")
	assert.Contains(t, view, "Gwenborough")

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, session.RouteDashboard, m.route)
}

func TestModel_LogoutKeyRedirects(t *testing.T) {
	api := &fakeAPI{}
	m, sess := newTestModel(t, api, "T1", Options{})
	m = enterDashboard(t, m)

	m, _ = step(t, m, runeKey('L'))

	assert.False(t, sess.Current().LoggedIn())
	assert.Equal(t, session.RouteLogin, m.route)
}

func TestModel_ExternalLogoutNotification(t *testing.T) {
	api := &fakeAPI{}
	m, sess := newTestModel(t, api, "T1", Options{})
	m = enterDashboard(t, m)

	sess.Logout(context.Background())
	m, _ = step(t, m, SessionChanged(sess.Current()))

	assert.Equal(t, session.RouteLogin, m.route)
}

func TestModel_UnprotectedDashboardWithoutTokenShowsLogin(t *testing.T) {
	api := &fakeAPI{listErr: fmt.Errorf("GET /leads: %w", session.ErrUnauthenticated)}
	sess := session.NewManager(nil, zerolog.Nop())
	m := New(api, sess, session.NewGate(sess, []string{}), Options{Logger: zerolog.Nop()})

	m, load := m.navigate(session.RouteDashboard)
	require.Equal(t, session.RouteDashboard, m.route, "nothing is protected")

	m, _ = step(t, m, load())

	assert.Equal(t, session.RouteLogin, m.route)
	assert.Equal(t, session.RouteDashboard, m.afterLogin)
	require.NotNil(t, m.login)
	require.Error(t, m.err)
	assert.Equal(t, "please log in", m.err.Error())
	assert.Equal(t, 1, api.callCount(), "no reload after the failure")
}

func TestModel_ActionsUseDisplayedRow(t *testing.T) {
	api := &fakeAPI{leads: []lead.Lead{sampleLead("A", "Al"), sampleLead("B", "Bo")}}
	m, _ := newTestModel(t, api, "T1", Options{ConfirmDelete: false})
	m = enterDashboard(t, m)
	require.Equal(t, 0, m.table.Cursor())

	// the list changes on the server and a refetch lands before the table is rebuilt
	api.mu.Lock()
	api.leads = []lead.Lead{sampleLead("B", "Bo"), sampleLead("A", "Al")}
	api.mu.Unlock()
	require.NoError(t, m.dash.Refresh(context.Background()))

	m, _ = step(t, m, runeKey('e'))
	require.Equal(t, stateEditing, m.state)
	id, ok := m.dash.Snapshot().Draft.Mode.EditingID()
	require.True(t, ok)
	assert.Equal(t, "A", id)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	_, cmd := step(t, m, runeKey('d'))
	require.NotNil(t, cmd)
	cmd()

	assert.Contains(t, api.calls, "delete:A")
	assert.NotContains(t, api.calls, "delete:B")
}
