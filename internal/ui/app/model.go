// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/auth"
	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/ui/components"
	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// Messages shown after a session ends.
const (
	msgSignedOut    = "You have been signed out."
	msgIdleSignOut  = "You were signed out after a period of inactivity."
	msgConfigReload = "Configuration reloaded."
)

// Controller is the part of the auth controller the UI drives.
type Controller interface {
	guard.SessionSource
	Session() auth.Session
	Touch()
	Logout(ctx context.Context) error
}

// Extender re-arms the session clock when the user chooses to stay.
type Extender interface {
	Extend() bool
}

// Deps are the collaborators of the UI model.
type Deps struct {
	Ctx        context.Context
	Controller Controller
	Clock      Extender
	Loader     *loader.Loader
	Navigator  *guard.Navigator
	Theme      *styles.Theme
	Log        logrus.FieldLogger

	// RememberMe is the initial state of the login form's toggle.
	RememberMe bool

	// StartPath is the first page requested. Empty means "/".
	StartPath string
}

// page is one screen of the UI.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (page, tea.Cmd)
	View() string
	Title() string
	Help() []key.Binding

	// Capturing reports whether a text field has focus, in which case
	// single-letter global keys are typed rather than handled.
	Capturing() bool
}

// env is shared by all pages.
type env struct {
	ctx      context.Context
	loader   *loader.Loader
	routes   *guard.Table
	theme    *styles.Theme
	keys     KeyMap
	width    int
	height   int
	remember bool
}

// url builds a page path, falling back to "/" for an unknown route.
func (e *env) url(name string, pairs ...string) string {
	u, err := e.routes.URL(name, pairs...)
	if err != nil {
		return guard.PathLogin
	}
	return u
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	ctrl  Controller
	clock Extender
	nav   *guard.Navigator
	log   logrus.FieldLogger
	env   *env

	page  page
	path  string
	seq   int
	start string

	header  *components.Header
	status  *components.StatusBar
	overlay components.TimeoutOverlay
	help    help.Model

	width  int
	height int
}

// New creates the model.
func New(d Deps) *Model {
	ctx := d.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	log := d.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	nav := d.Navigator
	if nav == nil {
		nav = guard.NewNavigator(nil, d.Controller)
	}
	theme := d.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	start := d.StartPath
	if start == "" {
		start = guard.PathLogin
	}

	e := &env{
		ctx:      ctx,
		loader:   d.Loader,
		routes:   nav.Table(),
		theme:    theme,
		keys:     DefaultKeyMap(),
		width:    80,
		height:   20,
		remember: d.RememberMe,
	}

	return &Model{
		ctrl:    d.Controller,
		clock:   d.Clock,
		nav:     nav,
		log:     log,
		env:     e,
		start:   start,
		header:  components.NewHeader(theme),
		status:  components.NewStatusBar(theme),
		overlay: components.NewTimeoutOverlay(),
		help:    help.New(),
		width:   80,
		height:  24,
	}
}

// Path returns the path of the page on screen.
func (m *Model) Path() string { return m.path }

// Init shows the start page.
func (m *Model) Init() tea.Cmd {
	return m.navigate(m.start)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		if m.overlay.IsVisible() {
			m.stay()
			return m, nil
		}
		m.ctrl.Touch()
		return m, nil

	case NavigateMsg:
		return m, m.navigate(msg.Path)

	case noticeMsg:
		if msg.isErr {
			m.status.SetError(msg.text)
		} else {
			m.status.SetNotice(msg.text)
		}
		return m, nil

	// ==========================================================================
	// Session events
	// ==========================================================================

	case WarningMsg:
		m.overlay.Show(msg.Seconds)
		return m, nil

	case CountdownMsg:
		if m.overlay.IsVisible() {
			m.overlay.SetSeconds(msg.Seconds)
		}
		return m, nil

	case WarningClearedMsg:
		m.overlay.Hide()
		return m, nil

	case LoggedOutMsg:
		return m.handleLoggedOut(msg.Reason)

	case ConfigReloadedMsg:
		m.status.SetNotice(msgConfigReload)
		return m, nil
	}

	if m.page == nil {
		return m, nil
	}
	next, cmd := m.page.Update(msg)
	m.page = next
	m.header.SetPage(m.page.Title())
	return m, cmd
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.env.keys
	if key.Matches(msg, keys.ForceQuit) {
		return m, tea.Quit
	}

	// The warning overlay takes every key: L signs out, anything else stays.
	if m.overlay.IsVisible() {
		if msg.String() == "L" || msg.String() == "l" {
			m.overlay.Hide()
			return m, m.logout()
		}
		m.stay()
		return m, nil
	}

	m.ctrl.Touch()
	m.status.Clear()

	if m.page != nil && !m.page.Capturing() {
		authed := m.ctrl.IsAuthenticated()
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case authed && key.Matches(msg, keys.Profile) && m.path != guard.PathProfile:
			return m, m.navigate(guard.PathProfile)
		case authed && key.Matches(msg, keys.Logout):
			return m, m.logout()
		}
	}

	if m.page == nil {
		return m, nil
	}
	next, cmd := m.page.Update(msg)
	m.page = next
	m.header.SetPage(m.page.Title())
	return m, cmd
}

// stay dismisses the warning and restarts the idle window.
func (m *Model) stay() {
	m.overlay.Hide()
	if m.clock != nil {
		m.clock.Extend()
	}
}

// logout signs out off the UI goroutine; the controller's LoggedOutMsg
// does the navigation.
func (m *Model) logout() tea.Cmd {
	ctx, ctrl := m.env.ctx, m.ctrl
	return func() tea.Msg {
		if err := ctrl.Logout(ctx); err != nil {
			return noticeMsg{text: fmt.Sprintf("Signed out, but stored credentials could not be cleared: %v", err), isErr: true}
		}
		return nil
	}
}

func (m *Model) handleLoggedOut(reason auth.Reason) (tea.Model, tea.Cmd) {
	m.overlay.Hide()
	m.log.WithFields(logrus.Fields{
		"event":  "UI_SIGNED_OUT",
		"reason": reason.String(),
	}).Info("returning to login")

	switch reason {
	case auth.ReasonIdle:
		m.status.SetNotice(msgIdleSignOut)
	case auth.ReasonUnauthorized:
		m.status.SetError(api.MsgSessionExpired)
	default:
		m.status.SetNotice(msgSignedOut)
	}
	return m, m.navigate(guard.PathLogin)
}

// navigate resolves path through the guard and shows the admitted page.
func (m *Model) navigate(path string) tea.Cmd {
	match, err := m.nav.Resolve(path)
	if err != nil {
		m.status.SetError(fmt.Sprintf("No page at %s", path))
		return nil
	}

	m.seq++
	m.path = match.Path
	m.page = m.newPage(match)

	sess := m.ctrl.Session()
	if sess.Authenticated() {
		m.header.SetUser(sess.Identity.DisplayName(), sess.Role.String())
	} else {
		m.header.SetUser("", "")
	}
	m.header.SetPage(m.page.Title())

	m.log.WithFields(logrus.Fields{
		"event": "UI_NAVIGATE",
		"route": match.Route.Name,
		"path":  match.Path,
	}).Debug("page shown")
	return m.page.Init()
}

func (m *Model) newPage(match guard.Match) page {
	id := func(name string) int {
		n, _ := strconv.Atoi(match.Var(name))
		return n
	}

	switch match.Route.Name {
	case guard.RouteEmployeeDashboard:
		return newEmployeeDashboardPage(m.env, m.seq)
	case guard.RouteTaskDetail:
		return newTaskPage(m.env, m.seq, id("taskId"))
	case guard.RouteManagerDashboard:
		return newManagerDashboardPage(m.env, m.seq)
	case guard.RouteTeamDashboard:
		return newTeamPage(m.env, m.seq, id("teamId"))
	case guard.RouteEmployeeDetail:
		return newEmployeePage(m.env, m.seq, id("employeeId"))
	case guard.RouteAddTask:
		return newAddTaskPage(m.env, m.seq, id("employeeId"))
	case guard.RouteProfile:
		return newProfilePage(m.env, m.seq)
	default:
		return newLoginPage(m.env, m.seq)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.env.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.status.SetWidth(width)
	m.overlay.SetSize(width, height)
	m.help.Width = width

	// Header and status bar take four lines.
	m.env.width = width - m.env.theme.App.GetHorizontalFrameSize()
	m.env.height = height - 4
	if m.env.height < 5 {
		m.env.height = 5
	}
}

// View renders the current state.
func (m *Model) View() string {
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}
	if m.page == nil {
		return ""
	}

	bindings := append(m.page.Help(), m.globalHelp()...)
	m.status.SetHelp(m.help.View(helpKeys(bindings)))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.env.theme.App.Render(m.page.View()),
		m.status.View(),
	)
}

func (m *Model) globalHelp() []key.Binding {
	keys := m.env.keys
	if m.page.Capturing() {
		return []key.Binding{keys.ForceQuit}
	}
	if m.ctrl.IsAuthenticated() {
		return []key.Binding{keys.Profile, keys.Logout, keys.Help, keys.Quit}
	}
	return []key.Binding{keys.Help, keys.Quit}
}
