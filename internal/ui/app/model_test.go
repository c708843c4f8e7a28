// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/auth"
	"github.com/morganforge/onboard-tui/internal/credstore"
	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/mockapi"
	"github.com/morganforge/onboard-tui/internal/sessionclock"
	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// harness drives a Model synchronously: commands run inline and bridge
// messages are delivered after every step.
type harness struct {
	t       *testing.T
	model   *Model
	bridge  *Bridge
	ctrl    *auth.Controller
	clock   *sessionclock.Manager
	manual  *sessionclock.ManualClock
	backend *mockapi.Server
	quit    bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := mockapi.New(nil)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	manual := sessionclock.NewManualClock(time.Now())
	clock := sessionclock.New(manual, sessionclock.DefaultConfig(), nil)
	ctrl := auth.NewController(credstore.NewInMemory(), clock, nil)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL, MaxRetries: 1, RetryDelay: time.Millisecond}, ctrl, nil)
	require.NoError(t, err)

	bridge := NewBridge()
	bridge.Attach(clock, ctrl)

	h := &harness{
		t:       t,
		bridge:  bridge,
		ctrl:    ctrl,
		clock:   clock,
		manual:  manual,
		backend: backend,
	}
	h.model = New(Deps{
		Controller: ctrl,
		Clock:      clock,
		Loader:     loader.New(ctrl, client, nil),
		Navigator:  guard.NewNavigator(nil, ctrl),
		Theme:      styles.NewTheme(styles.ModeDark),
	})
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.run(h.model.Init())
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	_, cmd := h.model.Update(msg)
	return cmd
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(h.t, steps, 500, "commands did not settle")
		c := queue[0]
		queue = queue[1:]
		if c != nil {
			switch msg := c().(type) {
			case nil:
			case tea.BatchMsg:
				queue = append(queue, msg...)
			case tea.QuitMsg:
				h.quit = true
			default:
				queue = append(queue, h.update(msg))
			}
		}

		var s sink
		h.bridge.flush(&s)
		for _, msg := range s.msgs {
			queue = append(queue, h.update(msg))
		}
	}
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	h.run(h.update(msg))
}

func (h *harness) press(k tea.KeyType) { h.send(tea.KeyMsg{Type: k}) }

func (h *harness) key(s string) { h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}) }

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) login(user, password string) {
	h.t.Helper()
	h.typeText(user)
	h.press(tea.KeyEnter)
	h.typeText(password)
	h.press(tea.KeyEnter)
}

// advance moves the session clock and delivers what it posted.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	h.manual.Advance(d)
	h.run(nil)
}

func (h *harness) status() string {
	msg, _ := h.model.status.Message()
	return msg
}

func (h *harness) statusIsError() bool {
	_, isErr := h.model.status.Message()
	return isErr
}

// =============================================================================
// LOGIN
// =============================================================================

func TestStartsAtLogin(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, guard.PathLogin, h.model.Path())
	assert.IsType(t, &loginPage{}, h.model.page)
	assert.Contains(t, h.model.View(), "Sign in to onboard")
}

func TestLoginEmployee(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)

	require.Equal(t, guard.PathEmployeeDashboard, h.model.Path())
	assert.True(t, h.ctrl.IsAuthenticated())
	assert.Equal(t, sessionclock.Armed, h.clock.State())

	view := h.model.View()
	assert.Contains(t, view, "Welcome, Asha Rao")
	assert.Contains(t, view, "Complete security training")
	assert.Contains(t, view, "Asha Rao")
}

func TestLoginManager(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.ManagerUser, mockapi.DefaultPassword)

	require.Equal(t, guard.PathManagerDashboard, h.model.Path())
	assert.Contains(t, h.model.View(), "Platform")
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, "wrong")

	assert.Equal(t, guard.PathLogin, h.model.Path())
	assert.False(t, h.ctrl.IsAuthenticated())

	p, ok := h.model.page.(*loginPage)
	require.True(t, ok)
	assert.NotEmpty(t, p.err)
	assert.Empty(t, p.password.Value())
	assert.Equal(t, loginPassword, p.focus)
	assert.Equal(t, mockapi.EmployeeUser, p.user.Value())
}

func TestLoginEmptyFieldsStayOnForm(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyTab)
	h.press(tea.KeyEnter)

	p, ok := h.model.page.(*loginPage)
	require.True(t, ok)
	assert.NotEmpty(t, p.err)
	assert.Equal(t, loginUser, p.focus)
	assert.Equal(t, 0, h.backend.Hits("/auth/login"))
}

func TestLoginRememberToggle(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyTab)
	h.press(tea.KeyTab)

	p := h.model.page.(*loginPage)
	require.Equal(t, loginRemember, p.focus)
	h.key(" ")
	assert.True(t, p.remember)
	h.key(" ")
	assert.False(t, p.remember)
}

func TestGlobalKeysTypedWhileCapturing(t *testing.T) {
	h := newHarness(t)
	h.typeText("qp?L")

	assert.False(t, h.quit)
	p := h.model.page.(*loginPage)
	assert.Equal(t, "qp?L", p.user.Value())
}

func TestForceQuit(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyCtrlC)
	assert.True(t, h.quit)
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestGuardRedirects(t *testing.T) {
	h := newHarness(t)

	h.send(NavigateMsg{Path: guard.PathEmployeeDashboard})
	assert.Equal(t, guard.PathLogin, h.model.Path(), "signed-out users land on login")

	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.send(NavigateMsg{Path: guard.PathManagerDashboard})
	assert.Equal(t, guard.PathEmployeeDashboard, h.model.Path(), "wrong role goes home")

	h.send(NavigateMsg{Path: guard.PathLogin})
	assert.Equal(t, guard.PathEmployeeDashboard, h.model.Path(), "login redirects home when signed in")
}

func TestUnknownPath(t *testing.T) {
	h := newHarness(t)
	h.send(NavigateMsg{Path: "/nowhere"})

	assert.Equal(t, guard.PathLogin, h.model.Path())
	assert.Equal(t, "No page at /nowhere", h.status())
	assert.True(t, h.statusIsError())
}

func TestQuitFromDashboard(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.key("q")
	assert.True(t, h.quit)
}

// =============================================================================
// EMPLOYEE
// =============================================================================

func TestOpenTaskFromDashboard(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.press(tea.KeyEnter)

	assert.True(t, strings.HasPrefix(h.model.Path(), "/task/"), h.model.Path())
	p, ok := h.model.page.(*taskPage)
	require.True(t, ok)
	assert.True(t, p.loaded)

	h.press(tea.KeyEsc)
	assert.Equal(t, guard.PathEmployeeDashboard, h.model.Path())
}

func TestTaskStatusChange(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.send(NavigateMsg{Path: "/task/101"})

	p := h.model.page.(*taskPage)
	require.True(t, p.loaded)
	require.Equal(t, api.StatusInProgress, p.data.Task.Status)

	h.key("s")
	assert.Equal(t, api.StatusSentForReview, p.data.Task.Status)
	assert.Contains(t, h.status(), "Status changed")
	assert.False(t, h.statusIsError())
	assert.False(t, p.busy)
}

func TestTaskComment(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.send(NavigateMsg{Path: "/task/101"})

	p := h.model.page.(*taskPage)
	require.Len(t, p.data.Comments, 2)

	h.key("c")
	require.True(t, p.Capturing())
	h.typeText("quick question on VPN")
	assert.False(t, h.quit)
	h.press(tea.KeyEnter)

	assert.False(t, p.Capturing())
	require.Len(t, p.data.Comments, 3)
	assert.Equal(t, "Comment added", h.status())
	assert.Contains(t, h.model.View(), "quick question on VPN")
}

func TestTaskCommentCancel(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.send(NavigateMsg{Path: "/task/101"})

	h.key("c")
	h.typeText("draft")
	h.press(tea.KeyEsc)

	p := h.model.page.(*taskPage)
	assert.False(t, p.commenting)
	assert.Equal(t, "/task/101", h.model.Path())
	assert.Len(t, p.data.Comments, 2)
}

// =============================================================================
// MANAGER
// =============================================================================

func TestManagerDrillDownAndAssign(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.ManagerUser, mockapi.DefaultPassword)

	h.press(tea.KeyEnter)
	require.Equal(t, "/team/1", h.model.Path())
	assert.Contains(t, h.model.View(), "Asha Rao")

	h.press(tea.KeyEnter)
	require.Equal(t, "/employee/5", h.model.Path())
	assert.Contains(t, h.model.View(), "asha.rao@example.com")

	h.key("a")
	require.Equal(t, "/employee/5/add-task", h.model.Path())
	form, ok := h.model.page.(*addTaskPage)
	require.True(t, ok)
	require.True(t, form.loaded)
	require.NotEmpty(t, form.data.Catalog)

	h.press(tea.KeyRight)
	assert.Equal(t, 1, form.catalog)

	h.press(tea.KeyTab)
	require.True(t, form.Capturing())
	h.typeText(time.Now().AddDate(0, 0, 7).Format("2006-01-02"))
	for form.focus != addTaskSubmit {
		h.press(tea.KeyTab)
	}
	h.press(tea.KeyEnter)

	assert.Equal(t, "/employee/5", h.model.Path())
	assert.Equal(t, "Task assigned to Asha Rao", h.status())
	assert.Contains(t, h.model.View(), "Complete security training")
}

func TestAddTaskRejectsBadDate(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.ManagerUser, mockapi.DefaultPassword)
	h.send(NavigateMsg{Path: "/employee/5/add-task"})

	form := h.model.page.(*addTaskPage)
	h.press(tea.KeyTab)
	h.typeText("next week")
	for form.focus != addTaskSubmit {
		h.press(tea.KeyTab)
	}
	h.press(tea.KeyEnter)

	assert.Equal(t, "/employee/5/add-task", h.model.Path())
	assert.Equal(t, "Due date must be YYYY-MM-DD", form.err)
	assert.Equal(t, 0, h.backend.Hits("/manager/addTask"))

	h.press(tea.KeyEsc)
	assert.Equal(t, "/employee/5", h.model.Path())
}

func TestManagerBackNavigation(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.ManagerUser, mockapi.DefaultPassword)
	h.send(NavigateMsg{Path: "/employee/5"})

	h.press(tea.KeyEsc)
	assert.Equal(t, "/team/1", h.model.Path())
	h.press(tea.KeyEsc)
	assert.Equal(t, guard.PathManagerDashboard, h.model.Path())
}

func TestEmployeeCannotOpenManagerPages(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.send(NavigateMsg{Path: "/employee/5/add-task"})
	assert.Equal(t, guard.PathEmployeeDashboard, h.model.Path())
}

// =============================================================================
// PROFILE
// =============================================================================

func TestProfileEdit(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)

	h.key("p")
	require.Equal(t, guard.PathProfile, h.model.Path())
	assert.Contains(t, h.model.View(), "asha.rao@example.com")

	p := h.model.page.(*profilePage)
	h.key("e")
	require.True(t, p.Capturing())

	h.press(tea.KeyTab)
	require.Equal(t, profilePhone, p.focus)
	h.press(tea.KeyEnd)
	h.press(tea.KeyCtrlU)
	h.typeText("555-0199")
	h.press(tea.KeyEnter)

	assert.False(t, p.editing)
	assert.Equal(t, "Profile updated", h.status())
	assert.Equal(t, "555-0199", p.data.Phone)
	assert.Equal(t, "asha.rao@example.com", p.data.Email)
}

func TestProfileNoChanges(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.key("p")
	h.key("e")
	h.press(tea.KeyEnter)

	p := h.model.page.(*profilePage)
	assert.False(t, p.editing)
	assert.Equal(t, "No changes to save", h.status())
}

func TestProfileRejectedEmail(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.key("p")
	h.key("e")

	h.press(tea.KeyEnd)
	h.press(tea.KeyCtrlU)
	h.typeText("not-an-email")
	h.press(tea.KeyEnter)

	p := h.model.page.(*profilePage)
	assert.True(t, p.editing)
	assert.NotEmpty(t, p.err)
	assert.Equal(t, "asha.rao@example.com", p.data.Email)
}

func TestProfileBackGoesHome(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.ManagerUser, mockapi.DefaultPassword)
	h.key("p")
	h.press(tea.KeyEsc)
	assert.Equal(t, guard.PathManagerDashboard, h.model.Path())
}

// =============================================================================
// SESSION
// =============================================================================

func TestLogoutKey(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	h.key("L")

	assert.False(t, h.ctrl.IsAuthenticated())
	assert.Equal(t, guard.PathLogin, h.model.Path())
	assert.Equal(t, msgSignedOut, h.status())
	assert.Equal(t, sessionclock.Disarmed, h.clock.State())
}

func TestWarningStay(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)

	h.advance(sessionclock.DefaultWarnAfter)
	require.True(t, h.model.overlay.IsVisible())
	assert.Contains(t, h.model.View(), "Are you still there?")

	h.advance(5 * time.Second)
	assert.Equal(t, sessionclock.DefaultCountdown-5, h.model.overlay.Seconds())

	h.key("x")
	assert.False(t, h.model.overlay.IsVisible())
	assert.Equal(t, sessionclock.Armed, h.clock.State())
	assert.True(t, h.ctrl.IsAuthenticated())
	assert.Equal(t, guard.PathEmployeeDashboard, h.model.Path())

	// The idle window restarted from the key press.
	h.advance(sessionclock.DefaultWarnAfter - time.Second)
	assert.False(t, h.model.overlay.IsVisible())
}

func TestWarningLogoutNow(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)

	h.advance(sessionclock.DefaultWarnAfter)
	require.True(t, h.model.overlay.IsVisible())

	h.key("l")
	assert.False(t, h.model.overlay.IsVisible())
	assert.False(t, h.ctrl.IsAuthenticated())
	assert.Equal(t, guard.PathLogin, h.model.Path())
}

func TestIdleExpiry(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)

	h.advance(sessionclock.DefaultLogoutAfter)
	assert.False(t, h.model.overlay.IsVisible())
	assert.False(t, h.ctrl.IsAuthenticated())
	assert.Equal(t, guard.PathLogin, h.model.Path())
	assert.Equal(t, msgIdleSignOut, h.status())
}

func TestMouseCountsAsActivity(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)

	h.advance(sessionclock.DefaultWarnAfter - time.Minute)
	h.send(tea.MouseMsg{X: 3, Y: 3})
	h.advance(2 * time.Minute)
	assert.False(t, h.model.overlay.IsVisible())

	// Two minutes have passed since the mouse event.
	h.advance(sessionclock.DefaultWarnAfter - 2*time.Minute)
	require.True(t, h.model.overlay.IsVisible())
	h.send(tea.MouseMsg{X: 3, Y: 3})
	assert.False(t, h.model.overlay.IsVisible())
	assert.Equal(t, sessionclock.Armed, h.clock.State())
}

func TestUnauthorizedRedirects(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)

	h.backend.FailNext("/employees", http.StatusUnauthorized, 2)
	h.key("r")

	assert.False(t, h.ctrl.IsAuthenticated())
	assert.Equal(t, guard.PathLogin, h.model.Path())
	assert.Equal(t, api.MsgSessionExpired, h.status())
	assert.True(t, h.statusIsError())
}

func TestConfigReloadNotice(t *testing.T) {
	h := newHarness(t)
	h.bridge.Post(ConfigReloadedMsg{})
	h.run(nil)
	assert.Equal(t, msgConfigReload, h.status())
}

func TestStaleLoadIgnored(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.EmployeeUser, mockapi.DefaultPassword)
	p := h.model.page.(*employeeDashboardPage)

	h.send(employeeDashboardMsg{seq: p.seq - 1, data: loader.EmployeeDashboard{}})
	assert.Contains(t, h.model.View(), "Welcome, Asha Rao")
}
