// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/ui/components"
	"github.com/morganforge/onboard-tui/internal/util"
)

// =============================================================================
// MANAGER DASHBOARD
// =============================================================================

type managerDashboardMsg struct {
	seq     int
	data    loader.ManagerDashboard
	outcome loader.Outcome
}

type managerDashboardPage struct {
	env    *env
	seq    int
	loaded bool
	data   loader.ManagerDashboard
	table  table.Model
}

func newManagerDashboardPage(e *env, seq int) *managerDashboardPage {
	cols := []table.Column{
		{Title: "Team", Width: 24},
		{Title: "Members", Width: 8},
		{Title: "Completed", Width: 10},
		{Title: "Pending", Width: 8},
		{Title: "Overdue", Width: 8},
		{Title: "Progress", Width: 16},
	}
	return &managerDashboardPage{env: e, seq: seq, table: newTable(e.theme, cols, 5)}
}

func (p *managerDashboardPage) Init() tea.Cmd {
	l, ctx, seq := p.env.loader, p.env.ctx, p.seq
	return func() tea.Msg {
		d, out := l.ManagerDashboard(ctx)
		return managerDashboardMsg{seq: seq, data: d, outcome: out}
	}
}

func (p *managerDashboardPage) Title() string { return "Teams" }

func (p *managerDashboardPage) Capturing() bool { return false }

func (p *managerDashboardPage) Help() []key.Binding {
	k := p.env.keys
	return []key.Binding{k.Up, k.Down, k.Open, k.Refresh}
}

func (p *managerDashboardPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case managerDashboardMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		if !msg.outcome.OK() {
			return p, outcomeCmd(msg.outcome)
		}
		p.loaded = true
		p.data = msg.data
		rows := make([]table.Row, len(msg.data.Teams))
		for i, team := range msg.data.Teams {
			rows[i] = table.Row{
				team.TeamName,
				strconv.Itoa(team.Members),
				strconv.Itoa(team.Completed),
				strconv.Itoa(team.Pending),
				strconv.Itoa(team.Overdue),
				components.NewProgressBar(team.Completed, team.Completed+team.Pending+team.Overdue).Plain(),
			}
		}
		p.table.SetRows(rows)
		p.table.SetHeight(tableHeight(p.env, len(rows), 4))
		return p, nil

	case tea.KeyMsg:
		k := p.env.keys
		switch {
		case key.Matches(msg, k.Refresh):
			return p, p.Init()
		case key.Matches(msg, k.Open) && p.loaded && len(p.data.Teams) > 0:
			team := p.data.Teams[p.table.Cursor()]
			return p, navigate(p.env.url(guard.RouteTeamDashboard, "teamId", strconv.Itoa(team.TeamID)))
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p *managerDashboardPage) View() string {
	t := p.env.theme
	if !p.loaded {
		return loading(t, "teams")
	}
	if len(p.data.Teams) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, t.Title.Render("Your teams"), t.Muted.Render("You do not manage any teams."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, t.Title.Render("Your teams"), p.table.View())
}

// =============================================================================
// TEAM DASHBOARD
// =============================================================================

type teamMsg struct {
	seq     int
	data    loader.TeamDashboard
	outcome loader.Outcome
}

type teamPage struct {
	env    *env
	seq    int
	id     int
	loaded bool
	data   loader.TeamDashboard
	table  table.Model
}

func newTeamPage(e *env, seq, id int) *teamPage {
	cols := []table.Column{
		{Title: "Name", Width: 22},
		{Title: "Skill", Width: 14},
		{Title: "Tasks", Width: 6},
		{Title: "Done", Width: 6},
		{Title: "Pending", Width: 8},
		{Title: "Overdue", Width: 8},
	}
	return &teamPage{env: e, seq: seq, id: id, table: newTable(e.theme, cols, 5)}
}

func (p *teamPage) Init() tea.Cmd {
	l, ctx, seq, id := p.env.loader, p.env.ctx, p.seq, p.id
	return func() tea.Msg {
		d, out := l.TeamDashboard(ctx, id)
		return teamMsg{seq: seq, data: d, outcome: out}
	}
}

func (p *teamPage) Title() string {
	if p.loaded && p.data.TeamName != "" {
		return p.data.TeamName
	}
	return "Team"
}

func (p *teamPage) Capturing() bool { return false }

func (p *teamPage) Help() []key.Binding {
	k := p.env.keys
	return []key.Binding{k.Up, k.Down, k.Open, k.Refresh, k.Back}
}

func (p *teamPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case teamMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		if !msg.outcome.OK() {
			return p, outcomeCmd(msg.outcome)
		}
		p.loaded = true
		p.data = msg.data
		rows := make([]table.Row, len(msg.data.Members))
		for i, m := range msg.data.Members {
			rows[i] = table.Row{
				m.Summary.EmployeeName,
				m.Employee.PrimarySkill,
				strconv.Itoa(m.Summary.TotalTasks),
				strconv.Itoa(m.Summary.CompletedTask),
				strconv.Itoa(m.Summary.PendingTask),
				strconv.Itoa(m.Summary.OverDueTask),
			}
		}
		p.table.SetRows(rows)
		p.table.SetHeight(tableHeight(p.env, len(rows), 4))
		return p, nil

	case tea.KeyMsg:
		k := p.env.keys
		switch {
		case key.Matches(msg, k.Back):
			return p, navigate(guard.PathManagerDashboard)
		case key.Matches(msg, k.Refresh):
			return p, p.Init()
		case key.Matches(msg, k.Open) && p.loaded && len(p.data.Members) > 0:
			m := p.data.Members[p.table.Cursor()]
			return p, navigate(p.env.url(guard.RouteEmployeeDetail, "employeeId", strconv.Itoa(m.Summary.EmployeeID)))
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p *teamPage) View() string {
	t := p.env.theme
	if !p.loaded {
		return loading(t, "team")
	}
	head := title(t, p.Title(), fmt.Sprintf("%d members", len(p.data.Members)))
	if len(p.data.Members) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, head, t.Muted.Render("This team has no members."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, p.table.View())
}

// =============================================================================
// EMPLOYEE DETAIL
// =============================================================================

type employeeMsg struct {
	seq     int
	data    loader.EmployeeDetail
	outcome loader.Outcome
}

type employeePage struct {
	env    *env
	seq    int
	id     int
	loaded bool
	data   loader.EmployeeDetail
	table  table.Model
}

func newEmployeePage(e *env, seq, id int) *employeePage {
	return &employeePage{env: e, seq: seq, id: id, table: newTable(e.theme, taskColumns(), 5)}
}

func (p *employeePage) Init() tea.Cmd {
	l, ctx, seq, id := p.env.loader, p.env.ctx, p.seq, p.id
	return func() tea.Msg {
		d, out := l.EmployeeDetail(ctx, id)
		return employeeMsg{seq: seq, data: d, outcome: out}
	}
}

func (p *employeePage) Title() string {
	if p.loaded {
		return p.data.Employee.Name
	}
	return "Employee"
}

func (p *employeePage) Capturing() bool { return false }

func (p *employeePage) Help() []key.Binding {
	k := p.env.keys
	return []key.Binding{k.Up, k.Down, k.AddTask, k.Refresh, k.Back}
}

func (p *employeePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case employeeMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		if !msg.outcome.OK() {
			return p, outcomeCmd(msg.outcome)
		}
		p.loaded = true
		p.data = msg.data
		p.table.SetRows(taskRows(msg.data.Tasks))
		p.table.SetHeight(tableHeight(p.env, len(msg.data.Tasks), 10))
		return p, nil

	case tea.KeyMsg:
		k := p.env.keys
		switch {
		case key.Matches(msg, k.Back):
			if p.loaded && p.data.Employee.TeamID != 0 {
				return p, navigate(p.env.url(guard.RouteTeamDashboard, "teamId", strconv.Itoa(p.data.Employee.TeamID)))
			}
			return p, navigate(guard.PathManagerDashboard)
		case key.Matches(msg, k.Refresh):
			return p, p.Init()
		case key.Matches(msg, k.AddTask):
			return p, navigate(p.env.url(guard.RouteAddTask, "employeeId", strconv.Itoa(p.id)))
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p *employeePage) View() string {
	t := p.env.theme
	if !p.loaded {
		return loading(t, "employee")
	}
	e := p.data.Employee
	parts := []string{
		t.Title.Render(e.Name),
		detail(t,
			[2]string{"Email", e.Email},
			[2]string{"Phone", e.Phone},
			[2]string{"Primary skill", e.PrimarySkill},
			[2]string{"Joined", emptyIfNA(util.FormatLongDate(e.JoiningDate))},
		),
		"",
	}
	if len(p.data.Tasks) == 0 {
		parts = append(parts, t.Muted.Render("No tasks assigned yet."))
	} else {
		parts = append(parts, p.table.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
