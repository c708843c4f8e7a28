// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/ui/components"
	"github.com/morganforge/onboard-tui/internal/util"
)

// =============================================================================
// EMPLOYEE DASHBOARD
// =============================================================================

type employeeDashboardMsg struct {
	seq     int
	data    loader.EmployeeDashboard
	outcome loader.Outcome
}

type employeeDashboardPage struct {
	env    *env
	seq    int
	loaded bool
	data   loader.EmployeeDashboard
	table  table.Model
}

func newEmployeeDashboardPage(e *env, seq int) *employeeDashboardPage {
	return &employeeDashboardPage{env: e, seq: seq, table: newTable(e.theme, taskColumns(), 5)}
}

func (p *employeeDashboardPage) Init() tea.Cmd {
	l, ctx, seq := p.env.loader, p.env.ctx, p.seq
	return func() tea.Msg {
		d, out := l.EmployeeDashboard(ctx)
		return employeeDashboardMsg{seq: seq, data: d, outcome: out}
	}
}

func (p *employeeDashboardPage) Title() string { return "My tasks" }

func (p *employeeDashboardPage) Capturing() bool { return false }

func (p *employeeDashboardPage) Help() []key.Binding {
	k := p.env.keys
	return []key.Binding{k.Up, k.Down, k.Open, k.Refresh}
}

func (p *employeeDashboardPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case employeeDashboardMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		if !msg.outcome.OK() {
			return p, outcomeCmd(msg.outcome)
		}
		p.loaded = true
		p.data = msg.data
		p.table.SetRows(taskRows(msg.data.Tasks))
		p.table.SetHeight(tableHeight(p.env, len(msg.data.Tasks), 6))
		return p, nil

	case tea.KeyMsg:
		k := p.env.keys
		switch {
		case key.Matches(msg, k.Refresh):
			return p, p.Init()
		case key.Matches(msg, k.Open) && p.loaded && len(p.data.Tasks) > 0:
			task := p.data.Tasks[p.table.Cursor()]
			return p, navigate(p.env.url(guard.RouteTaskDetail, "taskId", strconv.Itoa(task.ID)))
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p *employeeDashboardPage) View() string {
	t := p.env.theme
	if !p.loaded {
		return loading(t, "your tasks")
	}

	done, pending, overdue := p.data.Counts()
	counts := fmt.Sprintf("%d completed   %d pending   %d overdue   %s",
		done, pending, overdue, components.NewProgressBar(done, len(p.data.Tasks)).Render())

	parts := []string{title(t, "Welcome, "+p.data.Employee.Name, counts)}
	if len(p.data.Tasks) == 0 {
		parts = append(parts, t.Muted.Render("No tasks assigned yet."))
	} else {
		parts = append(parts, p.table.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// TASK DETAIL
// =============================================================================

type taskDetailMsg struct {
	seq     int
	data    loader.TaskDetail
	outcome loader.Outcome
}

type taskStatusMsg struct {
	seq     int
	task    api.Task
	outcome loader.Outcome
}

type taskCommentsMsg struct {
	seq      int
	comments []api.Comment
	outcome  loader.Outcome
}

type taskPage struct {
	env        *env
	seq        int
	id         int
	loaded     bool
	busy       bool
	data       loader.TaskDetail
	commenting bool
	input      textinput.Model
}

func newTaskPage(e *env, seq, id int) *taskPage {
	return &taskPage{env: e, seq: seq, id: id, input: newInput("Write a comment", 500)}
}

func (p *taskPage) Init() tea.Cmd {
	l, ctx, seq, id := p.env.loader, p.env.ctx, p.seq, p.id
	return func() tea.Msg {
		d, out := l.TaskDetail(ctx, id)
		return taskDetailMsg{seq: seq, data: d, outcome: out}
	}
}

func (p *taskPage) Title() string {
	if p.loaded {
		return p.data.Task.Name
	}
	return "Task"
}

func (p *taskPage) Capturing() bool { return p.commenting }

func (p *taskPage) Help() []key.Binding {
	k := p.env.keys
	if p.commenting {
		return []key.Binding{k.Submit, k.Back}
	}
	return []key.Binding{k.Status, k.Comment, k.Refresh, k.Back}
}

func (p *taskPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDetailMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		if !msg.outcome.OK() {
			return p, outcomeCmd(msg.outcome)
		}
		p.loaded = true
		p.data = msg.data
		return p, nil

	case taskStatusMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if !msg.outcome.OK() {
			return p, outcomeCmd(msg.outcome)
		}
		p.data.Task.Status = msg.task.Status
		// Reload for the server's completion date and overdue flag.
		return p, tea.Batch(
			notify("Status changed to "+util.DisplayStatus(msg.task.Status), false),
			p.Init(),
		)

	case taskCommentsMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if !msg.outcome.OK() {
			return p, outcomeCmd(msg.outcome)
		}
		p.data.Comments = msg.comments
		p.commenting = false
		p.input.SetValue("")
		p.input.Blur()
		return p, notify("Comment added", false)

	case tea.KeyMsg:
		if p.commenting {
			return p.updateComment(msg)
		}
		k := p.env.keys
		switch {
		case key.Matches(msg, k.Back):
			return p, navigate(guard.PathEmployeeDashboard)
		case key.Matches(msg, k.Refresh):
			return p, p.Init()
		case !p.loaded || p.busy:
			return p, nil
		case key.Matches(msg, k.Status):
			return p, p.changeStatus(api.NextStatus(p.data.Task.Status))
		case key.Matches(msg, k.Comment):
			p.commenting = true
			p.input.Focus()
			return p, nil
		}
	}
	return p, nil
}

func (p *taskPage) updateComment(msg tea.KeyMsg) (page, tea.Cmd) {
	k := p.env.keys
	switch {
	case key.Matches(msg, k.Back):
		p.commenting = false
		p.input.Blur()
		return p, nil
	case key.Matches(msg, k.Submit):
		if p.busy {
			return p, nil
		}
		p.busy = true
		l, ctx, seq, id, text := p.env.loader, p.env.ctx, p.seq, p.id, p.input.Value()
		return p, func() tea.Msg {
			comments, out := l.AddComment(ctx, id, text)
			return taskCommentsMsg{seq: seq, comments: comments, outcome: out}
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *taskPage) changeStatus(status string) tea.Cmd {
	p.busy = true
	l, ctx, seq, id := p.env.loader, p.env.ctx, p.seq, p.id
	return func() tea.Msg {
		task, out := l.UpdateTaskStatus(ctx, id, status)
		return taskStatusMsg{seq: seq, task: task, outcome: out}
	}
}

func (p *taskPage) View() string {
	t := p.env.theme
	if !p.loaded {
		return loading(t, "task")
	}
	task := p.data.Task

	status := t.StatusStyle(task.Status, p.data.Overdue).Render(statusCell(task.Status, p.data.Overdue))
	if p.data.Overdue {
		status += t.FormError.Render("  overdue")
	}

	info := detail(t,
		[2]string{"Status", status},
		[2]string{"Due date", util.FormatLongDate(task.DueDate)},
		[2]string{"Priority", task.Priority},
		[2]string{"Point of contact", task.POC},
		[2]string{"Assigned by", task.CreatedBy},
		[2]string{"Assigned on", emptyIfNA(util.FormatDate(task.CreatedOn))},
		[2]string{"Completed on", emptyIfNA(util.FormatDate(task.CompletedOn))},
	)

	parts := []string{
		t.Title.Render(task.Name),
		info,
		"",
		markdown(t, task.Description, p.env.width-4),
		"",
		t.Subtitle.Render(fmt.Sprintf("Comments (%d)", len(p.data.Comments))),
	}
	for _, c := range p.data.Comments {
		head := t.Label.Copy().Width(0).Render(c.CreatedBy + "  " + util.FormatDateTime(c.CreatedOn))
		parts = append(parts, t.Comment.Render(head+"\n"+c.Comment))
	}
	if p.commenting {
		parts = append(parts, "", field(t, "Comment", true, p.input.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// emptyIfNA hides the placeholder date so detail skips the row.
func emptyIfNA(s string) string {
	if s == util.NotAvailable {
		return ""
	}
	return s
}
