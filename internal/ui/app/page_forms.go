// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/util"
)

// =============================================================================
// ADD TASK
// =============================================================================

// Add-task form focus positions.
const (
	addTaskCatalog = iota
	addTaskDue
	addTaskStatus
	addTaskPriority
	addTaskPOC
	addTaskDescription
	addTaskSubmit
	addTaskFields
)

const dueDateLayout = "2006-01-02"

type addTaskFormMsg struct {
	seq     int
	data    loader.AddTaskForm
	outcome loader.Outcome
}

type addTaskDoneMsg struct {
	seq     int
	outcome loader.Outcome
}

type addTaskPage struct {
	env    *env
	seq    int
	id     int
	loaded bool
	busy   bool
	err    string
	data   loader.AddTaskForm
	focus  int

	catalog  int
	status   int
	priority int
	due      textinput.Model
	poc      textinput.Model
	desc     textinput.Model
}

func newAddTaskPage(e *env, seq, id int) *addTaskPage {
	return &addTaskPage{
		env:      e,
		seq:      seq,
		id:       id,
		priority: 1,
		due:      newInput("YYYY-MM-DD", 10),
		poc:      newInput("Point of contact", 64),
		desc:     newInput("What needs doing", 500),
	}
}

func (p *addTaskPage) Init() tea.Cmd {
	l, ctx, seq, id := p.env.loader, p.env.ctx, p.seq, p.id
	return func() tea.Msg {
		d, out := l.AddTaskForm(ctx, id)
		return addTaskFormMsg{seq: seq, data: d, outcome: out}
	}
}

func (p *addTaskPage) Title() string { return "Assign task" }

func (p *addTaskPage) Capturing() bool {
	return p.focus == addTaskDue || p.focus == addTaskPOC || p.focus == addTaskDescription
}

func (p *addTaskPage) Help() []key.Binding {
	k := p.env.keys
	return []key.Binding{k.NextField, k.Left, k.Right, k.Submit, k.Back}
}

func (p *addTaskPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case addTaskFormMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		if !msg.outcome.OK() {
			return p, outcomeCmd(msg.outcome)
		}
		p.loaded = true
		p.data = msg.data
		return p, nil

	case addTaskDoneMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if !msg.outcome.OK() {
			if msg.outcome.Redirect != "" {
				return p, outcomeCmd(msg.outcome)
			}
			p.err = msg.outcome.Message
			return p, nil
		}
		return p, tea.Batch(
			notify("Task assigned to "+p.data.Employee.Name, false),
			navigate(p.backPath()),
		)

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		k := p.env.keys
		switch {
		case key.Matches(msg, k.Back):
			return p, navigate(p.backPath())
		case !p.loaded:
			return p, nil
		case key.Matches(msg, k.NextField):
			p.setFocus((p.focus + 1) % addTaskFields)
			return p, nil
		case key.Matches(msg, k.PrevField):
			p.setFocus((p.focus + addTaskFields - 1) % addTaskFields)
			return p, nil
		case key.Matches(msg, k.Submit):
			if p.focus != addTaskSubmit {
				p.setFocus(p.focus + 1)
				return p, nil
			}
			return p, p.submit()
		case key.Matches(msg, k.Left, k.Right) && !p.Capturing():
			delta := 1
			if key.Matches(msg, k.Left) {
				delta = -1
			}
			switch p.focus {
			case addTaskCatalog:
				p.catalog = cycle(p.catalog, delta, len(p.data.Catalog))
			case addTaskStatus:
				p.status = cycle(p.status, delta, len(api.TaskStatuses))
			case addTaskPriority:
				p.priority = cycle(p.priority, delta, len(api.TaskPriorities))
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	switch p.focus {
	case addTaskDue:
		p.due, cmd = p.due.Update(msg)
	case addTaskPOC:
		p.poc, cmd = p.poc.Update(msg)
	case addTaskDescription:
		p.desc, cmd = p.desc.Update(msg)
	}
	return p, cmd
}

func (p *addTaskPage) backPath() string {
	return p.env.url(guard.RouteEmployeeDetail, "employeeId", strconv.Itoa(p.id))
}

func (p *addTaskPage) setFocus(f int) {
	p.focus = f
	p.due.Blur()
	p.poc.Blur()
	p.desc.Blur()
	switch f {
	case addTaskDue:
		p.due.Focus()
	case addTaskPOC:
		p.poc.Focus()
	case addTaskDescription:
		p.desc.Focus()
	}
}

func (p *addTaskPage) submit() tea.Cmd {
	in := loader.NewTaskInput{
		DueDate:     strings.TrimSpace(p.due.Value()),
		Status:      api.TaskStatuses[p.status],
		Description: p.desc.Value(),
		POC:         p.poc.Value(),
		Priority:    api.TaskPriorities[p.priority],
	}
	if len(p.data.Catalog) > 0 {
		in.TaskID = p.data.Catalog[p.catalog].ID
	}
	if _, err := time.Parse(dueDateLayout, in.DueDate); err != nil {
		p.err = "Due date must be YYYY-MM-DD"
		return nil
	}

	p.busy = true
	p.err = ""
	l, ctx, seq, id := p.env.loader, p.env.ctx, p.seq, p.id
	return func() tea.Msg {
		return addTaskDoneMsg{seq: seq, outcome: l.AddTask(ctx, id, in)}
	}
}

func (p *addTaskPage) View() string {
	t := p.env.theme
	if !p.loaded {
		return loading(t, "task catalogue")
	}

	names := make([]string, len(p.data.Catalog))
	for i, c := range p.data.Catalog {
		names[i] = c.Name
	}

	button := t.Button.Render("Assign")
	if p.focus == addTaskSubmit {
		button = t.ButtonActive.Render("Assign")
	}

	rows := []string{
		title(t, "Assign a task", "to "+p.data.Employee.Name),
		field(t, "Task", p.focus == addTaskCatalog, choice(t, names, p.catalog, p.focus == addTaskCatalog)),
		field(t, "Due date", p.focus == addTaskDue, p.due.View()),
		field(t, "Status", p.focus == addTaskStatus, choice(t, api.TaskStatuses, p.status, p.focus == addTaskStatus)),
		field(t, "Priority", p.focus == addTaskPriority, choice(t, api.TaskPriorities, p.priority, p.focus == addTaskPriority)),
		field(t, "Contact", p.focus == addTaskPOC, p.poc.View()),
		field(t, "Description", p.focus == addTaskDescription, p.desc.View()),
		"",
		button,
	}
	switch {
	case p.busy:
		rows = append(rows, "", t.Muted.Render("Saving..."))
	case p.err != "":
		rows = append(rows, "", t.FormError.Render(p.err))
	}
	return t.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile edit focus positions.
const (
	profileEmail = iota
	profilePhone
	profileSkill
	profileFields
)

type profileMsg struct {
	seq     int
	data    api.Profile
	outcome loader.Outcome
	saved   bool
}

type profilePage struct {
	env     *env
	seq     int
	loaded  bool
	busy    bool
	err     string
	data    api.Profile
	editing bool
	focus   int
	inputs  [profileFields]textinput.Model
}

func newProfilePage(e *env, seq int) *profilePage {
	p := &profilePage{env: e, seq: seq}
	p.inputs[profileEmail] = newInput("name@example.com", 128)
	p.inputs[profilePhone] = newInput("Phone", 32)
	p.inputs[profileSkill] = newInput("Primary skill", 64)
	return p
}

func (p *profilePage) Init() tea.Cmd {
	l, ctx, seq := p.env.loader, p.env.ctx, p.seq
	return func() tea.Msg {
		d, out := l.Profile(ctx)
		return profileMsg{seq: seq, data: d, outcome: out}
	}
}

func (p *profilePage) Title() string { return "Profile" }

func (p *profilePage) Capturing() bool { return p.editing }

func (p *profilePage) Help() []key.Binding {
	k := p.env.keys
	if p.editing {
		return []key.Binding{k.NextField, k.Submit, k.Back}
	}
	return []key.Binding{k.Edit, k.Refresh, k.Back}
}

func (p *profilePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case profileMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if !msg.outcome.OK() {
			if p.editing && msg.outcome.Redirect == "" {
				p.err = msg.outcome.Message
				return p, nil
			}
			return p, outcomeCmd(msg.outcome)
		}
		p.loaded = true
		p.data = msg.data
		if msg.saved {
			p.stopEditing()
			return p, notify("Profile updated", false)
		}
		return p, nil

	case tea.KeyMsg:
		if p.editing {
			return p.updateEditing(msg)
		}
		k := p.env.keys
		switch {
		case key.Matches(msg, k.Back):
			// "/" resolves to the role's home for a signed-in user.
			return p, navigate(guard.PathLogin)
		case key.Matches(msg, k.Refresh):
			return p, p.Init()
		case key.Matches(msg, k.Edit) && p.loaded:
			p.startEditing()
			return p, nil
		}
	}
	return p, nil
}

func (p *profilePage) startEditing() {
	p.editing = true
	p.err = ""
	p.inputs[profileEmail].SetValue(p.data.Email)
	p.inputs[profilePhone].SetValue(p.data.Phone)
	p.inputs[profileSkill].SetValue(p.data.PrimarySkill)
	p.setFocus(profileEmail)
}

func (p *profilePage) stopEditing() {
	p.editing = false
	p.err = ""
	for i := range p.inputs {
		p.inputs[i].Blur()
	}
}

func (p *profilePage) setFocus(f int) {
	p.focus = f
	for i := range p.inputs {
		if i == f {
			p.inputs[i].Focus()
		} else {
			p.inputs[i].Blur()
		}
	}
}

func (p *profilePage) updateEditing(msg tea.KeyMsg) (page, tea.Cmd) {
	if p.busy {
		return p, nil
	}
	k := p.env.keys
	switch {
	case key.Matches(msg, k.Back):
		p.stopEditing()
		return p, nil
	case key.Matches(msg, k.NextField):
		p.setFocus((p.focus + 1) % profileFields)
		return p, nil
	case key.Matches(msg, k.PrevField):
		p.setFocus((p.focus + profileFields - 1) % profileFields)
		return p, nil
	case key.Matches(msg, k.Submit):
		return p, p.save()
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return p, cmd
}

// save sends only the fields that changed.
func (p *profilePage) save() tea.Cmd {
	var u api.ProfileUpdate
	changed := func(in textinput.Model, old string) *string {
		v := strings.TrimSpace(in.Value())
		if v == old {
			return nil
		}
		return &v
	}
	u.Email = changed(p.inputs[profileEmail], p.data.Email)
	u.Phone = changed(p.inputs[profilePhone], p.data.Phone)
	u.PrimarySkill = changed(p.inputs[profileSkill], p.data.PrimarySkill)
	if u.Empty() {
		p.stopEditing()
		return notify("No changes to save", false)
	}

	p.busy = true
	l, ctx, seq := p.env.loader, p.env.ctx, p.seq
	return func() tea.Msg {
		d, out := l.UpdateProfile(ctx, u)
		return profileMsg{seq: seq, data: d, outcome: out, saved: true}
	}
}

func (p *profilePage) View() string {
	t := p.env.theme
	if !p.loaded {
		return loading(t, "profile")
	}
	d := p.data

	if p.editing {
		rows := []string{
			title(t, "Edit profile", d.Name),
			field(t, "Email", p.focus == profileEmail, p.inputs[profileEmail].View()),
			field(t, "Phone", p.focus == profilePhone, p.inputs[profilePhone].View()),
			field(t, "Primary skill", p.focus == profileSkill, p.inputs[profileSkill].View()),
		}
		switch {
		case p.busy:
			rows = append(rows, "", t.Muted.Render("Saving..."))
		case p.err != "":
			rows = append(rows, "", t.FormError.Render(p.err))
		}
		return t.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render(d.Name),
		detail(t,
			[2]string{"Username", d.UserName},
			[2]string{"Role", d.Role},
			[2]string{"Team", d.TeamName},
			[2]string{"Email", d.Email},
			[2]string{"Phone", d.Phone},
			[2]string{"Primary skill", d.PrimarySkill},
			[2]string{"Joined", emptyIfNA(util.FormatLongDate(d.JoiningDate))},
			[2]string{"Last updated", emptyIfNA(util.FormatDateTime(d.LastUpdated))},
		),
	)
}
