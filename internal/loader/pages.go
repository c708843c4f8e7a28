// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loader

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/util"
)

// =============================================================================
// PAGE DATA
// =============================================================================

// TaskRow is a task with its overdue flag.
type TaskRow struct {
	api.Task
	Overdue bool
}

// EmployeeDashboard is the employee landing page.
type EmployeeDashboard struct {
	Employee api.Employee
	Tasks    []TaskRow
}

// Counts returns completed, pending and overdue totals.
func (d EmployeeDashboard) Counts() (completed, pending, overdue int) {
	for _, t := range d.Tasks {
		switch {
		case util.IsCompleted(t.Status):
			completed++
		case t.Overdue:
			overdue++
		default:
			pending++
		}
	}
	return completed, pending, overdue
}

// TaskDetail is one task with its comments.
type TaskDetail struct {
	Task     api.Task
	Comments []api.Comment
	Overdue  bool
}

// ManagerDashboard is the manager landing page.
type ManagerDashboard struct {
	Teams []api.TeamSummary
}

// TeamMember is a member summary joined with the employee record.
type TeamMember struct {
	Summary  api.MemberSummary
	Employee api.Employee
}

// TeamDashboard is one team's member list.
type TeamDashboard struct {
	TeamID   int
	TeamName string
	Members  []TeamMember
}

// EmployeeDetail is a manager's view of one employee.
type EmployeeDetail struct {
	Employee api.Employee
	Tasks    []TaskRow
}

// AddTaskForm is the data behind the add-task page.
type AddTaskForm struct {
	Employee api.Employee
	Catalog  []api.TaskOption
}

func (l *Loader) rows(tasks []api.Task) []TaskRow {
	now := l.now()
	out := make([]TaskRow, len(tasks))
	for i, t := range tasks {
		out[i] = TaskRow{Task: t, Overdue: util.IsOverdue(t.DueDate, t.Status, now)}
	}
	return out
}

func (l *Loader) newPool(ctx context.Context) *pool.ContextPool {
	return pool.New().WithMaxGoroutines(l.fanOut).WithContext(ctx).WithCancelOnError()
}

// =============================================================================
// EMPLOYEE PAGES
// =============================================================================

// EmployeeDashboard loads the signed-in employee and their tasks.
func (l *Loader) EmployeeDashboard(ctx context.Context) (EmployeeDashboard, Outcome) {
	sess, out, ok := l.session()
	if !ok {
		return EmployeeDashboard{}, out
	}
	id := sess.Identity.EmployeeID

	var d EmployeeDashboard
	var tasks []api.Task
	p := l.newPool(ctx)
	p.Go(func(ctx context.Context) error {
		emp, err := l.client.Employee(ctx, id)
		d.Employee = emp
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		tasks, err = l.client.EmployeeTasks(ctx, id)
		return err
	})
	if err := p.Wait(); err != nil {
		return EmployeeDashboard{}, l.outcome(ctx, "employee-dashboard", err)
	}
	d.Tasks = l.rows(tasks)
	return d, Outcome{}
}

// TaskDetail loads one of the signed-in employee's tasks and its comments.
func (l *Loader) TaskDetail(ctx context.Context, taskID int) (TaskDetail, Outcome) {
	sess, out, ok := l.session()
	if !ok {
		return TaskDetail{}, out
	}
	id := sess.Identity.EmployeeID

	var d TaskDetail
	p := l.newPool(ctx)
	p.Go(func(ctx context.Context) error {
		t, err := l.client.Task(ctx, id, taskID)
		d.Task = t
		return err
	})
	p.Go(func(ctx context.Context) error {
		c, err := l.client.TaskComments(ctx, id, taskID)
		d.Comments = c
		return err
	})
	if err := p.Wait(); err != nil {
		return TaskDetail{}, l.outcome(ctx, "task-detail", err)
	}
	d.Overdue = util.IsOverdue(d.Task.DueDate, d.Task.Status, l.now())
	return d, Outcome{}
}

// UpdateTaskStatus changes the status of one of the signed-in employee's
// tasks.
func (l *Loader) UpdateTaskStatus(ctx context.Context, taskID int, status string) (api.Task, Outcome) {
	sess, out, ok := l.session()
	if !ok {
		return api.Task{}, out
	}
	t, err := l.client.UpdateTaskStatus(ctx, sess.Identity.EmployeeID, taskID, status)
	if err != nil {
		return api.Task{}, l.outcome(ctx, "update-task-status", err)
	}
	return t, Outcome{}
}

// AddComment posts a comment on one of the signed-in employee's tasks and
// returns the refreshed comment list.
func (l *Loader) AddComment(ctx context.Context, taskID int, text string) ([]api.Comment, Outcome) {
	sess, out, ok := l.session()
	if !ok {
		return nil, out
	}
	id := sess.Identity.EmployeeID
	if err := l.client.AddComment(ctx, id, taskID, text); err != nil {
		return nil, l.outcome(ctx, "add-comment", err)
	}
	comments, err := l.client.TaskComments(ctx, id, taskID)
	if err != nil {
		return nil, l.outcome(ctx, "add-comment", err)
	}
	return comments, Outcome{}
}

// =============================================================================
// MANAGER PAGES
// =============================================================================

// ManagerDashboard loads the team roll-up.
func (l *Loader) ManagerDashboard(ctx context.Context) (ManagerDashboard, Outcome) {
	if _, out, ok := l.session(); !ok {
		return ManagerDashboard{}, out
	}
	teams, err := l.client.TeamSummaries(ctx)
	if err != nil {
		return ManagerDashboard{}, l.outcome(ctx, "manager-dashboard", err)
	}
	return ManagerDashboard{Teams: teams}, Outcome{}
}

// TeamDashboard loads a team's members and their employee records. The
// records are fetched concurrently.
func (l *Loader) TeamDashboard(ctx context.Context, teamID int) (TeamDashboard, Outcome) {
	if _, out, ok := l.session(); !ok {
		return TeamDashboard{}, out
	}

	d := TeamDashboard{TeamID: teamID}
	var summaries []api.MemberSummary
	p := l.newPool(ctx)
	p.Go(func(ctx context.Context) error {
		teams, err := l.client.TeamSummaries(ctx)
		for _, t := range teams {
			if t.TeamID == teamID {
				d.TeamName = t.TeamName
			}
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		summaries, err = l.client.TeamMembers(ctx, teamID)
		return err
	})
	if err := p.Wait(); err != nil {
		return TeamDashboard{}, l.outcome(ctx, "team-dashboard", err)
	}

	var mu sync.Mutex
	members := make([]TeamMember, 0, len(summaries))
	p = l.newPool(ctx)
	for _, s := range summaries {
		p.Go(func(ctx context.Context) error {
			emp, err := l.client.Employee(ctx, s.EmployeeID)
			if err != nil {
				return err
			}
			mu.Lock()
			members = append(members, TeamMember{Summary: s, Employee: emp})
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return TeamDashboard{}, l.outcome(ctx, "team-dashboard", err)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].Summary.EmployeeID < members[j].Summary.EmployeeID
	})
	d.Members = members
	return d, Outcome{}
}

// EmployeeDetail loads one employee and their tasks for a manager.
func (l *Loader) EmployeeDetail(ctx context.Context, employeeID int) (EmployeeDetail, Outcome) {
	if _, out, ok := l.session(); !ok {
		return EmployeeDetail{}, out
	}

	var d EmployeeDetail
	var tasks []api.Task
	p := l.newPool(ctx)
	p.Go(func(ctx context.Context) error {
		emp, err := l.client.Employee(ctx, employeeID)
		d.Employee = emp
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		tasks, err = l.client.EmployeeTasks(ctx, employeeID)
		return err
	})
	if err := p.Wait(); err != nil {
		return EmployeeDetail{}, l.outcome(ctx, "employee-detail", err)
	}
	d.Tasks = l.rows(tasks)
	return d, Outcome{}
}

// AddTaskForm loads the employee and the task catalogue.
func (l *Loader) AddTaskForm(ctx context.Context, employeeID int) (AddTaskForm, Outcome) {
	if _, out, ok := l.session(); !ok {
		return AddTaskForm{}, out
	}

	var f AddTaskForm
	p := l.newPool(ctx)
	p.Go(func(ctx context.Context) error {
		emp, err := l.client.Employee(ctx, employeeID)
		f.Employee = emp
		return err
	})
	p.Go(func(ctx context.Context) error {
		opts, err := l.client.TaskCatalog(ctx)
		f.Catalog = opts
		return err
	})
	if err := p.Wait(); err != nil {
		return AddTaskForm{}, l.outcome(ctx, "add-task-form", err)
	}
	return f, Outcome{}
}

// NewTaskInput is what a manager fills in on the add-task page.
type NewTaskInput struct {
	TaskID      int
	DueDate     string
	Status      string
	Description string
	POC         string
	Priority    string
}

// AddTask assigns a task to employeeID. Author fields come from the
// session.
func (l *Loader) AddTask(ctx context.Context, employeeID int, in NewTaskInput) Outcome {
	sess, out, ok := l.session()
	if !ok {
		return out
	}
	if in.Status == "" {
		in.Status = api.StatusNew
	}
	err := l.client.AddTask(ctx, api.NewTask{
		TaskID:      in.TaskID,
		EmployeeID:  employeeID,
		DueDate:     in.DueDate,
		Status:      in.Status,
		Description: in.Description,
		POC:         in.POC,
		Priority:    in.Priority,
		CreatedBy:   sess.Identity.UserName,
		UpdatedBy:   sess.Identity.UserName,
	})
	return l.outcome(ctx, "add-task", err)
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile loads the signed-in user's profile.
func (l *Loader) Profile(ctx context.Context) (api.Profile, Outcome) {
	if _, out, ok := l.session(); !ok {
		return api.Profile{}, out
	}
	p, err := l.client.Profile(ctx)
	if err != nil {
		return api.Profile{}, l.outcome(ctx, "profile", err)
	}
	return p, Outcome{}
}

// UpdateProfile saves profile changes and returns the refreshed profile.
func (l *Loader) UpdateProfile(ctx context.Context, u api.ProfileUpdate) (api.Profile, Outcome) {
	if _, out, ok := l.session(); !ok {
		return api.Profile{}, out
	}
	if err := l.client.UpdateProfile(ctx, u); err != nil {
		return api.Profile{}, l.outcome(ctx, "update-profile", err)
	}
	return l.Profile(ctx)
}
