// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/util"
)

const dueDateLayout = "2006-01-02"

// =============================================================================
// TEAMS
// =============================================================================

// Teams lists the manager's teams with their task roll-up.
func (r *Runtime) Teams(ctx context.Context, args Args) error {
	if err := r.signedIn(ctx, guard.PathManagerDashboard); err != nil {
		return err
	}
	d, out := r.Loader.ManagerDashboard(ctx)
	if !out.OK() {
		return outcomeError("teams", out)
	}
	if args.JSON {
		return NewJSONResponse("teams", d.Teams).Write(r.Out)
	}
	if len(d.Teams) == 0 {
		r.printf("You do not manage any teams.\n")
		return nil
	}

	rows := make([][]string, 0, len(d.Teams))
	for _, t := range d.Teams {
		rows = append(rows, []string{
			strconv.Itoa(t.TeamID),
			t.TeamName,
			strconv.Itoa(t.Members),
			strconv.Itoa(t.Completed),
			strconv.Itoa(t.Pending),
			overdueCell(t.Overdue),
		})
	}
	r.printf("%s\n", RenderTable([]string{"ID", "Team", "Members", "Completed", "Pending", "Overdue"}, rows))
	return nil
}

func overdueCell(n int) string {
	if n == 0 {
		return "0"
	}
	return ErrorStyle.Render(strconv.Itoa(n))
}

// Team lists one team's members, or one member's tasks when an employee
// id follows the team id.
func (r *Runtime) Team(ctx context.Context, args Args) error {
	p := args.Parser()
	teamID, err := ParseID(p.Positional(0), "team id")
	if err != nil {
		return errUsage(err.Error(), "onboard team 1")
	}
	if p.Positional(1) != "" {
		employeeID, err := ParseID(p.Positional(1), "employee id")
		if err != nil {
			return errUsage(err.Error(), "onboard team 1 5")
		}
		return r.employee(ctx, args, employeeID)
	}

	if err := r.signedInFor(ctx, guard.RouteTeamDashboard, "teamId", strconv.Itoa(teamID)); err != nil {
		return err
	}
	d, out := r.Loader.TeamDashboard(ctx, teamID)
	if !out.OK() {
		return outcomeError("team", out)
	}
	if args.JSON {
		return NewJSONResponse("team", d).Write(r.Out)
	}

	r.printf("%s\n", TitleStyle.Render(d.TeamName))
	if len(d.Members) == 0 {
		r.printf("No members.\n")
		return nil
	}
	rows := make([][]string, 0, len(d.Members))
	for _, m := range d.Members {
		rows = append(rows, []string{
			strconv.Itoa(m.Summary.EmployeeID),
			m.Summary.EmployeeName,
			m.Employee.Email,
			fmt.Sprintf("%d/%d", m.Summary.CompletedTask, m.Summary.TotalTasks),
			overdueCell(m.Summary.OverDueTask),
		})
	}
	r.printf("%s\n", RenderTable([]string{"ID", "Name", "Email", "Done", "Overdue"}, rows))
	return nil
}

func (r *Runtime) employee(ctx context.Context, args Args, id int) error {
	if err := r.signedInFor(ctx, guard.RouteEmployeeDetail, "employeeId", strconv.Itoa(id)); err != nil {
		return err
	}
	d, out := r.Loader.EmployeeDetail(ctx, id)
	if !out.OK() {
		return outcomeError("team", out)
	}
	if args.JSON {
		return NewJSONResponse("employee", d).Write(r.Out)
	}

	e := d.Employee
	r.printf("%s\n", TitleStyle.Render(e.Name))
	r.printf("%s", RenderField("Email", e.Email))
	r.printf("%s", RenderField("Phone", e.Phone))
	r.printf("%s", RenderField("Primary skill", e.PrimarySkill))
	r.printf("%s", RenderField("Joined", util.FormatLongDate(e.JoiningDate)))
	r.printf("\n")
	if len(d.Tasks) == 0 {
		r.printf("No tasks assigned yet.\n")
		return nil
	}
	r.printf("%s\n", RenderTable([]string{"ID", "Task", "Status", "Due"}, taskRows(d.Tasks)))
	return nil
}

// =============================================================================
// ASSIGN
// =============================================================================

// Assign gives an employee a task from the catalogue.
func (r *Runtime) Assign(ctx context.Context, args Args) error {
	const example = "onboard assign 5 --task 2 --due 2025-07-01"
	p := args.Parser()
	employeeID, err := ParseID(p.Positional(0), "employee id")
	if err != nil {
		return errUsage(err.Error(), example)
	}
	taskArg := p.Flag("task", "t")
	if taskArg == "" {
		return errUsage("--task is required", example)
	}
	due := p.Flag("due", "d")
	if _, err := time.Parse(dueDateLayout, due); err != nil {
		return errUsage("--due must be a date like 2025-07-01", example)
	}

	in := loader.NewTaskInput{
		DueDate:     due,
		Status:      api.StatusNew,
		Priority:    api.TaskPriorities[1],
		POC:         p.Flag("poc"),
		Description: p.Flag("description", "desc"),
	}
	if s := p.Flag("status"); s != "" {
		m, ok := api.MatchStatus(s)
		if !ok {
			return errUsage(fmt.Sprintf("unknown status %q", s), example)
		}
		in.Status = m
	}
	if pr := p.Flag("priority"); pr != "" {
		m, ok := matchFold(api.TaskPriorities, pr)
		if !ok {
			return errUsage(fmt.Sprintf("priority must be one of %s", strings.Join(api.TaskPriorities, ", ")), example)
		}
		in.Priority = m
	}

	if err := r.signedInFor(ctx, guard.RouteAddTask, "employeeId", strconv.Itoa(employeeID)); err != nil {
		return err
	}
	form, out := r.Loader.AddTaskForm(ctx, employeeID)
	if !out.OK() {
		return outcomeError("assign", out)
	}
	opt, ok := findOption(form.Catalog, taskArg)
	if !ok {
		return errUsage(fmt.Sprintf("no catalogue task matches %q", taskArg), example)
	}
	in.TaskID = opt.ID

	if out := r.Loader.AddTask(ctx, employeeID, in); !out.OK() {
		return outcomeError("assign", out)
	}
	if args.JSON {
		return NewJSONResponse("assign", map[string]any{
			"employee": form.Employee,
			"task":     opt,
			"dueDate":  in.DueDate,
			"status":   in.Status,
			"priority": in.Priority,
		}).Write(r.Out)
	}
	r.success("Task assigned to %s: %s (due %s)", form.Employee.Name, opt.Name, util.FormatDate(in.DueDate))
	return nil
}

// findOption matches a catalogue entry by id or case-insensitive name.
func findOption(catalog []api.TaskOption, s string) (api.TaskOption, bool) {
	if id, err := strconv.Atoi(s); err == nil {
		for _, o := range catalog {
			if o.ID == id {
				return o, true
			}
		}
		return api.TaskOption{}, false
	}
	for _, o := range catalog {
		if strings.EqualFold(o.Name, strings.TrimSpace(s)) {
			return o, true
		}
	}
	return api.TaskOption{}, false
}

func matchFold(choices []string, s string) (string, bool) {
	for _, c := range choices {
		if strings.EqualFold(c, strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}
