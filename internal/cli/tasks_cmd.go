// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/util"
)

// =============================================================================
// TASKS
// =============================================================================

type taskListing struct {
	Employee  api.Employee     `json:"employee"`
	Tasks     []loader.TaskRow `json:"tasks"`
	Completed int              `json:"completed"`
	Pending   int              `json:"pending"`
	Overdue   int              `json:"overdue"`
}

// Tasks lists the signed-in employee's tasks.
func (r *Runtime) Tasks(ctx context.Context, args Args) error {
	if err := r.signedIn(ctx, guard.PathEmployeeDashboard); err != nil {
		return err
	}
	d, out := r.Loader.EmployeeDashboard(ctx)
	if !out.OK() {
		return outcomeError("tasks", out)
	}
	completed, pending, overdue := d.Counts()

	if args.JSON {
		return NewJSONResponse("tasks", taskListing{
			Employee:  d.Employee,
			Tasks:     d.Tasks,
			Completed: completed,
			Pending:   pending,
			Overdue:   overdue,
		}).Write(r.Out)
	}

	r.printf("%s\n", TitleStyle.Render("Tasks for "+d.Employee.Name))
	r.printf("%s\n\n", DimStyle.Render(fmt.Sprintf("%d completed, %d pending, %d overdue", completed, pending, overdue)))
	if len(d.Tasks) == 0 {
		r.printf("No tasks assigned yet.\n")
		return nil
	}
	r.printf("%s\n", RenderTable([]string{"ID", "Task", "Status", "Due"}, taskRows(d.Tasks)))
	return nil
}

func taskRows(tasks []loader.TaskRow) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			util.TruncateWidth(t.Name, 40),
			RenderTaskStatus(t.Status, t.Overdue),
			util.FormatDate(t.DueDate),
		})
	}
	return rows
}

// =============================================================================
// TASK
// =============================================================================

// Task shows one task or changes it.
func (r *Runtime) Task(ctx context.Context, args Args) error {
	p := args.Parser()
	sub := p.Subcommand()
	if _, err := strconv.Atoi(sub); err == nil {
		// "onboard task 101" is shorthand for show.
		return r.showTask(ctx, args, sub)
	}

	switch sub {
	case "", "show":
		return r.showTask(ctx, args, p.Positional(1))
	case "status":
		return r.setTaskStatus(ctx, args, p.Positional(1), strings.Join(p.PositionalFrom(2), " "))
	case "comment":
		return r.commentTask(ctx, args, p.Positional(1), strings.Join(p.PositionalFrom(2), " "))
	default:
		return errUsage(fmt.Sprintf("unknown task subcommand %q", sub), "onboard task show 101")
	}
}

func taskID(s, example string) (int, error) {
	id, err := ParseID(s, "task id")
	if err != nil {
		return 0, errUsage(err.Error(), example)
	}
	return id, nil
}

func (r *Runtime) showTask(ctx context.Context, args Args, raw string) error {
	id, err := taskID(raw, "onboard task show 101")
	if err != nil {
		return err
	}
	if err := r.signedInFor(ctx, guard.RouteTaskDetail, "taskId", strconv.Itoa(id)); err != nil {
		return err
	}
	d, out := r.Loader.TaskDetail(ctx, id)
	if !out.OK() {
		return outcomeError("task", out)
	}
	if args.JSON {
		return NewJSONResponse("task", d).Write(r.Out)
	}
	r.printTask(d)
	return nil
}

func (r *Runtime) printTask(d loader.TaskDetail) {
	t := d.Task
	r.printf("%s\n", TitleStyle.Render(fmt.Sprintf("#%d %s", t.ID, t.Name)))
	r.printf("%s%s\n", RenderLabel("Status"), RenderTaskStatus(t.Status, d.Overdue))
	r.printf("%s", RenderField("Due", util.FormatLongDate(t.DueDate)))
	r.printf("%s", RenderField("Priority", t.Priority))
	r.printf("%s", RenderField("Point of contact", t.POC))
	r.printf("%s", RenderField("Assigned by", t.CreatedBy))
	r.printf("%s", RenderField("Completed", util.FormatLongDate(t.CompletedOn)))
	if t.Description != "" {
		r.printf("\n%s\n", t.Description)
	}

	r.printf("\n%s\n", SectionStyle.Render(fmt.Sprintf("Comments (%d)", len(d.Comments))))
	if len(d.Comments) == 0 {
		r.printf("%s\n", DimStyle.Render("No comments yet."))
		return
	}
	for _, c := range d.Comments {
		r.printf("%s %s\n", ValueStyle.Render(c.CreatedBy), DimStyle.Render(util.FormatDateTime(c.CreatedOn)))
		r.printf("  %s\n", c.Comment)
	}
}

func (r *Runtime) setTaskStatus(ctx context.Context, args Args, raw, statusArg string) error {
	const example = `onboard task status 101 "In Progress"`
	id, err := taskID(raw, example)
	if err != nil {
		return err
	}
	if strings.TrimSpace(statusArg) == "" {
		return errUsage("a status is required", example)
	}
	if err := r.signedInFor(ctx, guard.RouteTaskDetail, "taskId", strconv.Itoa(id)); err != nil {
		return err
	}

	var status string
	if strings.EqualFold(statusArg, "next") {
		d, out := r.Loader.TaskDetail(ctx, id)
		if !out.OK() {
			return outcomeError("task status", out)
		}
		status = api.NextStatus(d.Task.Status)
	} else {
		m, ok := api.MatchStatus(statusArg)
		if !ok {
			return errUsage(fmt.Sprintf("unknown status %q (expected one of: %s, or next)",
				statusArg, strings.Join(api.TaskStatuses, ", ")), example)
		}
		status = m
	}

	task, out := r.Loader.UpdateTaskStatus(ctx, id, status)
	if !out.OK() {
		return outcomeError("task status", out)
	}
	if args.JSON {
		return NewJSONResponse("task status", task).Write(r.Out)
	}
	r.success("Task #%d is now %s", id, task.Status)
	return nil
}

func (r *Runtime) commentTask(ctx context.Context, args Args, raw, text string) error {
	const example = `onboard task comment 101 "Waiting on IT"`
	id, err := taskID(raw, example)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errUsage("comment text is required", example)
	}
	if err := r.signedInFor(ctx, guard.RouteTaskDetail, "taskId", strconv.Itoa(id)); err != nil {
		return err
	}

	comments, out := r.Loader.AddComment(ctx, id, text)
	if !out.OK() {
		return outcomeError("task comment", out)
	}
	if args.JSON {
		return NewJSONResponse("task comment", comments).Write(r.Out)
	}
	r.success("Comment added to task #%d (%d total)", id, len(comments))
	return nil
}
