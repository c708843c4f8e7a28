// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package app is the onboard terminal UI: a Bubble Tea model that renders one
page at a time and routes every navigation through the guard.

# Pages

	/                               login form
	/employee-dashboard             the employee's task list
	/task/{taskId}                  task detail, status change, comments
	/manager-dashboard              the manager's team roll-up
	/team/{teamId}                  team members
	/employee/{employeeId}          one employee's tasks
	/employee/{employeeId}/add-task assign a task
	/profile                        the signed-in user's profile

# Session events

The session clock and the auth controller call back from timer goroutines.
A Bridge queues those callbacks as messages and forwards them with
Program.Send, so overlay and navigation changes happen on the UI goroutine:

	bridge := app.NewBridge()
	bridge.Attach(clock, ctrl)
	p := tea.NewProgram(model)
	go bridge.Run(ctx, p)

Every key and mouse event is reported to the controller as activity.
*/
package app
