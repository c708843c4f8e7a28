// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for a token. A 401 is reported as
// ErrInvalidCredentials. Empty fields fail with a ValidationError before
// any request is sent.
func (c *Client) Login(ctx context.Context, userName, password string) (LoginResponse, error) {
	if err := Required("Username", userName, "Password", password); err != nil {
		return LoginResponse{}, err
	}

	var resp LoginResponse
	err := c.Do(ctx, http.MethodPost, "/auth/login", LoginRequest{UserName: userName, Password: password}, &resp)
	if errors.Is(err, ErrUnauthorized) {
		return LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResponse{}, err
	}
	if resp.Token == "" {
		return LoginResponse{}, fmt.Errorf("login response missing token")
	}
	return resp, nil
}

// Profile fetches the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := c.Do(ctx, http.MethodGet, "/auth/profile", nil, &p)
	return p, err
}

// UpdateProfile changes the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) error {
	return c.Do(ctx, http.MethodPut, "/auth/profile", u, nil)
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee fetches one employee.
func (c *Client) Employee(ctx context.Context, id int) (Employee, error) {
	var env struct {
		Employee Employee `json:"employee"`
	}
	err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/employees/%d", id), nil, &env)
	return env.Employee, err
}

// EmployeeTasks lists an employee's tasks.
func (c *Client) EmployeeTasks(ctx context.Context, id int) ([]Task, error) {
	var env struct {
		Tasks []Task `json:"tasks"`
	}
	err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/employees/%d/tasks", id), nil, &env)
	return env.Tasks, err
}

// Task fetches one of an employee's tasks.
func (c *Client) Task(ctx context.Context, employeeID, taskID int) (Task, error) {
	var env struct {
		Task Task `json:"task"`
	}
	err := c.Do(ctx, http.MethodGet, taskPath(employeeID, taskID), nil, &env)
	return env.Task, err
}

// UpdateTaskStatus sets a task's status and returns the updated task.
func (c *Client) UpdateTaskStatus(ctx context.Context, employeeID, taskID int, status string) (Task, error) {
	if err := Required("Status", status); err != nil {
		return Task{}, err
	}
	var env struct {
		Task Task `json:"task"`
	}
	body := struct {
		Status string `json:"status"`
	}{status}
	err := c.Do(ctx, http.MethodPut, taskPath(employeeID, taskID), body, &env)
	return env.Task, err
}

// TaskComments lists the comments on a task.
func (c *Client) TaskComments(ctx context.Context, employeeID, taskID int) ([]Comment, error) {
	var env struct {
		TaskComments []Comment `json:"taskComments"`
	}
	err := c.Do(ctx, http.MethodGet, taskPath(employeeID, taskID)+"/comments", nil, &env)
	return env.TaskComments, err
}

// AddComment posts a comment on a task.
func (c *Client) AddComment(ctx context.Context, employeeID, taskID int, text string) error {
	if err := Required("Comment", text); err != nil {
		return err
	}
	body := struct {
		Comment string `json:"comment"`
	}{text}
	return c.Do(ctx, http.MethodPost, taskPath(employeeID, taskID)+"/comments", body, nil)
}

func taskPath(employeeID, taskID int) string {
	return fmt.Sprintf("/employees/%d/tasks/%d", employeeID, taskID)
}

// =============================================================================
// MANAGER
// =============================================================================

// TeamSummaries fetches the manager's team roll-up.
func (c *Client) TeamSummaries(ctx context.Context) ([]TeamSummary, error) {
	var teams []TeamSummary
	err := c.Do(ctx, http.MethodGet, "/manager/id", nil, &teams)
	return teams, err
}

// TeamMembers fetches per-member task counts for a team.
func (c *Client) TeamMembers(ctx context.Context, teamID int) ([]MemberSummary, error) {
	var members []MemberSummary
	err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/manager/team/%d", teamID), nil, &members)
	return members, err
}

// AddTask assigns a catalogue task to an employee.
func (c *Client) AddTask(ctx context.Context, t NewTask) error {
	if t.TaskID == 0 {
		return &ValidationError{Field: "Task"}
	}
	if err := Required("Due date", t.DueDate, "Status", t.Status); err != nil {
		return err
	}
	return c.Do(ctx, http.MethodPost, "/manager/addTask", t, nil)
}

// TaskCatalog lists the tasks a manager can assign. The backend answers
// either with a bare array or with {"tasks": [...]}.
func (c *Client) TaskCatalog(ctx context.Context) ([]TaskOption, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/tasks", nil, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var opts []TaskOption
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, fmt.Errorf("failed to decode task catalogue: %w", err)
		}
		return opts, nil
	}
	var env struct {
		Tasks []TaskOption `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode task catalogue: %w", err)
	}
	return env.Tasks, nil
}
