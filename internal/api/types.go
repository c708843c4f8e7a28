// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "strings"

// Task statuses as the backend spells them. "Completed" is accepted as an
// alias of StatusComplete.
const (
	StatusNew           = "New"
	StatusInProgress    = "In Progress"
	StatusSentForReview = "Sent for Review"
	StatusComplete      = "Complete"
	StatusCompleted     = "Completed"
)

// TaskStatuses lists the statuses an employee can choose.
var TaskStatuses = []string{StatusNew, StatusInProgress, StatusSentForReview, StatusComplete}

// Task priorities used when a manager assigns a task.
var TaskPriorities = []string{"Low", "Medium", "High"}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	if s == StatusCompleted {
		return true
	}
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// MatchStatus finds the status spelled like s, ignoring case.
func MatchStatus(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, StatusCompleted) {
		return StatusComplete, true
	}
	for _, v := range TaskStatuses {
		if strings.EqualFold(v, s) {
			return v, true
		}
	}
	return "", false
}

// NextStatus returns the status after current in the employee's cycle.
// Unknown statuses restart the cycle.
func NextStatus(current string) string {
	if m, ok := MatchStatus(current); ok {
		for i, v := range TaskStatuses {
			if v == m {
				return TaskStatuses[(i+1)%len(TaskStatuses)]
			}
		}
	}
	return TaskStatuses[0]
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// LoginResponse is the result of a successful login.
type LoginResponse struct {
	Token        string  `json:"token"`
	Role         string  `json:"role"`
	UserName     string  `json:"userName"`
	EmployeeID   int     `json:"employeeId"`
	EmployeeName *string `json:"employeeName,omitempty"`
}

// Employee is an employee record.
type Employee struct {
	ID           int    `json:"id"`
	TeamID       int    `json:"teamId,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	JoiningDate  string `json:"joiningDate"`
	PrimarySkill string `json:"primarySkill"`
}

// Task is an assigned onboarding task.
type Task struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	DueDate     string    `json:"dueDate"`
	CreatedOn   string    `json:"createdOn,omitempty"`
	CompletedOn string    `json:"completedOn,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	POC         string    `json:"poc,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Comments    []Comment `json:"comments,omitempty"`
}

// Comment is a note on a task.
type Comment struct {
	ID        int    `json:"id"`
	Comment   string `json:"comment"`
	CreatedBy string `json:"createdBy"`
	CreatedOn string `json:"createdOn"`
}

// TeamSummary is one team in the manager roll-up.
type TeamSummary struct {
	TeamID    int    `json:"teamId"`
	TeamName  string `json:"teamName"`
	Members   int    `json:"members"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
	Overdue   int    `json:"Overdue"`
}

// MemberSummary is one team member's task counts.
type MemberSummary struct {
	EmployeeID    int    `json:"employeeId"`
	EmployeeName  string `json:"employeeName"`
	TotalTasks    int    `json:"totalTasks"`
	CompletedTask int    `json:"completedTask"`
	PendingTask   int    `json:"pendingTask"`
	OverDueTask   int    `json:"overDueTask"`
}

// Profile is the signed-in user's profile.
type Profile struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	UserName     string `json:"username"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PrimarySkill string `json:"primarySkill"`
	Role         string `json:"role"`
	TeamName     string `json:"teamName,omitempty"`
	JoiningDate  string `json:"joiningDate,omitempty"`
	LastUpdated  string `json:"lastUpdated,omitempty"`
}

// ProfileUpdate is the body of PUT /auth/profile. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	PrimarySkill *string `json:"primarySkill,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Email == nil && u.Phone == nil && u.PrimarySkill == nil
}

// TaskOption is an entry of the task catalogue.
type TaskOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NewTask is the body of POST /manager/addTask.
type NewTask struct {
	TaskID      int    `json:"taskId"`
	EmployeeID  int    `json:"employeeId"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	Description string `json:"description"`
	POC         string `json:"poc"`
	Priority    string `json:"priority"`
	CreatedBy   string `json:"createdBy"`
	UpdatedBy   string `json:"updatedBy"`
}
