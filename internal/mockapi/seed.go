// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockapi

import (
	"time"

	"github.com/morganforge/onboard-tui/internal/api"
)

// Seeded accounts.
const (
	EmployeeUser = "asha"
	ManagerUser  = "ravi"

	EmployeeID = 5
	ManagerID  = 2
)

const dateLayout = "2006-01-02"

func (s *Server) seed() {
	now := s.now()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(dateLayout) }
	stamp := func(offset int) string { return now.AddDate(0, 0, offset).Format(time.RFC3339) }

	s.users = map[string]*user{
		"asha": {userName: "asha", password: DefaultPassword, role: "Employee", employeeID: EmployeeID},
		"lena": {userName: "lena", password: DefaultPassword, role: "Employee", employeeID: 7},
		"omar": {userName: "omar", password: DefaultPassword, role: "Employee", employeeID: 8},
		"ravi": {userName: "ravi", password: DefaultPassword, role: "Manager", employeeID: ManagerID},
	}

	s.teams = map[int]string{1: "Platform", 2: "Payments"}
	s.managers = map[int][]int{ManagerID: {1, 2}}

	s.employees = map[int]*api.Employee{
		EmployeeID: {ID: EmployeeID, TeamID: 1, Name: "Asha Rao", Email: "asha.rao@example.com",
			Phone: "555-0105", JoiningDate: day(-14), PrimarySkill: "Go"},
		7: {ID: 7, TeamID: 1, Name: "Lena Fischer", Email: "lena.fischer@example.com",
			Phone: "555-0107", JoiningDate: day(-30), PrimarySkill: "React"},
		8: {ID: 8, TeamID: 2, Name: "Omar Haddad", Email: "omar.haddad@example.com",
			Phone: "555-0108", JoiningDate: day(-3), PrimarySkill: "SQL"},
		ManagerID: {ID: ManagerID, Name: "Ravi Kumar", Email: "ravi.kumar@example.com",
			Phone: "555-0102", JoiningDate: day(-400), PrimarySkill: "Leadership"},
	}

	s.catalog = []api.TaskOption{
		{ID: 1, Name: "Set up laptop"},
		{ID: 2, Name: "Complete security training"},
		{ID: 3, Name: "Read onboarding handbook"},
		{ID: 4, Name: "Meet your buddy"},
		{ID: 5, Name: "Ship a first change"},
	}

	s.tasks = map[int][]*api.Task{
		EmployeeID: {
			{ID: 101, Name: "Set up laptop", Description: "Install the **standard toolchain** and request repository access.",
				Status: api.StatusInProgress, DueDate: day(3), CreatedOn: stamp(-10), CreatedBy: "Ravi Kumar", POC: "IT Desk", Priority: "High"},
			{ID: 102, Name: "Complete security training", Description: "Finish the security awareness course.",
				Status: api.StatusNew, DueDate: day(-2), CreatedOn: stamp(-10), CreatedBy: "Ravi Kumar", POC: "Security Team", Priority: "High"},
			{ID: 103, Name: "Read onboarding handbook", Description: "Read the handbook and note open questions.",
				Status: api.StatusComplete, DueDate: day(-5), CreatedOn: stamp(-12), CompletedOn: stamp(-6), CreatedBy: "Ravi Kumar", POC: "HR", Priority: "Medium"},
		},
		7: {
			{ID: 104, Name: "Meet your buddy", Description: "Schedule an intro with your onboarding buddy.",
				Status: api.StatusSentForReview, DueDate: day(1), CreatedOn: stamp(-20), CreatedBy: "Ravi Kumar", POC: "Asha Rao", Priority: "Low"},
			{ID: 105, Name: "Ship a first change", Description: "Pick a starter issue and ship it.",
				Status: api.StatusCompleted, DueDate: day(-1), CreatedOn: stamp(-20), CompletedOn: stamp(-2), CreatedBy: "Ravi Kumar", POC: "Ravi Kumar", Priority: "Medium"},
		},
		8: {
			{ID: 106, Name: "Set up laptop", Description: "Install the standard toolchain.",
				Status: api.StatusNew, DueDate: day(-1), CreatedOn: stamp(-3), CreatedBy: "Ravi Kumar", POC: "IT Desk", Priority: "High"},
		},
	}
	s.nextTask = 107

	s.comments = map[int][]api.Comment{
		101: {
			{ID: 1, Comment: "Laptop arrived, imaging in progress.", CreatedBy: "Asha Rao", CreatedOn: stamp(-2)},
			{ID: 2, Comment: "Ping IT if VPN access is still missing.", CreatedBy: "Ravi Kumar", CreatedOn: stamp(-1)},
		},
	}
	s.nextNote = 3
}
