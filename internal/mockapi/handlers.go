// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/morganforge/onboard-tui/internal/api"
)

type ctxKey struct{}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.injectFailure)

	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/auth/profile", s.handleProfile).Methods(http.MethodGet)
	authed.HandleFunc("/auth/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/employees/{id:[0-9]+}", s.handleEmployee).Methods(http.MethodGet)
	authed.HandleFunc("/employees/{id:[0-9]+}/tasks", s.handleTasks).Methods(http.MethodGet)
	authed.HandleFunc("/employees/{id:[0-9]+}/tasks/{taskId:[0-9]+}", s.handleTask).Methods(http.MethodGet)
	authed.HandleFunc("/employees/{id:[0-9]+}/tasks/{taskId:[0-9]+}", s.handleUpdateTask).Methods(http.MethodPut)
	authed.HandleFunc("/employees/{id:[0-9]+}/tasks/{taskId:[0-9]+}/comments", s.handleComments).Methods(http.MethodGet)
	authed.HandleFunc("/employees/{id:[0-9]+}/tasks/{taskId:[0-9]+}/comments", s.handleAddComment).Methods(http.MethodPost)
	authed.HandleFunc("/tasks", s.handleCatalog).Methods(http.MethodGet)

	manager := r.PathPrefix("/manager").Subrouter()
	manager.Use(s.requireAuth, requireManager)
	manager.HandleFunc("/id", s.handleTeamSummaries).Methods(http.MethodGet)
	manager.HandleFunc("/team/{teamId:[0-9]+}", s.handleTeamMembers).Methods(http.MethodGet)
	manager.HandleFunc("/addTask", s.handleAddTask).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func requireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r).role != "Manager" {
			writeError(w, http.StatusForbidden, "Managers only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(ctxKey{}).(*user)
	return u
}

// canSee reports whether u may read or change employee id's data.
func (s *Server) canSee(u *user, id int) bool {
	if u.employeeID == id {
		return true
	}
	if u.role != "Manager" {
		return false
	}
	emp, ok := s.employees[id]
	if !ok {
		return false
	}
	for _, team := range s.managers[u.employeeID] {
		if emp.TeamID == team {
			return true
		}
	}
	return false
}

// =============================================================================
// AUTH
// =============================================================================

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(req.UserName))]
	if !ok || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	token, err := s.issueLocked(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	resp := api.LoginResponse{
		Token:      token,
		Role:       u.role,
		UserName:   u.userName,
		EmployeeID: u.employeeID,
	}
	if emp, ok := s.employees[u.employeeID]; ok {
		name := emp.Name
		resp.EmployeeName = &name
	}
	s.log.WithField("user", u.userName).Info("mock login")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.profileLocked(u))
}

func (s *Server) profileLocked(u *user) api.Profile {
	p := api.Profile{ID: u.employeeID, UserName: u.userName, Role: u.role}
	if emp, ok := s.employees[u.employeeID]; ok {
		p.Name = emp.Name
		p.Email = emp.Email
		p.Phone = emp.Phone
		p.PrimarySkill = emp.PrimarySkill
		p.JoiningDate = emp.JoiningDate
		p.TeamName = s.teams[emp.TeamID]
	}
	return p
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req api.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, ok := s.employees[u.employeeID]
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}
	if req.Phone != nil {
		emp.Phone = *req.Phone
	}
	if req.PrimarySkill != nil {
		emp.PrimarySkill = *req.PrimarySkill
	}
	p := s.profileLocked(u)
	p.LastUpdated = s.now().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, p)
}

// =============================================================================
// EMPLOYEE
// =============================================================================

func (s *Server) handleEmployee(w http.ResponseWriter, r *http.Request) {
	id := intVar(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canSee(currentUser(r), id) {
		writeError(w, http.StatusForbidden, "Not allowed")
		return
	}
	emp, ok := s.employees[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee": emp})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	id := intVar(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canSee(currentUser(r), id) {
		writeError(w, http.StatusForbidden, "Not allowed")
		return
	}
	tasks := make([]api.Task, 0, len(s.tasks[id]))
	for _, t := range s.tasks[id] {
		tasks = append(tasks, *t)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) findTaskLocked(w http.ResponseWriter, r *http.Request) *api.Task {
	id, taskID := intVar(r, "id"), intVar(r, "taskId")
	if !s.canSee(currentUser(r), id) {
		writeError(w, http.StatusForbidden, "Not allowed")
		return nil
	}
	for _, t := range s.tasks[id] {
		if t.ID == taskID {
			return t
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
	return nil
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTaskLocked(w, r)
	if t == nil {
		return
	}
	out := *t
	out.Comments = append([]api.Comment(nil), s.comments[t.ID]...)
	writeJSON(w, http.StatusOK, map[string]any{"task": out})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !api.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTaskLocked(w, r)
	if t == nil {
		return
	}
	t.Status = req.Status
	t.CompletedOn = ""
	if req.Status == api.StatusComplete || req.Status == api.StatusCompleted {
		t.CompletedOn = s.now().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": *t})
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTaskLocked(w, r)
	if t == nil {
		return
	}
	comments := append([]api.Comment{}, s.comments[t.ID]...)
	writeJSON(w, http.StatusOK, map[string]any{"taskComments": comments})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Comment) == "" {
		writeError(w, http.StatusBadRequest, "Comment is required")
		return
	}

	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTaskLocked(w, r)
	if t == nil {
		return
	}
	author := u.userName
	if emp, ok := s.employees[u.employeeID]; ok {
		author = emp.Name
	}
	c := api.Comment{
		ID:        s.nextNote,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedBy: author,
		CreatedOn: s.now().Format(time.RFC3339),
	}
	s.nextNote++
	s.comments[t.ID] = append(s.comments[t.ID], c)
	writeJSON(w, http.StatusCreated, map[string]any{"comment": c})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]api.TaskOption{}, s.catalog...))
}

// =============================================================================
// MANAGER
// =============================================================================

func (s *Server) handleTeamSummaries(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	summaries := []api.TeamSummary{}
	for _, teamID := range s.managers[u.employeeID] {
		sum := api.TeamSummary{TeamID: teamID, TeamName: s.teams[teamID]}
		for _, emp := range s.employees {
			if emp.TeamID != teamID {
				continue
			}
			sum.Members++
			for _, t := range s.tasks[emp.ID] {
				switch {
				case isDone(t.Status):
					sum.Completed++
				case isOverdue(t, now):
					sum.Overdue++
				default:
					sum.Pending++
				}
			}
		}
		summaries = append(summaries, sum)
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleTeamMembers(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	teamID := intVar(r, "teamId")
	s.mu.Lock()
	defer s.mu.Unlock()

	owns := false
	for _, id := range s.managers[u.employeeID] {
		owns = owns || id == teamID
	}
	if !owns {
		writeError(w, http.StatusNotFound, "Team not found")
		return
	}

	now := s.now()
	members := []api.MemberSummary{}
	for _, emp := range s.employees {
		if emp.TeamID != teamID {
			continue
		}
		m := api.MemberSummary{EmployeeID: emp.ID, EmployeeName: emp.Name}
		for _, t := range s.tasks[emp.ID] {
			m.TotalTasks++
			switch {
			case isDone(t.Status):
				m.CompletedTask++
			case isOverdue(t, now):
				m.OverDueTask++
			default:
				m.PendingTask++
			}
		}
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].EmployeeID < members[j].EmployeeID })
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req api.NewTask
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canSee(u, req.EmployeeID) {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}
	name := ""
	for _, opt := range s.catalog {
		if opt.ID == req.TaskID {
			name = opt.Name
		}
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "Unknown task")
		return
	}
	if req.Status == "" {
		req.Status = api.StatusNew
	}
	if !api.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if _, err := time.Parse(dateLayout, req.DueDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due date")
		return
	}

	t := &api.Task{
		ID:          s.nextTask,
		Name:        name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		CreatedOn:   s.now().Format(time.RFC3339),
		CreatedBy:   req.CreatedBy,
		POC:         req.POC,
		Priority:    req.Priority,
	}
	s.nextTask++
	s.tasks[req.EmployeeID] = append(s.tasks[req.EmployeeID], t)
	writeJSON(w, http.StatusCreated, map[string]any{"task": t})
}

// =============================================================================
// HELPERS
// =============================================================================

func isDone(status string) bool {
	return status == api.StatusComplete || status == api.StatusCompleted
}

func isOverdue(t *api.Task, now time.Time) bool {
	due, err := time.Parse(dateLayout, t.DueDate)
	if err != nil {
		return false
	}
	return due.Before(now.Truncate(24 * time.Hour))
}

func intVar(r *http.Request, name string) int {
	n, _ := strconv.Atoi(mux.Vars(r)[name])
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
