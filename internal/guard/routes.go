// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/morganforge/onboard-tui/internal/auth"
)

// ErrNoRoute is returned when a path matches no route.
var ErrNoRoute = errors.New("no such page")

// Route names.
const (
	RouteLogin             = "login"
	RouteProfile           = "profile"
	RouteEmployeeDashboard = "employee-dashboard"
	RouteTaskDetail        = "task-detail"
	RouteManagerDashboard  = "manager-dashboard"
	RouteTeamDashboard     = "team-dashboard"
	RouteEmployeeDetail    = "employee-detail"
	RouteAddTask           = "add-task"
)

// Route is one page of the application.
type Route struct {
	Name     string
	Template string

	// Allowed is nil for public routes.
	Allowed auth.RoleSet
}

// Public reports whether the route needs no session.
func (r Route) Public() bool { return r.Allowed == nil }

// DefaultRoutes returns the application's page table.
func DefaultRoutes() []Route {
	everyone := auth.Roles(auth.RoleEmployee, auth.RoleManager)
	employee := auth.Roles(auth.RoleEmployee)
	manager := auth.Roles(auth.RoleManager)

	return []Route{
		{Name: RouteLogin, Template: PathLogin},
		{Name: RouteProfile, Template: PathProfile, Allowed: everyone},
		{Name: RouteEmployeeDashboard, Template: PathEmployeeDashboard, Allowed: employee},
		{Name: RouteTaskDetail, Template: "/task/{taskId:[0-9]+}", Allowed: employee},
		{Name: RouteManagerDashboard, Template: PathManagerDashboard, Allowed: manager},
		{Name: RouteTeamDashboard, Template: "/team/{teamId:[0-9]+}", Allowed: manager},
		{Name: RouteEmployeeDetail, Template: "/employee/{employeeId:[0-9]+}", Allowed: manager},
		{Name: RouteAddTask, Template: "/employee/{employeeId:[0-9]+}/add-task", Allowed: manager},
	}
}

// Table matches paths against routes.
type Table struct {
	router *mux.Router
	routes map[string]Route
}

// NewTable builds a Table from routes.
func NewTable(routes []Route) *Table {
	t := &Table{
		router: mux.NewRouter(),
		routes: make(map[string]Route, len(routes)),
	}
	for _, r := range routes {
		t.router.NewRoute().Path(r.Template).Name(r.Name)
		t.routes[r.Name] = r
	}
	return t
}

// Match is a resolved path.
type Match struct {
	Route Route
	Path  string
	Vars  map[string]string
}

// Var returns a path variable, or "".
func (m Match) Var(name string) string { return m.Vars[name] }

// Match finds the route for path.
func (t *Table) Match(path string) (Match, error) {
	if path == "" {
		path = PathLogin
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}}
	var rm mux.RouteMatch
	if !t.router.Match(req, &rm) || rm.Route == nil {
		return Match{}, fmt.Errorf("%w: %s", ErrNoRoute, path)
	}
	route, ok := t.routes[rm.Route.GetName()]
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", ErrNoRoute, path)
	}
	vars := rm.Vars
	if vars == nil {
		vars = map[string]string{}
	}
	return Match{Route: route, Path: path, Vars: vars}, nil
}

// URL builds the path for a named route.
func (t *Table) URL(name string, pairs ...string) (string, error) {
	r := t.router.Get(name)
	if r == nil {
		return "", fmt.Errorf("%w: %s", ErrNoRoute, name)
	}
	u, err := r.URLPath(pairs...)
	if err != nil {
		return "", fmt.Errorf("failed to build %s path: %w", name, err)
	}
	return u.Path, nil
}
