// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package guard decides whether a navigation is admitted and where a
// refused one is sent.
package guard

import (
	"github.com/morganforge/onboard-tui/internal/auth"
)

// Entry and home paths.
const (
	PathLogin             = "/"
	PathProfile           = "/profile"
	PathEmployeeDashboard = "/employee-dashboard"
	PathManagerDashboard  = "/manager-dashboard"
)

// Decision is the outcome of a guard check. Redirect is empty when the
// navigation is admitted.
type Decision struct {
	Redirect string
}

// Admitted reports whether the navigation may proceed.
func (d Decision) Admitted() bool { return d.Redirect == "" }

// Admit is the admitting decision.
var Admit = Decision{}

// RedirectTo returns a decision sending the user to path.
func RedirectTo(path string) Decision { return Decision{Redirect: path} }

// Home returns the landing path for role. Unknown roles land on the entry
// view.
func Home(role auth.Role) string {
	switch role {
	case auth.RoleEmployee:
		return PathEmployeeDashboard
	case auth.RoleManager:
		return PathManagerDashboard
	default:
		return PathLogin
	}
}

// Decide checks a navigation. It has no side effects.
//
//   - not authenticated: redirect to the entry view, whatever allowed says
//   - role not in allowed: redirect to that role's home
//   - otherwise admit
func Decide(authenticated bool, role auth.Role, allowed auth.RoleSet) Decision {
	if !authenticated {
		return RedirectTo(PathLogin)
	}
	if !allowed.Contains(role) {
		return RedirectTo(Home(role))
	}
	return Admit
}
