// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

// Identity names the signed-in user.
type Identity struct {
	UserName   string
	EmployeeID int

	// EmployeeName is nil when the backend did not send one.
	EmployeeName *string
}

// DisplayName returns the employee name, falling back to the user name.
func (i Identity) DisplayName() string {
	if i.EmployeeName != nil && *i.EmployeeName != "" {
		return *i.EmployeeName
	}
	return i.UserName
}

// Session is the in-memory credential set. The zero value is "logged out".
type Session struct {
	Token      string
	Role       Role
	Identity   Identity
	RememberMe bool
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool { return s.Token != "" }

// clone returns a copy that shares no pointers with s.
func (s Session) clone() Session {
	if s.Identity.EmployeeName != nil {
		name := *s.Identity.EmployeeName
		s.Identity.EmployeeName = &name
	}
	return s
}

// Reason says why a session ended.
type Reason int

const (
	// ReasonExplicit is a user-requested logout.
	ReasonExplicit Reason = iota
	// ReasonIdle is an inactivity expiry.
	ReasonIdle
	// ReasonUnauthorized is a 401 from the backend.
	ReasonUnauthorized
)

// String returns a string representation of the Reason.
func (r Reason) String() string {
	switch r {
	case ReasonExplicit:
		return "explicit"
	case ReasonIdle:
		return "idle"
	case ReasonUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}
