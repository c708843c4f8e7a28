// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role string is not one of the known roles.
var ErrUnknownRole = errors.New("unknown role")

// Role is the authorization role attached to a session.
type Role string

const (
	// RoleNone is the zero value; no session.
	RoleNone Role = ""

	// RoleEmployee sees their own dashboard and tasks.
	RoleEmployee Role = "Employee"

	// RoleManager sees team roll-ups and assigns tasks.
	RoleManager Role = "Manager"
)

// ParseRole parses the wire form of a role. Matching is exact after
// trimming surrounding space.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleEmployee, RoleManager:
		return r, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// String returns the wire form.
func (r Role) String() string { return string(r) }

// RoleSet is an allow-list of roles.
type RoleSet []Role

// Roles builds a RoleSet.
func Roles(roles ...Role) RoleSet { return RoleSet(roles) }

// Contains reports whether r is in the set.
func (s RoleSet) Contains(r Role) bool {
	for _, allowed := range s {
		if allowed == r {
			return true
		}
	}
	return false
}
