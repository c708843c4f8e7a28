// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"github.com/morganforge/onboard-tui/internal/auth"
)

// SessionSource is the view of the auth controller the navigator needs.
type SessionSource interface {
	IsAuthenticated() bool
	Role() auth.Role
}

// Navigator resolves navigation requests against the page table and the
// current session.
type Navigator struct {
	table   *Table
	session SessionSource
}

// NewNavigator creates a Navigator. A nil table uses DefaultRoutes.
func NewNavigator(table *Table, session SessionSource) *Navigator {
	if table == nil {
		table = NewTable(DefaultRoutes())
	}
	return &Navigator{table: table, session: session}
}

// Table returns the page table.
func (n *Navigator) Table() *Table { return n.table }

// Resolve returns the page that should be shown for path. Refused
// navigations are followed to their redirect target, so the returned match
// is always admitted. An unknown path is an error.
func (n *Navigator) Resolve(path string) (Match, error) {
	m, err := n.table.Match(path)
	if err != nil {
		return Match{}, err
	}

	authed := n.session.IsAuthenticated()
	role := n.session.Role()

	if m.Route.Public() {
		if authed && m.Route.Name == RouteLogin {
			return n.table.Match(Home(role))
		}
		return m, nil
	}

	d := Decide(authed, role, m.Route.Allowed)
	if d.Admitted() {
		return m, nil
	}
	return n.table.Match(d.Redirect)
}

// Check runs Decide for path without following redirects.
func (n *Navigator) Check(path string) (Decision, error) {
	m, err := n.table.Match(path)
	if err != nil {
		return Decision{}, err
	}
	if m.Route.Public() {
		return Admit, nil
	}
	return Decide(n.session.IsAuthenticated(), n.session.Role(), m.Route.Allowed), nil
}
