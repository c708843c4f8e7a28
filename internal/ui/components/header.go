// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand and page on the left, the signed-in user
// and role on the right.
type Header struct {
	Title string
	Page  string
	User  string
	Role  string
	Width int
	theme *styles.Theme
}

// NewHeader creates a Header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "onboard",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetUser sets the signed-in user. Empty values render a signed-out header.
func (h *Header) SetUser(name, role string) {
	h.User = name
	h.Role = role
}

// SetPage sets the page title.
func (h *Header) SetPage(page string) {
	h.Page = page
}

// View renders the header on one line.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	left := h.theme.HeaderBrand.Render(h.Title)
	if h.Page != "" {
		left += h.theme.Muted.Render(" / ") + h.theme.HeaderUser.Render(h.Page)
	}

	var right string
	if h.User != "" {
		right = h.theme.HeaderUser.Render(h.User)
		if h.Role != "" {
			right += " " + h.theme.HeaderRole.Render(h.Role)
		}
	}

	inner := width - h.theme.Header.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return h.theme.Header.Width(width).Render(line)
}
