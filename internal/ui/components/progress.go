// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// =============================================================================
// PROGRESS BAR COMPONENT
// =============================================================================

const (
	barFilled = "█"
	barEmpty  = "░"
)

// ProgressBar shows how many of a set of tasks are done.
type ProgressBar struct {
	Done  int
	Total int

	// Width is the bar width in cells, not counting the percentage.
	Width int
}

// NewProgressBar creates a ProgressBar ten cells wide.
func NewProgressBar(done, total int) ProgressBar {
	return ProgressBar{Done: done, Total: total, Width: 10}
}

// Percent returns the completed share, 0 to 100. An empty set is 0.
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	done := min(max(p.Done, 0), p.Total)
	return float64(done) * 100 / float64(p.Total)
}

// Plain renders the bar without color, for use inside table cells.
func (p ProgressBar) Plain() string {
	width := max(p.Width, 1)
	filled := int(p.Percent() * float64(width) / 100)
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled) +
		fmt.Sprintf(" %3.0f%%", p.Percent())
}

// Render renders the bar colored by how far along it is.
func (p ProgressBar) Render() string {
	color := styles.Amber
	switch pct := p.Percent(); {
	case pct >= 100:
		color = styles.Emerald
	case pct == 0:
		color = styles.TextMuted
	}
	return lipgloss.NewStyle().Foreground(color).Render(p.Plain())
}
