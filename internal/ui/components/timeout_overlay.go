// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// =============================================================================
// INACTIVITY WARNING OVERLAY
// =============================================================================

// TimeoutOverlay displays the inactivity countdown. It only renders; the
// session clock owns the timing and the app model owns the key handling.
type TimeoutOverlay struct {
	visible bool
	seconds int

	width  int
	height int
}

// NewTimeoutOverlay creates a hidden overlay.
func NewTimeoutOverlay() TimeoutOverlay {
	return TimeoutOverlay{}
}

// SetSize sets the overlay dimensions.
func (o *TimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Show displays the overlay with seconds left on the countdown.
func (o *TimeoutOverlay) Show(seconds int) {
	o.visible = true
	o.SetSeconds(seconds)
}

// SetSeconds updates the countdown. Negative values display as zero.
func (o *TimeoutOverlay) SetSeconds(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	o.seconds = seconds
}

// Hide hides the overlay.
func (o *TimeoutOverlay) Hide() {
	o.visible = false
	o.seconds = 0
}

// IsVisible returns whether the overlay is currently visible.
func (o *TimeoutOverlay) IsVisible() bool {
	return o.visible
}

// Seconds returns the countdown value on display.
func (o *TimeoutOverlay) Seconds() int {
	return o.seconds
}

// View renders the overlay centered in its area, or "" when hidden.
func (o TimeoutOverlay) View() string {
	if !o.visible {
		return ""
	}

	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}
	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	var parts []string

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)
	parts = append(parts, titleStyle.Render(styles.StatusIndicators.Warning+" Are you still there?"))
	parts = append(parts, "")

	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8).
		Align(lipgloss.Center)
	parts = append(parts, msgStyle.Render(
		"You will be signed out for inactivity in "+titleStyle.Render(FormatCountdown(o.seconds))))
	parts = append(parts, "")

	keyStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top,
		keyStyle.Render("any key"), hintStyle.Render(" stay logged in    "),
		keyStyle.Render("L"), hintStyle.Render(" logout now"),
	))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Amber).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

// FormatCountdown formats seconds as M:SS.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
