// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/morganforge/onboard-tui/internal/ui/styles"
	"github.com/morganforge/onboard-tui/internal/util"
)

// init sets the color profile from the terminal, NO_COLOR and FORCE_COLOR.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for command titles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	// SectionStyle is used for section headers within a command's output
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cyan).
			MarginTop(1)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(18)

	// ValueStyle is used for regular values
	ValueStyle = lipgloss.NewStyle()

	// ErrorStyle is used for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// DimStyle is used for hints and secondary text
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// =============================================================================
// RENDER HELPERS
// =============================================================================

// RenderLabel renders a label with consistent width.
func RenderLabel(label string) string {
	return LabelStyle.Render(label)
}

// RenderField renders a label/value line, or "" when value is empty.
func RenderField(label, value string) string {
	if strings.TrimSpace(value) == "" || value == util.NotAvailable {
		return ""
	}
	return RenderLabel(label) + ValueStyle.Render(value) + "\n"
}

// RenderTaskStatus renders a task status with its indicator and color.
func RenderTaskStatus(status string, overdue bool) string {
	text := styles.TaskStatusIndicator(status, overdue) + " " + util.DisplayStatus(status)
	if overdue {
		text += " (overdue)"
	}
	return lipgloss.NewStyle().Foreground(styles.TaskStatusColor(status, overdue)).Render(text)
}

// RenderTable renders rows under headers with a rounded border.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(DimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}
