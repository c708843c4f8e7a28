// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom line: the latest notice or error, then key help.
type StatusBar struct {
	message string
	isError bool
	help    string
	width   int
	theme   *styles.Theme
}

// NewStatusBar creates an empty StatusBar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme, width: 80}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) { s.width = width }

// SetHelp sets the rendered key help.
func (s *StatusBar) SetHelp(help string) { s.help = help }

// SetNotice shows an informational message.
func (s *StatusBar) SetNotice(msg string) {
	s.message = msg
	s.isError = false
}

// SetError shows an error message.
func (s *StatusBar) SetError(msg string) {
	s.message = msg
	s.isError = msg != ""
}

// Clear removes the message.
func (s *StatusBar) Clear() {
	s.message = ""
	s.isError = false
}

// Message returns the current message and whether it is an error.
func (s *StatusBar) Message() (string, bool) {
	return s.message, s.isError
}

// View renders the bar. The message line is omitted when empty.
func (s *StatusBar) View() string {
	width := s.width
	if width < 20 {
		width = 20
	}

	var lines []string
	switch {
	case s.message == "":
	case s.isError:
		lines = append(lines, s.theme.StatusError.Render(styles.StatusIndicators.Error+" "+s.message))
	default:
		lines = append(lines, s.theme.StatusNotice.Render(styles.StatusIndicators.Info+" "+s.message))
	}
	if s.help != "" {
		lines = append(lines, s.help)
	}
	return s.theme.StatusBar.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
