// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// FRAME
	// ==========================================================================

	App          lipgloss.Style
	Header       lipgloss.Style
	HeaderBrand  lipgloss.Style
	HeaderUser   lipgloss.Style
	HeaderRole   lipgloss.Style
	StatusBar    lipgloss.Style
	StatusError  lipgloss.Style
	StatusNotice lipgloss.Style

	// ==========================================================================
	// CONTENT
	// ==========================================================================

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Box      lipgloss.Style
	Comment  lipgloss.Style

	// ==========================================================================
	// FORMS
	// ==========================================================================

	FormBox       lipgloss.Style
	Focused       lipgloss.Style
	Blurred       lipgloss.Style
	Button        lipgloss.Style
	ButtonActive  lipgloss.Style
	FormError     lipgloss.Style
	CheckboxOn    lipgloss.Style
	CheckboxOff   lipgloss.Style
	OptionCurrent lipgloss.Style
}

// NewTheme creates a theme. mode is "auto", "dark" or "light"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.HeaderUser = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.HeaderRole = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.StatusNotice = lipgloss.NewStyle().
		Foreground(Emerald)

	// Content
	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)
	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)
	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(16)
	t.Value = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Box = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.Comment = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Cyan).
		PaddingLeft(1)

	// Forms
	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)
	t.Focused = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.Blurred = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay)
	t.ButtonActive = t.Button.Copy().
		Foreground(TextInverse).
		Background(Cyan).
		BorderForeground(Cyan).
		Bold(true)
	t.FormError = lipgloss.NewStyle().
		Foreground(Rose)
	t.CheckboxOn = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)
	t.CheckboxOff = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.OptionCurrent = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// TableStyles returns bubbles/table styles matching the theme.
func (t *Theme) TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		BorderBottom(true).
		Foreground(TextSecondary).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)
	return s
}

// StatusStyle colors a task status cell.
func (t *Theme) StatusStyle(status string, overdue bool) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TaskStatusColor(status, overdue))
}

// MarkdownStyle is the glamour standard style matching the background.
func (t *Theme) MarkdownStyle() string {
	if t.IsDark {
		return ModeDark
	}
	return ModeLight
}
