// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/ui/styles"
	"github.com/morganforge/onboard-tui/internal/util"
)

// =============================================================================
// INPUTS
// =============================================================================

// newInput returns a text field with a steady cursor.
func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = ""
	in.Width = 40
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

// field renders a labelled form row.
func field(t *styles.Theme, label string, focused bool, body string) string {
	style := t.Blurred
	marker := "  "
	if focused {
		style = t.Focused
		marker = "> "
	}
	return style.Render(marker+util.PadWidth(label, 14)) + body
}

// choice renders a left/right option selector.
func choice(t *styles.Theme, options []string, idx int, focused bool) string {
	if len(options) == 0 {
		return t.Muted.Render("(none)")
	}
	current := options[idx]
	if !focused {
		return t.Value.Render(current)
	}
	return t.Muted.Render("< ") + t.OptionCurrent.Render(current) + t.Muted.Render(" >")
}

// cycle moves idx by delta within n options, wrapping.
func cycle(idx, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((idx+delta)%n + n) % n
}

// =============================================================================
// DETAIL ROWS
// =============================================================================

// detail renders label/value rows, skipping empty values.
func detail(t *styles.Theme, rows ...[2]string) string {
	var lines []string
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		lines = append(lines, t.Label.Render(r[0])+t.Value.Render(r[1]))
	}
	return strings.Join(lines, "\n")
}

// statusCell is a task status with its shape indicator, plain text so the
// table can measure it.
func statusCell(status string, overdue bool) string {
	return styles.TaskStatusIndicator(status, overdue) + " " + util.DisplayStatus(status)
}

// =============================================================================
// TABLES
// =============================================================================

// newTable returns a focused table styled by the theme.
func newTable(t *styles.Theme, cols []table.Column, height int) table.Model {
	tbl := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	tbl.SetStyles(t.TableStyles())
	return tbl
}

// taskColumns and taskRows lay out a task list.
func taskColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 5},
		{Title: "Task", Width: 30},
		{Title: "Status", Width: 20},
		{Title: "Due", Width: 12},
		{Title: "Priority", Width: 9},
	}
}

func taskRows(tasks []loader.TaskRow) []table.Row {
	rows := make([]table.Row, len(tasks))
	for i, t := range tasks {
		rows[i] = table.Row{
			strconv.Itoa(t.ID),
			t.Name,
			statusCell(t.Status, t.Overdue),
			util.FormatDate(t.DueDate),
			t.Priority,
		}
	}
	return rows
}

// tableHeight fits a table of n rows into the page, leaving room for the
// lines above it.
func tableHeight(e *env, n, reserved int) int {
	h := e.height - reserved
	if n+1 < h {
		h = n + 1
	}
	if h < 3 {
		h = 3
	}
	return h
}

// =============================================================================
// MARKDOWN
// =============================================================================

// markdown renders task descriptions. Falls back to the raw text when
// glamour cannot render.
func markdown(t *styles.Theme, text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return t.Muted.Render("No description.")
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.MarkdownStyle()),
		glamour.WithColorProfile(t.ColorProfile),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// loading renders the placeholder shown before data arrives.
func loading(t *styles.Theme, what string) string {
	return t.Muted.Render("Loading " + what + "...")
}

func title(t *styles.Theme, text string, subtitle string) string {
	if subtitle == "" {
		return t.Title.Render(text)
	}
	return lipgloss.JoinVertical(lipgloss.Left, t.Title.Copy().MarginBottom(0).Render(text), t.Subtitle.Render(subtitle), "")
}
