// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UNICODE: Width-aware truncation keeps table columns aligned when names
// contain double-width characters.

// TruncateWidth truncates a string to a maximum display width in terminal
// columns, appending "..." when anything was cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth pads s with spaces to exactly width columns, truncating first
// if it is wider.
func PadWidth(s string, width int) string {
	s = TruncateWidth(s, width)
	return runewidth.FillRight(s, width)
}

// DisplayStatus normalizes a task status for display. The backend is not
// consistent about case ("in progress", "In Progress", "COMPLETE").
func DisplayStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return "Unknown"
	}
	// A Caser is stateful, so one per call
	return cases.Title(language.English).String(strings.ToLower(status))
}
