// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"time"
)

// NotAvailable is shown in place of a missing or unparsable date.
const NotAvailable = "N/A"

// dateLayouts are the formats the backend has been seen to emit.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a backend date string. The second return is false for
// empty, "null" or unparsable input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate formats a backend date as MM/DD/YYYY.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return NotAvailable
	}
	return t.Format("01/02/2006")
}

// FormatLongDate formats a backend date as "January 2, 2006".
func FormatLongDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return NotAvailable
	}
	return t.Format("January 2, 2006")
}

// FormatDateTime formats a backend timestamp in local time.
func FormatDateTime(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return NotAvailable
	}
	return t.Local().Format("01/02/2006 3:04 PM")
}

// IsOverdue reports whether a task with the given due date and status is
// past due at now. Completed tasks are never overdue.
func IsOverdue(due, status string, now time.Time) bool {
	if IsCompleted(status) {
		return false
	}
	t, ok := ParseDate(due)
	if !ok {
		return false
	}
	return t.Before(now)
}

// IsCompleted reports whether status means the task is done. Both
// "Complete" and "Completed" are in use.
func IsCompleted(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "complete", "completed":
		return true
	}
	return false
}
