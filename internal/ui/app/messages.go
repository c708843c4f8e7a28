// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/onboard-tui/internal/auth"
	"github.com/morganforge/onboard-tui/internal/loader"
)

// =============================================================================
// SESSION MESSAGES (delivered by the Bridge)
// =============================================================================

// WarningMsg signals the inactivity warning with seconds left.
type WarningMsg struct {
	Seconds int
}

// CountdownMsg is one tick of the warning countdown.
type CountdownMsg struct {
	Seconds int
}

// WarningClearedMsg signals the warning was dismissed by activity or logout.
type WarningClearedMsg struct{}

// LoggedOutMsg signals that the session ended.
type LoggedOutMsg struct {
	Reason auth.Reason
}

// ConfigReloadedMsg signals that the configuration file changed.
type ConfigReloadedMsg struct{}

// =============================================================================
// APP MESSAGES
// =============================================================================

// NavigateMsg asks the app to show the page at Path.
type NavigateMsg struct {
	Path string
}

// noticeMsg puts a message on the status bar.
type noticeMsg struct {
	text  string
	isErr bool
}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

func notify(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: text, isErr: isErr} }
}

// outcomeCmd surfaces a failed loader outcome: its message on the status
// bar and its redirect, if any.
func outcomeCmd(o loader.Outcome) tea.Cmd {
	var cmds []tea.Cmd
	if o.Message != "" {
		cmds = append(cmds, notify(o.Message, true))
	}
	if o.Redirect != "" {
		cmds = append(cmds, navigate(o.Redirect))
	}
	return tea.Batch(cmds...)
}
