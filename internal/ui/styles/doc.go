// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the onboard TUI.

All colors are Lip Gloss AdaptiveColor values, resolved against the
background chosen by NewTheme: the [ui] theme setting, or the terminal's
own background when the setting is "auto".

# Colors (colors.go)

  - Purple - titles and selections
  - Cyan - brand, focus
  - Emerald - completed tasks
  - Amber - in-progress tasks and the inactivity countdown
  - Rose - errors and overdue tasks

Status is never shown by color alone; TaskStatusIndicator supplies an ASCII
shape for every task state.

# Theme (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	title := theme.Title.Render("My tasks")
*/
package styles
