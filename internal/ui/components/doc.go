// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the onboard TUI.

  - Header (header.go) - brand, page title and the signed-in user
  - StatusBar (statusbar.go) - notices, errors and key help
  - TimeoutOverlay (timeout_overlay.go) - inactivity warning countdown
  - ProgressBar (progress.go) - share of tasks completed

All components accept a *styles.Theme:

	theme := styles.NewTheme(styles.ModeAuto)
	header := components.NewHeader(theme)
	header.SetUser("Asha Rao", "Employee")
	view := header.View()
*/
package components
