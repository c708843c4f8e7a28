// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for onboard.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend base URL, timeout and retry policy
//   - SessionConfig: Inactivity warning and logout timings
//   - StorageConfig: Credential store locations
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ONBOARD_*)
//   - $ONBOARD_CONFIG or ~/.onboard/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	clock := sessionclock.New(sessionclock.RealClock(), cfg.Session.ClockConfig(), log)
//
// Watch reloads the file while the terminal UI runs; a reloaded session
// policy takes effect on the next arm of the session clock.
package config
