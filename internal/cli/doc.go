// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the one-shot commands of
// onboard.
//
// With no command onboard starts the terminal UI. The other commands reuse
// the stored session, so a login from the UI or from "onboard login" is
// picked up by "onboard tasks" in the same OS login session (or across
// sessions when remember-me was chosen).
//
// # Key Types
//
//   - Command: enumeration of the commands
//   - Args: parsed global flags plus the command's own arguments
//   - ArgParser: flag and positional parsing for a command's arguments
//   - Runtime: the controller, API client and loader a command runs against
//
// # Usage
//
//	cmd, args := cli.Parse()
//	rt, err := cli.NewRuntime(cfg)
//	...
//	err = rt.Tasks(ctx, args)
//	os.Exit(cli.GetExitCode(err))
//
// Commands that read data accept --json and print a JSONResponse.
package cli
