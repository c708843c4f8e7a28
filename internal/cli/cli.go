// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command parsing, usage and version output for onboard.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdTasks
	CmdTask
	CmdTeams
	CmdTeam
	CmdAssign
	CmdProfile
	CmdMockServer
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdTUI:        "tui",
	CmdLogin:      "login",
	CmdLogout:     "logout",
	CmdWhoami:     "whoami",
	CmdTasks:      "tasks",
	CmdTask:       "task",
	CmdTeams:      "teams",
	CmdTeam:       "team",
	CmdAssign:     "assign",
	CmdProfile:    "profile",
	CmdMockServer: "mock-server",
	CmdConfig:     "config",
	CmdVersion:    "version",
	CmdHelp:       "help",
}

// String returns the command name as typed on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool
	Verbose    bool
	ConfigPath string

	// Name is the command word as typed, kept for error messages.
	Name string

	// Raw are the arguments after the command word.
	Raw []string
}

// Parser returns an ArgParser over the command's arguments.
func (a Args) Parser(boolNames ...string) *ArgParser {
	return NewArgParser(a.Raw, append(boolNames, "json", "verbose", "v")...)
}

const usageText = `onboard - employee onboarding in the terminal

Usage:
  onboard                        Start the terminal UI (default)
  onboard tui [--start PATH]     Start the terminal UI at a page
  onboard login [--user U] [--remember]
                                 Sign in; the password is prompted for
  onboard logout                 Sign out and forget stored credentials
  onboard whoami [--json]        Show the signed-in user

Employee commands:
  onboard tasks [--json]                 List your tasks
  onboard task show <id> [--json]        Show a task with its comments
  onboard task status <id> <status>      Set a task's status
  onboard task comment <id> <text...>    Comment on a task

Manager commands:
  onboard teams [--json]                 List your teams
  onboard team <id> [--json]             List a team's members
  onboard team <id> <employeeId>         Show one member and their tasks
  onboard assign <employeeId> --task N --due YYYY-MM-DD
                 [--status S] [--priority P] [--poc NAME] [--description TEXT]
                                         Assign a catalogue task

Profile:
  onboard profile [--json]               Show your profile
  onboard profile set [--email E] [--phone P] [--skill S]

Other:
  onboard mock-server [--addr :3000]     Run the bundled mock backend
  onboard config [show|path]             Show the configuration or its path
  onboard config get <key>               Print one setting
  onboard config set <key> <value>       Change one setting
  onboard version [--json]               Show version information
  onboard help                           Show this help

Global flags:
  --config PATH    Use a different config file (also ONBOARD_CONFIG)
  --json           Machine-readable output
  -v, --verbose    Log debug output

Statuses: New, "In Progress", "Sent for Review", Complete
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "onboard %s\n", Version)
	fmt.Fprintf(w, "  Commit:  %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// HandleVersion prints version information, as JSON when asked.
func HandleVersion(w io.Writer, args Args) error {
	if !args.JSON {
		PrintVersion(w)
		return nil
	}
	return NewJSONResponse("version", map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"platform":   runtime.GOOS + "/" + runtime.GOARCH,
	}).Write(w)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv without the program name. Global flags may appear
// anywhere; everything else after the command word is left in Args.Raw.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	args.Name = remaining[0]
	args.Raw = remaining[1:]

	switch strings.ToLower(remaining[0]) {
	case "tui", "ui":
		return CmdTUI, args
	case "login", "signin":
		return CmdLogin, args
	case "logout", "signout":
		return CmdLogout, args
	case "whoami", "me":
		return CmdWhoami, args
	case "tasks":
		return CmdTasks, args
	case "task":
		return CmdTask, args
	case "teams":
		return CmdTeams, args
	case "team":
		return CmdTeam, args
	case "assign":
		return CmdAssign, args
	case "profile":
		return CmdProfile, args
	case "mock-server", "mockserver", "serve":
		return CmdMockServer, args
	case "config":
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--json":
			args.JSON = true
		case arg == "--verbose" || arg == "-v":
			args.Verbose = true
		case arg == "--config" && i+1 < len(argv):
			args.ConfigPath = argv[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}
