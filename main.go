// onboard - employee onboarding in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/morganforge/onboard-tui/internal/cli"
	"github.com/morganforge/onboard-tui/internal/config"
	"github.com/morganforge/onboard-tui/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

// runtimeCommands run against the stored session.
var runtimeCommands = map[cli.Command]func(*cli.Runtime, context.Context, cli.Args) error{
	cli.CmdLogin:   (*cli.Runtime).Login,
	cli.CmdLogout:  (*cli.Runtime).Logout,
	cli.CmdWhoami:  (*cli.Runtime).Whoami,
	cli.CmdTasks:   (*cli.Runtime).Tasks,
	cli.CmdTask:    (*cli.Runtime).Task,
	cli.CmdTeams:   (*cli.Runtime).Teams,
	cli.CmdTeam:    (*cli.Runtime).Team,
	cli.CmdAssign:  (*cli.Runtime).Assign,
	cli.CmdProfile: (*cli.Runtime).Profile,
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()

	var errOut io.Writer = os.Stderr
	if args.JSON {
		errOut = os.Stdout
	}
	fail := func(err error) int {
		cli.DisplayError(errOut, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		if err := cli.HandleVersion(os.Stdout, args); err != nil {
			return fail(err)
		}
		return cli.ExitSuccess
	case cli.CmdUnknown:
		return fail(&cli.UsageError{Reason: fmt.Sprintf("unknown command %q", args.Name), Example: "onboard help"})
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return fail(err)
	}

	log, err := initLogging(cfg, cmd, args)
	if err != nil {
		return fail(fmt.Errorf("failed to open log file: %w", err))
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case cli.CmdTUI:
		path, _ := cli.ResolveConfigPath(args)
		err = cli.RunTUI(ctx, cfg, path, args, cli.WithLogger(log))
	case cli.CmdMockServer:
		err = cli.HandleMockServer(ctx, os.Stdout, log, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(os.Stdout, afero.NewOsFs(), cfg, args)
	default:
		err = runCommand(ctx, cfg, log, cmd, args)
	}
	if err != nil {
		return fail(err)
	}
	return cli.ExitSuccess
}

func runCommand(ctx context.Context, cfg *config.Config, log *logrus.Logger, cmd cli.Command, args cli.Args) error {
	handler, ok := runtimeCommands[cmd]
	if !ok {
		return &cli.UsageError{Reason: fmt.Sprintf("unknown command %q", args.Name), Example: "onboard help"}
	}
	rt, err := cli.NewRuntime(cfg, cli.WithLogger(log))
	if err != nil {
		return err
	}
	defer rt.Close()
	return handler(rt, ctx, args)
}

// loadConfig reads --config when given, otherwise the default location.
func loadConfig(args cli.Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFile(args.ConfigPath)
	}
	return config.Load()
}

// initLogging sends logs to the rotated file, except for the mock backend
// which logs to stderr.
func initLogging(cfg *config.Config, cmd cli.Command, args cli.Args) (*logrus.Logger, error) {
	opts := cfg.Log.Options()
	if cmd == cli.CmdMockServer {
		opts.File = ""
		opts.Output = os.Stderr
	}
	if args.Verbose {
		opts.Level = logrus.DebugLevel.String()
	}
	return logging.Init(opts)
}
