// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/morganforge/onboard-tui/internal/config"
	"github.com/morganforge/onboard-tui/internal/logging"
	"github.com/morganforge/onboard-tui/internal/sessionclock"
	"github.com/morganforge/onboard-tui/internal/ui/app"
	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// RunTUI starts the terminal UI and blocks until it exits. cfgPath is
// watched for changes; an empty path disables reloading.
func RunTUI(ctx context.Context, cfg *config.Config, cfgPath string, args Args, opts ...RuntimeOption) error {
	if !IsTTY() || !IsStdoutTTY() {
		return &TTYRequiredError{Operation: "run the terminal UI"}
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := logrusOf(opts)
	if log == nil {
		log = logging.L()
	}
	clock := sessionclock.New(sessionclock.RealClock(), cfg.Session.ClockConfig(), log)
	rt, err := NewRuntime(cfg, append(opts, WithLogger(log), WithIdleClock(clock))...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.Ctrl.Restore(ctx) {
		rt.Log.WithField("user", rt.Ctrl.Session().Identity.UserName).Debug("resuming stored session")
	}

	bridge := app.NewBridge()
	bridge.Attach(clock, rt.Ctrl)

	model := app.New(app.Deps{
		Ctx:        ctx,
		Controller: rt.Ctrl,
		Clock:      clock,
		Loader:     rt.Loader,
		Navigator:  rt.Nav,
		Theme:      styles.NewTheme(cfg.UI.Theme),
		Log:        rt.Log,
		RememberMe: cfg.Session.RememberMe,
		StartPath:  args.Parser().Flag("start"),
	})

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.UI.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if cfg.UI.Mouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, progOpts...)

	go bridge.Run(ctx, p)

	if cfgPath != "" {
		go func() {
			err := config.Watch(ctx, cfgPath, rt.Log, func(next *config.Config) {
				clock.SetConfig(next.Session.ClockConfig())
				bridge.Post(app.ConfigReloadedMsg{})
			})
			if err != nil {
				rt.Log.WithError(err).Warn("config watch stopped")
			}
		}()
	}

	_, err = p.Run()
	clock.Disarm()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// logrusOf returns the logger set by opts, if any.
func logrusOf(opts []RuntimeOption) *logrus.Logger {
	var o runtimeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.log
}
