// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/auth"
	"github.com/morganforge/onboard-tui/internal/config"
	"github.com/morganforge/onboard-tui/internal/credstore"
	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/logging"
	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// Tier names as they appear in logs.
const (
	persistentTierName = "persistent"
	sessionTierName    = "session"
)

// Runtime holds what a command runs against.
type Runtime struct {
	Config *config.Config
	Log    *logrus.Logger
	Ctrl   *auth.Controller
	Client *api.Client
	Loader *loader.Loader
	Nav    *guard.Navigator

	Out    io.Writer
	Prompt *Prompter

	closers []io.Closer
}

type runtimeOptions struct {
	persistent credstore.Tier
	session    credstore.Tier
	fs         afero.Fs
	out        io.Writer
	in         io.Reader
	terminal   func() bool
	log        *logrus.Logger
	clock      auth.IdleClock
}

// RuntimeOption configures NewRuntime.
type RuntimeOption func(*runtimeOptions)

// WithTiers replaces the credential tiers.
func WithTiers(persistent, session credstore.Tier) RuntimeOption {
	return func(o *runtimeOptions) {
		o.persistent = persistent
		o.session = session
	}
}

// WithFs sets the filesystem of the session tier.
func WithFs(fs afero.Fs) RuntimeOption {
	return func(o *runtimeOptions) { o.fs = fs }
}

// WithIO sets where output goes and where answers come from. terminal
// reports whether in is interactive; nil means it is not.
func WithIO(out io.Writer, in io.Reader, terminal func() bool) RuntimeOption {
	return func(o *runtimeOptions) {
		o.out = out
		o.in = in
		o.terminal = terminal
		if terminal == nil {
			o.terminal = func() bool { return false }
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) RuntimeOption {
	return func(o *runtimeOptions) { o.log = l }
}

// WithIdleClock gives the controller an inactivity clock. One-shot
// commands run without one.
func WithIdleClock(c auth.IdleClock) RuntimeOption {
	return func(o *runtimeOptions) { o.clock = c }
}

// NewRuntime opens the credential store and builds the controller, API
// client and loader from cfg.
func NewRuntime(cfg *config.Config, opts ...RuntimeOption) (*Runtime, error) {
	o := runtimeOptions{out: os.Stdout, in: os.Stdin}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log = logging.L()
	}

	rt := &Runtime{
		Config: cfg,
		Log:    log,
		Out:    o.out,
		Prompt: &Prompter{In: o.in, Out: o.out, Terminal: o.terminal},
	}

	if o.persistent == nil {
		tier, err := openPersistentTier(cfg.Storage.PersistentPath)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, tier)
		o.persistent = tier
	}
	if o.session == nil {
		fs := o.fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		path := cfg.Storage.SessionPath
		if path == "" {
			path = credstore.DefaultSessionPath()
		}
		o.session = credstore.NewFileTier(sessionTierName, fs, path)
	}
	store := credstore.New(o.persistent, o.session)

	rt.Ctrl = auth.NewController(store, o.clock, log)

	client, err := api.NewClient(cfg.API.ClientConfig(), rt.Ctrl, log)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("invalid API settings: %w", err)
	}
	rt.Client = client
	rt.Loader = loader.New(rt.Ctrl, client, log)
	rt.Nav = guard.NewNavigator(nil, rt.Ctrl)
	return rt, nil
}

func openPersistentTier(path string) (*credstore.SQLiteTier, error) {
	if path == "" {
		p, err := credstore.DefaultPersistentPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	tier, err := credstore.OpenSQLiteTier(persistentTierName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return tier, nil
}

// Close releases the credential store.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// signedIn restores the stored session and checks that its role may use
// the page at path. An empty path admits any role.
func (r *Runtime) signedIn(ctx context.Context, path string) error {
	if !r.Ctrl.IsAuthenticated() && !r.Ctrl.Restore(ctx) {
		return ErrNotSignedIn
	}
	if path == "" {
		return nil
	}
	d, err := r.Nav.Check(path)
	if err != nil {
		return err
	}
	if !d.Admitted() {
		return &CommandError{
			Command: path,
			Message: fmt.Sprintf("This command is not available to %s accounts.", r.Ctrl.Role()),
		}
	}
	return nil
}

// signedInFor is signedIn for a named route with its variables.
func (r *Runtime) signedInFor(ctx context.Context, route string, pairs ...string) error {
	path, err := r.Nav.Table().URL(route, pairs...)
	if err != nil {
		return err
	}
	return r.signedIn(ctx, path)
}

// printf writes to the runtime's output.
func (r *Runtime) printf(format string, a ...any) {
	fmt.Fprintf(r.Out, format, a...)
}

// success writes a line marked as a success.
func (r *Runtime) success(format string, a ...any) {
	fmt.Fprintln(r.Out, styles.RenderSuccess(fmt.Sprintf(format, a...)))
}
