// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/morganforge/onboard-tui/internal/credstore"
	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login signs in and stores the session. Without --remember the session
// lasts until the OS login session ends.
func (r *Runtime) Login(ctx context.Context, args Args) error {
	p := args.Parser("remember", "r")
	user := p.Flag("user", "u")
	remember := p.BoolFlag("remember", "r") || r.Config.Session.RememberMe
	if p.HasFlag("no-remember") {
		remember = false
	}

	var err error
	if user == "" {
		if user, err = r.Prompt.Line("Username: "); err != nil {
			return err
		}
	}
	password, err := r.Prompt.Password("Password: ")
	if err != nil {
		return err
	}

	if _, out := r.Loader.Login(ctx, user, password, remember); !out.OK() {
		return outcomeError("login", out)
	}

	sess := r.Ctrl.Session()
	where := "until you log out of this computer"
	if remember {
		where = "until you run 'onboard logout'"
	}
	r.success("Signed in as %s (%s)", sess.Identity.DisplayName(), sess.Role)
	fmt.Fprintln(r.Out, styles.RenderInfo("Credentials are kept "+where+"."))
	return nil
}

// Logout ends the stored session.
func (r *Runtime) Logout(ctx context.Context, args Args) error {
	if !r.Ctrl.Restore(ctx) {
		// Clear leftovers that could not be restored.
		if err := r.Ctrl.Logout(ctx); err != nil {
			return fmt.Errorf("failed to clear credentials: %w", err)
		}
		fmt.Fprintln(r.Out, styles.RenderWarning("Not signed in."))
		return nil
	}
	name := r.Ctrl.Session().Identity.DisplayName()
	if err := r.Ctrl.Logout(ctx); err != nil {
		return fmt.Errorf("signed out, but stored credentials could not be cleared: %w", err)
	}
	r.success("Signed out %s", name)
	return nil
}

// =============================================================================
// WHOAMI
// =============================================================================

type whoamiInfo struct {
	UserName   string `json:"userName"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	EmployeeID int    `json:"employeeId"`
	Storage    string `json:"storage"`
}

// Whoami prints the stored session's identity.
func (r *Runtime) Whoami(ctx context.Context, args Args) error {
	if err := r.signedIn(ctx, ""); err != nil {
		return err
	}
	sess := r.Ctrl.Session()
	info := whoamiInfo{
		UserName:   sess.Identity.UserName,
		Name:       sess.Identity.DisplayName(),
		Role:       sess.Role.String(),
		EmployeeID: sess.Identity.EmployeeID,
		Storage:    credstore.KindSession.String(),
	}
	if sess.RememberMe {
		info.Storage = credstore.KindPersistent.String()
	}

	if args.JSON {
		return NewJSONResponse("whoami", info).Write(r.Out)
	}
	r.printf("%s\n", TitleStyle.Render(info.Name))
	r.printf("%s", RenderField("Username", info.UserName))
	r.printf("%s", RenderField("Role", info.Role))
	r.printf("%s", RenderField("Employee ID", fmt.Sprint(info.EmployeeID)))
	r.printf("%s", RenderField("Stored in", info.Storage))
	return nil
}
