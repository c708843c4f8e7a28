// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/guard"
	"github.com/morganforge/onboard-tui/internal/util"
)

// Profile shows or edits the signed-in user's profile.
func (r *Runtime) Profile(ctx context.Context, args Args) error {
	p := args.Parser()
	switch sub := p.Subcommand(); sub {
	case "", "show":
	case "set", "edit":
		return r.updateProfile(ctx, args)
	default:
		return errUsage(fmt.Sprintf("unknown profile subcommand %q", sub), "onboard profile set --phone 555-0100")
	}

	if err := r.signedIn(ctx, guard.PathProfile); err != nil {
		return err
	}
	prof, out := r.Loader.Profile(ctx)
	if !out.OK() {
		return outcomeError("profile", out)
	}
	if args.JSON {
		return NewJSONResponse("profile", prof).Write(r.Out)
	}
	r.printProfile(prof)
	return nil
}

func (r *Runtime) printProfile(p api.Profile) {
	r.printf("%s\n", TitleStyle.Render(p.Name))
	r.printf("%s", RenderField("Username", p.UserName))
	r.printf("%s", RenderField("Role", p.Role))
	r.printf("%s", RenderField("Team", p.TeamName))
	r.printf("%s", RenderField("Email", p.Email))
	r.printf("%s", RenderField("Phone", p.Phone))
	r.printf("%s", RenderField("Primary skill", p.PrimarySkill))
	r.printf("%s", RenderField("Joined", util.FormatLongDate(p.JoiningDate)))
	r.printf("%s", RenderField("Last updated", util.FormatDateTime(p.LastUpdated)))
}

func (r *Runtime) updateProfile(ctx context.Context, args Args) error {
	p := args.Parser()
	var u api.ProfileUpdate
	if p.HasFlag("email") {
		v := p.Flag("email")
		u.Email = &v
	}
	if p.HasFlag("phone") {
		v := p.Flag("phone")
		u.Phone = &v
	}
	if p.HasFlag("skill") {
		v := p.Flag("skill")
		u.PrimarySkill = &v
	}
	if u.Empty() {
		return errUsage("nothing to change", "onboard profile set --email asha@example.com")
	}

	if err := r.signedIn(ctx, guard.PathProfile); err != nil {
		return err
	}
	prof, out := r.Loader.UpdateProfile(ctx, u)
	if !out.OK() {
		return outcomeError("profile set", out)
	}
	if args.JSON {
		return NewJSONResponse("profile set", prof).Write(r.Out)
	}
	r.success("Profile updated")
	r.printf("\n")
	r.printProfile(prof)
	return nil
}
