// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/morganforge/onboard-tui/internal/config"
	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// ResolveConfigPath returns the --config path, or the default location.
func ResolveConfigPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}

// HandleConfig runs "onboard config". cfg is the effective configuration,
// including environment overrides.
func HandleConfig(w io.Writer, fs afero.Fs, cfg *config.Config, args Args) error {
	path, err := ResolveConfigPath(args)
	if err != nil {
		return err
	}
	p := args.Parser()

	switch sub := p.Subcommand(); sub {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config", cfg).Write(w)
		}
		fmt.Fprintln(w, cfg.String())
		return nil

	case "path":
		if args.JSON {
			return NewJSONResponse("config path", map[string]string{"path": path}).Write(w)
		}
		fmt.Fprintln(w, path)
		return nil

	case "keys":
		for _, k := range config.GetAllKeys() {
			fmt.Fprintln(w, k)
		}
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return errUsage("a key is required", "onboard config get api.base_url")
		}
		v, err := cfg.Get(key)
		if err != nil {
			return errUsage(err.Error(), "onboard config keys")
		}
		if args.JSON {
			return NewJSONResponse("config get", map[string]any{"key": key, "value": v}).Write(w)
		}
		fmt.Fprintln(w, v)
		return nil

	case "set":
		key, value := p.Positional(1), strings.Join(p.PositionalFrom(2), " ")
		if key == "" || p.PositionalCount() < 3 {
			return errUsage("a key and a value are required", "onboard config set ui.theme light")
		}
		return setConfigValue(w, fs, path, key, value)

	default:
		return errUsage(fmt.Sprintf("unknown config subcommand %q", sub), "onboard config show")
	}
}

// setConfigValue edits the file itself so environment overrides are not
// written back.
func setConfigValue(w io.Writer, fs afero.Fs, path, key, value string) error {
	cfg := config.Default()
	if _, err := fs.Stat(path); err == nil {
		if err := config.ReadTOML(fs, cfg, path); err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return errUsage(err.Error(), "onboard config keys")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.SaveTOML(fs, cfg, path); err != nil {
		return err
	}
	fmt.Fprintln(w, styles.RenderSuccess(key+" = "+value))
	return nil
}
