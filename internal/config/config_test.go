// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/onboard-tui/internal/logging"
	"github.com/morganforge/onboard-tui/internal/sessionclock"
)

// isolate points the config path at an empty temp dir so tests never read
// the developer's real config.
func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(ConfigPathEnv, path)
	for _, k := range []string{
		"ONBOARD_API_BASE_URL", "ONBOARD_API_TIMEOUT", "ONBOARD_SESSION_TIMEOUT",
		"ONBOARD_LOG_LEVEL", "ONBOARD_LOG_FILE", "ONBOARD_THEME",
	} {
		t.Setenv(k, "")
	}
	return path
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, 540, cfg.Session.WarnAfterSecs)
	assert.Equal(t, 600, cfg.Session.LogoutAfterSecs)
	assert.Equal(t, 60, cfg.Session.CountdownSecs)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().API, cfg.API)
}

func TestLoadFile_MissingUsesDefaultsWithEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ONBOARD_THEME", "light")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
}

func TestReadTOML_Afero(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.toml", []byte("[ui]\ntheme = \"dark\"\n"), 0600))

	cfg := Default()
	require.NoError(t, ReadTOML(fs, cfg, "/c.toml"))
	assert.Equal(t, "dark", cfg.UI.Theme)

	require.NoError(t, afero.WriteFile(fs, "/bad.toml", []byte("[ui]\ncolour = 1\n"), 0600))
	assert.ErrorContains(t, ReadTOML(fs, Default(), "/bad.toml"), "unknown config keys")
}

func TestLoadFromPath_ReadsFile(t *testing.T) {
	path := isolate(t)
	writeFile(t, path, `
[api]
base_url = "https://onboard.example.com/"
max_retries = 0

[session]
warn_after_secs = 100
logout_after_secs = 160
countdown_secs = 30

[ui]
theme = "light"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://onboard.example.com", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 0, cfg.API.MaxRetries)
	assert.Equal(t, 30, cfg.API.TimeoutSecs, "unset keys keep defaults")
	assert.Equal(t, 100, cfg.Session.WarnAfterSecs)
	assert.Equal(t, "light", cfg.UI.Theme)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	path := isolate(t)
	writeFile(t, path, "[api]\nbase_uri = \"http://x\"\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_uri")
}

func TestLoadFromPath_RejectsInvalid(t *testing.T) {
	path := isolate(t)
	writeFile(t, path, "[api]\nbase_url = \"ftp://example.com\"\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "api.base_url", verrs[0].Field)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ONBOARD_API_BASE_URL", "http://10.0.0.5:8080")
	t.Setenv("ONBOARD_API_TIMEOUT", "5")
	t.Setenv("ONBOARD_SESSION_TIMEOUT", "120")
	t.Setenv("ONBOARD_LOG_LEVEL", "debug")
	t.Setenv("ONBOARD_THEME", "dark")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8080", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.TimeoutSecs)
	assert.Equal(t, 120, cfg.Session.LogoutAfterSecs)
	assert.Equal(t, 60, cfg.Session.WarnAfterSecs, "warning pulled inside the shorter timeout")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestApplyEnvOverrides_IgnoresGarbage(t *testing.T) {
	isolate(t)
	t.Setenv("ONBOARD_API_TIMEOUT", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, Default().API.TimeoutSecs, cfg.API.TimeoutSecs)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad scheme", func(c *Config) { c.API.BaseURL = "localhost:3000" }, "api.base_url"},
		{"timeout too long", func(c *Config) { c.API.TimeoutSecs = 301 }, "api.timeout_secs"},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }, "api.max_retries"},
		{"logout too short", func(c *Config) { c.Session.LogoutAfterSecs = 10 }, "session.logout_after_secs"},
		{"warn after logout", func(c *Config) { c.Session.WarnAfterSecs = 600 }, "session.warn_after_secs"},
		{"countdown too long", func(c *Config) { c.Session.CountdownSecs = 90 }, "session.countdown_secs"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			fields := make([]string, len(verrs))
			for i, v := range verrs {
				fields[i] = v.Field
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateErrors_Error(t *testing.T) {
	errs := ValidateErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}
	assert.Equal(t, "a: bad; b: worse", errs.Error())
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())
}

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, Default().Session.LogoutAfterSecs, cfg.Session.LogoutAfterSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func TestSessionConfig_ClockConfig(t *testing.T) {
	got := Default().Session.ClockConfig()
	assert.Equal(t, sessionclock.DefaultConfig(), got)
}

func TestAPIConfig_ClientConfig(t *testing.T) {
	got := Default().API.ClientConfig()
	assert.Equal(t, 30*time.Second, got.Timeout)
	assert.Equal(t, 300*time.Millisecond, got.RetryDelay)
	assert.Equal(t, 2, got.MaxRetries)
}

func TestLogConfig_Options(t *testing.T) {
	explicit := LogConfig{Level: "warn", Format: "json", File: "/tmp/onboard.log", MaxSizeMB: 5}
	assert.Equal(t, logging.Options{Level: "warn", Format: "json", File: "/tmp/onboard.log", MaxSizeMB: 5}, explicit.Options())

	opts := LogConfig{Level: "info"}.Options()
	assert.Equal(t, "onboard.log", filepath.Base(opts.File))
	assert.Equal(t, "logs", filepath.Base(filepath.Dir(opts.File)))
}

// =============================================================================
// GET / SET
// =============================================================================

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("api.base_url")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", v)

	require.NoError(t, cfg.Set("session.logout_after_secs", "900"))
	assert.Equal(t, 900, cfg.Session.LogoutAfterSecs)

	require.NoError(t, cfg.Set("ui.mouse", "false"))
	assert.False(t, cfg.UI.Mouse)

	require.NoError(t, cfg.Set("UI.Alt-Screen", false))
	assert.False(t, cfg.UI.AltScreen)

	_, err = cfg.Get("api")
	assert.Error(t, err, "sections are not values")
	_, err = cfg.Get("api.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("session.countdown_secs", "many"))
}

func TestGetAllKeys(t *testing.T) {
	keys := GetAllKeys()
	assert.Contains(t, keys, "api.base_url")
	assert.Contains(t, keys, "session.remember_me")
	assert.Contains(t, keys, "ui.theme")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	path := isolate(t)
	cfg := Default()
	cfg.UI.Theme = "dark"
	cfg.Session.RememberMe = true

	require.NoError(t, SaveTOML(afero.NewOsFs(), cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := isolate(t)
	writeFile(t, path, "[ui]\ntheme = \"dark\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, path, 20*time.Millisecond, nil, func(c *Config) { changes <- c })
	}()

	// Invalid content is skipped; the valid rewrite that follows is delivered.
	require.Eventually(t, func() bool {
		writeFile(t, path, "[ui]\ntheme = \"neon\"\n")
		time.Sleep(40 * time.Millisecond)
		writeFile(t, path, "[ui]\ntheme = \"light\"\n")
		select {
		case c := <-changes:
			return c.UI.Theme == "light"
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "config.toml"), nil, func(*Config) {})
	assert.Error(t, err)
}
