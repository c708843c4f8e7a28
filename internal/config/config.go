// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/logging"
	"github.com/morganforge/onboard-tui/internal/sessionclock"
	"github.com/morganforge/onboard-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete onboard configuration.
type Config struct {
	// Backend connection
	API APIConfig `toml:"api" json:"api"`

	// Inactivity timeout
	Session SessionConfig `toml:"session" json:"session"`

	// Credential storage locations
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Log output
	Log LogConfig `toml:"log" json:"log"`

	// Terminal UI
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:3000".
	BaseURL string `toml:"base_url" json:"base_url"`

	// TimeoutSecs bounds one request attempt.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// MaxRetries is the number of extra attempts for failed GETs.
	MaxRetries int `toml:"max_retries" json:"max_retries"`

	// RetryDelayMS is the first backoff delay.
	RetryDelayMS int `toml:"retry_delay_ms" json:"retry_delay_ms"`
}

// SessionConfig holds the inactivity timings.
type SessionConfig struct {
	// WarnAfterSecs is the idle time before the warning appears.
	WarnAfterSecs int `toml:"warn_after_secs" json:"warn_after_secs"`

	// LogoutAfterSecs is the idle time before the session ends.
	LogoutAfterSecs int `toml:"logout_after_secs" json:"logout_after_secs"`

	// CountdownSecs is the starting value of the warning countdown.
	CountdownSecs int `toml:"countdown_secs" json:"countdown_secs"`

	// CoalesceMS collapses bursts of activity into one reset.
	CoalesceMS int `toml:"coalesce_ms" json:"coalesce_ms"`

	// RememberMe is the default of the login form's remember-me toggle.
	RememberMe bool `toml:"remember_me" json:"remember_me"`
}

// StorageConfig holds credential store locations. Empty values use the
// platform defaults.
type StorageConfig struct {
	// PersistentPath is the SQLite database for remembered logins.
	PersistentPath string `toml:"persistent_path" json:"persistent_path"`

	// SessionPath is the JSON file for logins that end with the OS session.
	SessionPath string `toml:"session_path" json:"session_path"`
}

// LogConfig holds log settings.
type LogConfig struct {
	Level      string `toml:"level" json:"level"`
	Format     string `toml:"format" json:"format"`
	File       string `toml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`

	// AltScreen runs the UI in the terminal's alternate screen.
	AltScreen bool `toml:"alt_screen" json:"alt_screen"`

	// Mouse enables mouse events, which also count as activity.
	Mouse bool `toml:"mouse" json:"mouse"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      api.DefaultBaseURL,
			TimeoutSecs:  int(api.DefaultTimeout / time.Second),
			MaxRetries:   api.DefaultMaxRetries,
			RetryDelayMS: int(api.DefaultRetryDelay / time.Millisecond),
		},
		Session: SessionConfig{
			WarnAfterSecs:   int(sessionclock.DefaultWarnAfter / time.Second),
			LogoutAfterSecs: int(sessionclock.DefaultLogoutAfter / time.Second),
			CountdownSecs:   sessionclock.DefaultCountdown,
			CoalesceMS:      int(sessionclock.DefaultCoalesce / time.Millisecond),
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		UI: UIConfig{
			Theme:     "auto",
			AltScreen: true,
			Mouse:     true,
		},
	}
}

// ClockConfig converts the session timings for the session clock.
func (s SessionConfig) ClockConfig() sessionclock.Config {
	return sessionclock.Config{
		WarnAfter:   time.Duration(s.WarnAfterSecs) * time.Second,
		LogoutAfter: time.Duration(s.LogoutAfterSecs) * time.Second,
		Countdown:   s.CountdownSecs,
		Coalesce:    time.Duration(s.CoalesceMS) * time.Millisecond,
	}
}

// ClientConfig converts the API settings for the gateway.
func (a APIConfig) ClientConfig() api.Config {
	return api.Config{
		BaseURL:    a.BaseURL,
		Timeout:    time.Duration(a.TimeoutSecs) * time.Second,
		MaxRetries: a.MaxRetries,
		RetryDelay: time.Duration(a.RetryDelayMS) * time.Millisecond,
	}
}

// Options converts the log settings for the logging package. An empty
// File resolves to ~/.onboard/logs/onboard.log.
func (l LogConfig) Options() logging.Options {
	file := l.File
	if file == "" {
		if dir, err := ConfigDir(); err == nil {
			file = filepath.Join(dir, "logs", "onboard.log")
		}
	}
	return logging.Options{
		Level:      l.Level,
		Format:     l.Format,
		File:       file,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigPathEnv overrides the config file location.
const ConfigPathEnv = "ONBOARD_CONFIG"

// ConfigDir returns the onboard configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".onboard"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when it does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is LoadFromPath, except that a missing file yields the
// defaults with environment overrides applied.
func LoadFile(path string) (*Config, error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Unknown keys are rejected.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	return ReadTOML(afero.NewOsFs(), cfg, path)
}

// ReadTOML decodes the TOML file at path on fs over cfg. Unknown keys are
// rejected.
func ReadTOML(fs afero.Fs, cfg *Config, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to path atomically with 0600
// permissions.
func SaveTOML(fs afero.Fs, cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# onboard configuration file\n")
	buf.WriteString("# Generated by onboard - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(fs, path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors listing
// every problem, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// API
	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("api.base_url", "invalid URL '%s', must be an http or https URL", c.API.BaseURL)
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		add("api.timeout_secs", "must be between 1 and 300, got %d", c.API.TimeoutSecs)
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		add("api.max_retries", "must be between 0 and 10, got %d", c.API.MaxRetries)
	}
	if c.API.RetryDelayMS < 0 {
		add("api.retry_delay_ms", "must not be negative, got %d", c.API.RetryDelayMS)
	}

	// Session
	minLogout := int(sessionclock.MinLogoutAfter / time.Second)
	if c.Session.LogoutAfterSecs < minLogout {
		add("session.logout_after_secs", "must be at least %d, got %d", minLogout, c.Session.LogoutAfterSecs)
	}
	if c.Session.WarnAfterSecs < 1 || c.Session.WarnAfterSecs >= c.Session.LogoutAfterSecs {
		add("session.warn_after_secs", "must be positive and less than logout_after_secs (%d), got %d",
			c.Session.LogoutAfterSecs, c.Session.WarnAfterSecs)
	}
	if gap := c.Session.LogoutAfterSecs - c.Session.WarnAfterSecs; c.Session.CountdownSecs < 1 || (gap > 0 && c.Session.CountdownSecs > gap) {
		add("session.countdown_secs", "must be between 1 and the warning window (%d), got %d", gap, c.Session.CountdownSecs)
	}
	if c.Session.CoalesceMS < 0 {
		add("session.coalesce_ms", "must not be negative, got %d", c.Session.CoalesceMS)
	}

	// Log
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "invalid level '%s'", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		add("log.format", "invalid format '%s', must be one of: text, json", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		add("log", "rotation limits must not be negative")
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.RetryDelayMS == 0 {
		c.API.RetryDelayMS = d.API.RetryDelayMS
	}

	if c.Session.LogoutAfterSecs == 0 {
		c.Session.LogoutAfterSecs = d.Session.LogoutAfterSecs
	}
	if c.Session.WarnAfterSecs == 0 {
		c.Session.WarnAfterSecs = d.Session.WarnAfterSecs
	}
	if c.Session.CountdownSecs == 0 {
		c.Session.CountdownSecs = d.Session.CountdownSecs
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// ApplyEnvOverrides applies environment variable overrides:
//   - ONBOARD_API_BASE_URL: overrides api.base_url
//   - ONBOARD_API_TIMEOUT: overrides api.timeout_secs
//   - ONBOARD_SESSION_TIMEOUT: overrides session.logout_after_secs
//   - ONBOARD_LOG_LEVEL: overrides log.level
//   - ONBOARD_LOG_FILE: overrides log.file
//   - ONBOARD_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ONBOARD_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ONBOARD_API_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("ONBOARD_SESSION_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.LogoutAfterSecs = n
			if c.Session.WarnAfterSecs >= n {
				c.Session.WarnAfterSecs = n - c.Session.CountdownSecs
			}
		}
	}
	if v := os.Getenv("ONBOARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ONBOARD_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("ONBOARD_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct by TOML tag.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i], "."))
		}
		field, ok := fieldByTag(v, strings.ReplaceAll(strings.ToLower(part), "-", "_"))
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	if v.Kind() == reflect.Struct {
		return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
	}
	return v, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := section.Tag.Get("toml")
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
