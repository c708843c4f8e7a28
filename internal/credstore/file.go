// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spf13/afero"

	"github.com/morganforge/onboard-tui/internal/util"
)

// FileTier stores values as a JSON object in a single file. Placed in the
// per-login runtime directory it is removed when the OS session ends, which
// gives CLI invocations in the same login a shared session tier.
type FileTier struct {
	name string
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileTier creates a tier backed by path on fs.
func NewFileTier(name string, fs afero.Fs, path string) *FileTier {
	return &FileTier{name: name, fs: fs, path: path}
}

// DefaultSessionPath returns the session tier location: the per-login
// runtime directory when the OS provides one, otherwise a per-user
// directory under the temp dir.
func DefaultSessionPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "onboard", "session.json")
	}
	return filepath.Join(os.TempDir(), "onboard-"+strconv.Itoa(os.Getuid()), "session.json")
}

// Name implements Tier.
func (f *FileTier) Name() string { return f.name }

// Path returns the backing file path.
func (f *FileTier) Path() string { return f.path }

// Load implements Tier.
func (f *FileTier) Load(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return values, nil
}

// Replace implements Tier.
func (f *FileTier) Replace(ctx context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	// SECURITY: Credential files are owner read/write only
	return util.AtomicWriteFile(f.fs, f.path, data, 0600)
}

// Clear implements Tier.
func (f *FileTier) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fs.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", f.path, err)
	}
	return nil
}
