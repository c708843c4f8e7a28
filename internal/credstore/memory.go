// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"context"
	"maps"
	"sync"
)

// MemoryTier keeps values in process memory. It lasts as long as the
// process, which makes it the session tier of the interactive TUI when no
// runtime directory is available.
type MemoryTier struct {
	name   string
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryTier creates an empty in-memory tier.
func NewMemoryTier(name string) *MemoryTier {
	return &MemoryTier{name: name, values: make(map[string]string)}
}

// Name implements Tier.
func (m *MemoryTier) Name() string { return m.name }

// Load implements Tier.
func (m *MemoryTier) Load(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values), nil
}

// Replace implements Tier.
func (m *MemoryTier) Replace(ctx context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = maps.Clone(values)
	if m.values == nil {
		m.values = make(map[string]string)
	}
	return nil
}

// Clear implements Tier.
func (m *MemoryTier) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}
