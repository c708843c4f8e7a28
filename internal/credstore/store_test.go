// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() Record {
	return Record{
		Token:        "tok-123",
		Role:         "Employee",
		UserName:     "asha",
		EmployeeID:   "5",
		EmployeeName: "Asha Rao",
	}
}

// tierFactories builds each Tier implementation for the shared contract
// tests below.
func tierFactories(t *testing.T) map[string]func() Tier {
	return map[string]func() Tier{
		"memory": func() Tier { return NewMemoryTier("session") },
		"file": func() Tier {
			return NewFileTier("session", afero.NewMemMapFs(), "/run/onboard/session.json")
		},
		"sqlite": func() Tier {
			tier, err := OpenSQLiteTier("persistent", filepath.Join(t.TempDir(), "credentials.db"))
			require.NoError(t, err)
			t.Cleanup(func() { tier.Close() })
			return tier
		},
	}
}

// =============================================================================
// TIER CONTRACT TESTS
// =============================================================================

func TestTier_EmptyLoad(t *testing.T) {
	ctx := context.Background()
	for name, newTier := range tierFactories(t) {
		t.Run(name, func(t *testing.T) {
			values, err := newTier().Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, values)
		})
	}
}

func TestTier_ReplaceLoadClear(t *testing.T) {
	ctx := context.Background()
	for name, newTier := range tierFactories(t) {
		t.Run(name, func(t *testing.T) {
			tier := newTier()

			require.NoError(t, tier.Replace(ctx, sampleRecord().Values()))
			values, err := tier.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleRecord(), RecordFromValues(values))

			// Replace drops keys that are no longer present
			rec := sampleRecord()
			rec.EmployeeName = ""
			require.NoError(t, tier.Replace(ctx, rec.Values()))
			values, err = tier.Load(ctx)
			require.NoError(t, err)
			assert.NotContains(t, values, KeyEmployeeName)

			require.NoError(t, tier.Clear(ctx))
			values, err = tier.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, values)

			// Clearing an empty tier is fine
			require.NoError(t, tier.Clear(ctx))
		})
	}
}

func TestFileTier_Corrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s.json", []byte("{not json"), 0600))

	_, err := NewFileTier("session", fs, "/s.json").Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestSQLiteTier_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	tier, err := OpenSQLiteTier("persistent", path)
	require.NoError(t, err)
	require.NoError(t, tier.Replace(ctx, sampleRecord().Values()))
	require.NoError(t, tier.Close())

	reopened, err := OpenSQLiteTier("persistent", path)
	require.NoError(t, err)
	defer reopened.Close()

	values, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), RecordFromValues(values))
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestRecord_Complete(t *testing.T) {
	assert.True(t, sampleRecord().Complete())

	rec := sampleRecord()
	rec.EmployeeName = ""
	assert.True(t, rec.Complete(), "employee name is optional")

	rec = sampleRecord()
	rec.EmployeeID = ""
	assert.False(t, rec.Complete())
}

func TestStore_WriteClearsOtherTier(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	require.NoError(t, s.Write(ctx, KindPersistent, sampleRecord()))
	require.NoError(t, s.Write(ctx, KindSession, sampleRecord()))

	persistent, err := s.Tier(KindPersistent).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persistent)

	session, err := s.Tier(KindSession).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), RecordFromValues(session))
}

func TestStore_ReadPrefersPersistent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	other := sampleRecord()
	other.Token = "session-token"
	require.NoError(t, s.Tier(KindSession).Replace(ctx, other.Values()))
	require.NoError(t, s.Tier(KindPersistent).Replace(ctx, sampleRecord().Values()))

	rec, kind, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindPersistent, kind)
	assert.Equal(t, "tok-123", rec.Token)
}

func TestStore_ReadNeverMixesTiers(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	// Token only in persistent, the rest only in session: neither is complete
	require.NoError(t, s.Tier(KindPersistent).Replace(ctx, map[string]string{KeyToken: "t"}))
	require.NoError(t, s.Tier(KindSession).Replace(ctx, map[string]string{
		KeyRole: "Employee", KeyUserName: "asha", KeyEmployeeID: "5",
	}))

	_, kind, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindNone, kind)
}

func TestStore_ReadSkipsCorruptTier(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.json", []byte("garbage"), 0600))

	s := New(NewFileTier("persistent", fs, "/p.json"), NewMemoryTier("session"))
	require.NoError(t, s.Tier(KindSession).Replace(ctx, sampleRecord().Values()))

	rec, kind, err := s.Read(ctx)
	assert.Equal(t, KindSession, kind)
	assert.Equal(t, sampleRecord(), rec)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestStore_Wipe(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	require.NoError(t, s.Tier(KindPersistent).Replace(ctx, map[string]string{"theme": "dark"}))
	require.NoError(t, s.Tier(KindSession).Replace(ctx, sampleRecord().Values()))

	require.NoError(t, s.Wipe(ctx))

	for _, k := range []Kind{KindPersistent, KindSession} {
		values, err := s.Tier(k).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, values, "tier %s", k)
	}
}

func TestStore_WriteRejectsNone(t *testing.T) {
	err := NewInMemory().Write(context.Background(), KindNone, sampleRecord())
	assert.Error(t, err)
}
