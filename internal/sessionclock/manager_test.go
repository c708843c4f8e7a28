// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sessionclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	expired  int
	warnings []int
	ticks    []int
	cleared  int
}

func newTestManager(t *testing.T) (*Manager, *ManualClock, *recorder) {
	t.Helper()
	clk := NewManualClock(epoch)
	m := New(clk, DefaultConfig(), nil)
	rec := &recorder{}
	m.SetExpiredCallback(func() { rec.expired++ })
	m.SetWarningCallbacks(
		func(s int) { rec.warnings = append(rec.warnings, s) },
		func(s int) { rec.ticks = append(rec.ticks, s) },
		func() { rec.cleared++ },
	)
	return m, clk, rec
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "DISARMED", Disarmed.String())
	assert.Equal(t, "ARMED", Armed.String())
	assert.Equal(t, "WARNING", Warning.String())
	assert.Equal(t, "EXPIRED", Expired.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{}.Normalize()
	assert.Equal(t, DefaultConfig(), cfg)

	cfg = Config{WarnAfter: 20 * time.Minute, LogoutAfter: 15 * time.Minute}.Normalize()
	assert.Equal(t, 14*time.Minute, cfg.WarnAfter)
	assert.Equal(t, 15*time.Minute, cfg.LogoutAfter)

	cfg = Config{LogoutAfter: time.Second}.Normalize()
	assert.Equal(t, MinLogoutAfter, cfg.LogoutAfter)
	assert.Less(t, cfg.WarnAfter, cfg.LogoutAfter)
	assert.Greater(t, cfg.WarnAfter, time.Duration(0))
}

func TestNewManagerIsDisarmed(t *testing.T) {
	m, clk, rec := newTestManager(t)

	snap := m.Snapshot()
	assert.Equal(t, Disarmed, snap.State)
	assert.False(t, snap.WarningVisible)
	assert.Zero(t, m.TimeRemaining())

	clk.Advance(time.Hour)
	assert.Zero(t, rec.expired)
	assert.Zero(t, clk.Pending())
}

func TestFullIdleExpiresExactlyOnce(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	assert.Equal(t, Armed, m.State())
	assert.Equal(t, 10*time.Minute, m.TimeRemaining())

	clk.Advance(10 * time.Minute)
	assert.Equal(t, 1, rec.expired)
	assert.Equal(t, []int{60}, rec.warnings)
	assert.Equal(t, Disarmed, m.State())

	clk.Advance(time.Hour)
	assert.Equal(t, 1, rec.expired)
	assert.Zero(t, clk.Pending())
}

func TestWarningAppearsAfterNineMinutes(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()

	clk.Advance(9*time.Minute - time.Millisecond)
	assert.Equal(t, Armed, m.State())
	assert.Empty(t, rec.warnings)

	clk.Advance(time.Millisecond)
	snap := m.Snapshot()
	assert.Equal(t, Warning, snap.State)
	assert.True(t, snap.WarningVisible)
	assert.Equal(t, 60, snap.SecondsRemaining)
	assert.Equal(t, []int{60}, rec.warnings)
}

func TestCountdownReachesZeroBeforeExpiry(t *testing.T) {
	clk := NewManualClock(epoch)
	m := New(clk, DefaultConfig(), nil)
	var events []string
	m.SetExpiredCallback(func() { events = append(events, "expired") })
	var ticks []int
	m.SetWarningCallbacks(nil, func(s int) {
		ticks = append(ticks, s)
		if s == 0 {
			events = append(events, "zero")
		}
	}, nil)
	m.Arm()
	clk.Advance(9 * time.Minute)

	clk.Advance(59 * time.Second)
	require.Len(t, ticks, 59)
	assert.Equal(t, 59, ticks[0])
	assert.Equal(t, 1, ticks[58])
	assert.Equal(t, 1, m.Snapshot().SecondsRemaining)
	assert.Empty(t, events)

	clk.Advance(time.Second)
	require.Len(t, ticks, 60)
	assert.Equal(t, []int{2, 1, 0}, ticks[57:])
	assert.Equal(t, []string{"zero", "expired"}, events)
	assert.Equal(t, Disarmed, m.State())
}

func TestActivityDuringWarningRestartsWindow(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	clk.Advance(9*time.Minute + 30*time.Second)
	require.Equal(t, Warning, m.State())

	assert.True(t, m.Activity())
	assert.Equal(t, Armed, m.State())
	assert.False(t, m.Snapshot().WarningVisible)
	assert.Equal(t, 1, rec.cleared)
	assert.Equal(t, 10*time.Minute, m.TimeRemaining())

	// The old hard deadline passes without effect
	clk.Advance(time.Minute)
	assert.Zero(t, rec.expired)
	assert.Equal(t, Armed, m.State())

	clk.Advance(9 * time.Minute)
	assert.Equal(t, 1, rec.expired)
}

func TestExtendDismissesWarning(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	clk.Advance(9 * time.Minute)

	assert.True(t, m.Extend())
	assert.Equal(t, Armed, m.State())
	assert.Equal(t, 1, rec.cleared)

	clk.Advance(9*time.Minute + 59*time.Second)
	assert.Zero(t, rec.expired)
}

func TestActivityBurstIsCoalesced(t *testing.T) {
	m, clk, _ := newTestManager(t)
	m.Arm()
	clk.Advance(2 * time.Minute)

	assert.True(t, m.Activity())
	deadline := m.Snapshot().Deadline
	for i := 0; i < 50; i++ {
		assert.False(t, m.Activity())
	}
	assert.Equal(t, deadline, m.Snapshot().Deadline)

	clk.Advance(time.Second)
	assert.True(t, m.Activity())
	assert.True(t, m.Snapshot().Deadline.After(deadline))
}

func TestActivityImmediatelyAfterArmStillCounts(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	clk.Advance(500 * time.Millisecond)
	assert.False(t, m.Activity())
	assert.Equal(t, 10*time.Minute, m.TimeRemaining())

	clk.Advance(9*time.Minute - time.Millisecond)
	assert.Empty(t, rec.warnings)
	clk.Advance(time.Millisecond)
	assert.Equal(t, []int{60}, rec.warnings)

	clk.Advance(time.Minute - time.Millisecond)
	assert.Zero(t, rec.expired)
	clk.Advance(time.Millisecond)
	assert.Equal(t, 1, rec.expired)
}

func TestLastActivityOfBurstSetsDeadline(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	clk.Advance(5 * time.Minute)
	assert.True(t, m.Activity())

	clk.Advance(500 * time.Millisecond)
	assert.False(t, m.Activity())
	assert.Equal(t, 10*time.Minute, m.TimeRemaining())

	// Full idle window measured from the held-back event
	clk.Advance(10*time.Minute - time.Millisecond)
	assert.Zero(t, rec.expired)
	assert.Equal(t, Warning, m.State())
	assert.Equal(t, time.Millisecond, m.TimeRemaining())

	clk.Advance(time.Millisecond)
	assert.Equal(t, 1, rec.expired)
	assert.Equal(t, Disarmed, m.State())
}

func TestDisarmForgetsHeldBackActivity(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	clk.Advance(100 * time.Millisecond)
	assert.False(t, m.Activity())
	m.Disarm()

	m.Arm()
	clk.Advance(10 * time.Minute)
	assert.Equal(t, 1, rec.expired)
}

func TestCoalesceDisabled(t *testing.T) {
	clk := NewManualClock(epoch)
	cfg := DefaultConfig()
	cfg.Coalesce = 0
	m := New(clk, cfg, nil)
	m.Arm()
	assert.True(t, m.Activity())
	assert.True(t, m.Activity())
}

func TestActivityIgnoredWhenDisarmed(t *testing.T) {
	m, clk, _ := newTestManager(t)
	assert.False(t, m.Activity())
	assert.False(t, m.Extend())
	assert.Equal(t, Disarmed, m.State())
	assert.Zero(t, clk.Pending())
}

func TestDisarmIsIdempotent(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	clk.Advance(9 * time.Minute)

	m.Disarm()
	m.Disarm()
	assert.Equal(t, Disarmed, m.State())
	assert.Equal(t, 1, rec.cleared)
	assert.Zero(t, clk.Pending())

	clk.Advance(time.Hour)
	assert.Zero(t, rec.expired)
}

func TestRearmReplacesTimers(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	clk.Advance(5 * time.Minute)
	m.Arm()
	assert.Equal(t, 2, clk.Pending())

	clk.Advance(5 * time.Minute)
	assert.Zero(t, rec.expired)
	clk.Advance(5 * time.Minute)
	assert.Equal(t, 1, rec.expired)
}

func TestStaleCallbacksAreDropped(t *testing.T) {
	m, _, rec := newTestManager(t)
	m.Arm()
	stale := m.gen
	m.Arm()

	m.fireWarning(stale)
	m.fireExpire(stale)
	m.tick(stale)

	assert.Equal(t, Armed, m.State())
	assert.Empty(t, rec.warnings)
	assert.Zero(t, rec.expired)
}

func TestExpiredCallbackMayDisarm(t *testing.T) {
	clk := NewManualClock(epoch)
	m := New(clk, DefaultConfig(), nil)
	calls := 0
	m.SetExpiredCallback(func() {
		calls++
		m.Disarm()
	})
	m.Arm()
	clk.Advance(10 * time.Minute)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Disarmed, m.State())
}

func TestSetConfigAppliesOnNextArm(t *testing.T) {
	m, clk, rec := newTestManager(t)
	m.Arm()
	m.SetConfig(Config{WarnAfter: time.Minute, LogoutAfter: 2 * time.Minute, Countdown: 60})
	assert.Equal(t, 2*time.Minute, m.Config().LogoutAfter)

	clk.Advance(2 * time.Minute)
	assert.Zero(t, rec.expired)

	m.Arm()
	clk.Advance(2 * time.Minute)
	assert.Equal(t, 1, rec.expired)
}
