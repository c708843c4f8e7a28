// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/onboard-tui/internal/credstore"
	"github.com/morganforge/onboard-tui/internal/sessionclock"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestController(t *testing.T, store *credstore.Store) (*Controller, *sessionclock.Manager, *sessionclock.ManualClock) {
	t.Helper()
	clk := sessionclock.NewManualClock(testNow)
	mgr := sessionclock.New(clk, sessionclock.DefaultConfig(), nil)
	ctrl := NewController(store, mgr, nil, WithNow(clk.Now))
	return ctrl, mgr, clk
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "asha",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func loadTier(t *testing.T, store *credstore.Store, k credstore.Kind) map[string]string {
	t.Helper()
	values, err := store.Tier(k).Load(context.Background())
	require.NoError(t, err)
	return values
}

// =============================================================================
// ROLE
// =============================================================================

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Employee")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployee, r)

	r, err = ParseRole(" Manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	for _, bad := range []string{"", "admin", "manager", "EMPLOYEE"} {
		_, err := ParseRole(bad)
		assert.ErrorIs(t, err, ErrUnknownRole, bad)
	}
}

func TestRoleSetContains(t *testing.T) {
	set := Roles(RoleManager)
	assert.True(t, set.Contains(RoleManager))
	assert.False(t, set.Contains(RoleEmployee))
	assert.False(t, Roles().Contains(RoleNone))
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "explicit", ReasonExplicit.String())
	assert.Equal(t, "idle", ReasonIdle.String())
	assert.Equal(t, "unauthorized", ReasonUnauthorized.String())
}

func TestIdentityDisplayName(t *testing.T) {
	assert.Equal(t, "asha", Identity{UserName: "asha"}.DisplayName())
	assert.Equal(t, "Asha Rao", Identity{UserName: "asha", EmployeeName: strPtr("Asha Rao")}.DisplayName())
}

// =============================================================================
// LOGIN / RESTORE
// =============================================================================

func TestLoginRestoreRoundTrip(t *testing.T) {
	for _, remember := range []bool{true, false} {
		store := credstore.NewInMemory()
		ctrl, _, _ := newTestController(t, store)

		ident := Identity{UserName: "asha", EmployeeID: 5, EmployeeName: strPtr("Asha Rao")}
		require.NoError(t, ctrl.Login(context.Background(), "tok-1", RoleEmployee, ident, remember))
		want := ctrl.Session()

		reloaded, mgr, _ := newTestController(t, store)
		assert.True(t, reloaded.Restore(context.Background()))
		assert.Equal(t, want, reloaded.Session())
		assert.Equal(t, sessionclock.Armed, mgr.State())
	}
}

func TestLoginWithoutRememberUsesSessionTierOnly(t *testing.T) {
	store := credstore.NewInMemory()
	ctrl, mgr, _ := newTestController(t, store)

	err := ctrl.Login(context.Background(), "tok-1", RoleEmployee, Identity{UserName: "asha", EmployeeID: 5}, false)
	require.NoError(t, err)
	assert.True(t, ctrl.IsAuthenticated())
	assert.Equal(t, sessionclock.Armed, mgr.State())

	assert.Empty(t, loadTier(t, store, credstore.KindPersistent))
	assert.Equal(t, "tok-1", loadTier(t, store, credstore.KindSession)[credstore.KeyToken])

	// Restart: only the persistent tier survives
	restarted := credstore.New(store.Tier(credstore.KindPersistent), credstore.NewMemoryTier("session"))
	fresh, _, _ := newTestController(t, restarted)
	assert.False(t, fresh.Restore(context.Background()))
	assert.False(t, fresh.IsAuthenticated())
}

func TestLoginClearsOtherTier(t *testing.T) {
	store := credstore.NewInMemory()
	ctrl, _, _ := newTestController(t, store)
	ctx := context.Background()

	require.NoError(t, ctrl.Login(ctx, "tok-1", RoleManager, Identity{UserName: "ravi", EmployeeID: 2}, true))
	require.NoError(t, ctrl.Login(ctx, "tok-2", RoleManager, Identity{UserName: "ravi", EmployeeID: 2}, false))

	assert.Empty(t, loadTier(t, store, credstore.KindPersistent))
	assert.Equal(t, "tok-2", loadTier(t, store, credstore.KindSession)[credstore.KeyToken])
}

func TestLoginRejectsProgrammingErrors(t *testing.T) {
	ctrl, _, _ := newTestController(t, credstore.NewInMemory())
	ctx := context.Background()

	assert.ErrorIs(t, ctrl.Login(ctx, "", RoleEmployee, Identity{}, false), ErrEmptyToken)
	assert.ErrorIs(t, ctrl.Login(ctx, "tok", Role("Admin"), Identity{}, false), ErrUnknownRole)
	assert.False(t, ctrl.IsAuthenticated())
}

type failingTier struct{ *credstore.MemoryTier }

func (failingTier) Replace(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func TestLoginStorageFailure(t *testing.T) {
	store := credstore.New(failingTier{credstore.NewMemoryTier("persistent")}, credstore.NewMemoryTier("session"))
	ctrl, mgr, _ := newTestController(t, store)

	err := ctrl.Login(context.Background(), "tok", RoleEmployee, Identity{UserName: "asha", EmployeeID: 5}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, ctrl.IsAuthenticated())
	assert.Equal(t, sessionclock.Disarmed, mgr.State())
}

func TestRestorePrefersPersistentTier(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemory()
	require.NoError(t, store.Tier(credstore.KindSession).Replace(ctx, credstore.Record{
		Token: "session-tok", Role: "Employee", UserName: "asha", EmployeeID: "5",
	}.Values()))
	require.NoError(t, store.Tier(credstore.KindPersistent).Replace(ctx, credstore.Record{
		Token: "persist-tok", Role: "Manager", UserName: "ravi", EmployeeID: "2",
	}.Values()))

	ctrl, _, _ := newTestController(t, store)
	require.True(t, ctrl.Restore(ctx))
	sess := ctrl.Session()
	assert.Equal(t, "persist-tok", sess.Token)
	assert.Equal(t, RoleManager, sess.Role)
	assert.True(t, sess.RememberMe)
	assert.Nil(t, sess.Identity.EmployeeName)
}

func TestRestoreRejectsInvalidRecords(t *testing.T) {
	cases := map[string]credstore.Record{
		"missing role":     {Token: "t", UserName: "asha", EmployeeID: "5"},
		"missing token":    {Role: "Employee", UserName: "asha", EmployeeID: "5"},
		"unknown role":     {Token: "t", Role: "Admin", UserName: "asha", EmployeeID: "5"},
		"non-numeric id":   {Token: "t", Role: "Employee", UserName: "asha", EmployeeID: "five"},
		"missing username": {Token: "t", Role: "Employee", EmployeeID: "5"},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := credstore.NewInMemory()
			require.NoError(t, store.Tier(credstore.KindPersistent).Replace(ctx, rec.Values()))

			ctrl, mgr, _ := newTestController(t, store)
			assert.False(t, ctrl.Restore(ctx))
			assert.Equal(t, Session{}, ctrl.Session())
			assert.Equal(t, sessionclock.Disarmed, mgr.State())
			assert.Empty(t, loadTier(t, store, credstore.KindPersistent))
		})
	}
}

func TestRestoreFallsBackWhenPersistentInvalid(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemory()
	require.NoError(t, store.Tier(credstore.KindPersistent).Replace(ctx, credstore.Record{
		Token: "t", Role: "Admin", UserName: "asha", EmployeeID: "5",
	}.Values()))
	require.NoError(t, store.Tier(credstore.KindSession).Replace(ctx, credstore.Record{
		Token: "good", Role: "Employee", UserName: "asha", EmployeeID: "5",
	}.Values()))

	ctrl, _, _ := newTestController(t, store)
	require.True(t, ctrl.Restore(ctx))
	assert.Equal(t, "good", ctrl.Token())
	assert.False(t, ctrl.Session().RememberMe)
	assert.Empty(t, loadTier(t, store, credstore.KindPersistent))
	assert.NotEmpty(t, loadTier(t, store, credstore.KindSession))
}

func TestRestoreRejectsExpiredJWT(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemory()
	ctrl, _, _ := newTestController(t, store)

	stale := signedToken(t, testNow.Add(-time.Minute))
	require.NoError(t, ctrl.Login(ctx, stale, RoleEmployee, Identity{UserName: "asha", EmployeeID: 5}, true))

	reloaded, _, _ := newTestController(t, store)
	assert.False(t, reloaded.Restore(ctx))
	assert.Empty(t, loadTier(t, store, credstore.KindPersistent))

	fresh := signedToken(t, testNow.Add(time.Hour))
	require.NoError(t, ctrl.Login(ctx, fresh, RoleEmployee, Identity{UserName: "asha", EmployeeID: 5}, true))
	reloaded, _, _ = newTestController(t, store)
	assert.True(t, reloaded.Restore(ctx))
}

func TestRestoreFromFileTier(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	newStore := func() *credstore.Store {
		return credstore.New(credstore.NewMemoryTier("persistent"),
			credstore.NewFileTier("session", fs, "/run/onboard/session.json"))
	}

	ctrl, _, _ := newTestController(t, newStore())
	require.NoError(t, ctrl.Login(ctx, "tok", RoleManager, Identity{UserName: "ravi", EmployeeID: 2}, false))

	reloaded, _, _ := newTestController(t, newStore())
	require.True(t, reloaded.Restore(ctx))
	assert.Equal(t, RoleManager, reloaded.Role())
}

func TestRestoreClearsCorruptFile(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	const path = "/run/onboard/session.json"
	require.NoError(t, afero.WriteFile(fs, path, []byte("{not json"), 0o600))
	store := credstore.New(credstore.NewMemoryTier("persistent"), credstore.NewFileTier("session", fs, path))

	ctrl, _, _ := newTestController(t, store)
	assert.False(t, ctrl.Restore(ctx))

	vals, err := store.Tier(credstore.KindSession).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

// =============================================================================
// LOGOUT
// =============================================================================

func TestLogoutThenRestoreIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemory()
	ctrl, mgr, _ := newTestController(t, store)
	require.NoError(t, ctrl.Login(ctx, "tok", RoleEmployee, Identity{UserName: "asha", EmployeeID: 5, EmployeeName: strPtr("Asha")}, true))

	require.NoError(t, ctrl.Logout(ctx))
	assert.False(t, ctrl.IsAuthenticated())
	assert.Equal(t, Session{}, ctrl.Session())
	assert.Equal(t, sessionclock.Disarmed, mgr.State())
	assert.Empty(t, loadTier(t, store, credstore.KindPersistent))
	assert.Empty(t, loadTier(t, store, credstore.KindSession))

	reloaded, _, _ := newTestController(t, store)
	assert.False(t, reloaded.Restore(ctx))
	assert.Equal(t, Session{}, reloaded.Session())
}

func TestLogoutWipesWholeTier(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemory()
	require.NoError(t, store.Tier(credstore.KindSession).Replace(ctx, map[string]string{"unrelated": "x"}))

	ctrl, _, _ := newTestController(t, store)
	require.NoError(t, ctrl.Logout(ctx))
	assert.Empty(t, loadTier(t, store, credstore.KindSession))
}

func TestLogoutIsIdempotentAndNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	ctrl, _, _ := newTestController(t, credstore.NewInMemory())
	var reasons []Reason
	ctrl.OnLogout(func(r Reason) { reasons = append(reasons, r) })

	require.NoError(t, ctrl.Login(ctx, "tok", RoleEmployee, Identity{UserName: "asha", EmployeeID: 5}, false))
	require.NoError(t, ctrl.LogoutWithReason(ctx, ReasonUnauthorized))
	require.NoError(t, ctrl.Logout(ctx))
	require.NoError(t, ctrl.Logout(ctx))

	assert.Equal(t, []Reason{ReasonUnauthorized}, reasons)
}

func TestIdleExpiryLogsOutExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemory()
	ctrl, mgr, clk := newTestController(t, store)
	var reasons []Reason
	ctrl.OnLogout(func(r Reason) { reasons = append(reasons, r) })

	require.NoError(t, ctrl.Login(ctx, "tok", RoleEmployee, Identity{UserName: "asha", EmployeeID: 5}, true))
	clk.Advance(10 * time.Minute)

	assert.Equal(t, []Reason{ReasonIdle}, reasons)
	assert.False(t, ctrl.IsAuthenticated())
	assert.Equal(t, sessionclock.Disarmed, mgr.State())
	assert.Empty(t, loadTier(t, store, credstore.KindPersistent))

	clk.Advance(time.Hour)
	assert.Len(t, reasons, 1)
}

func TestTouchExtendsSession(t *testing.T) {
	ctx := context.Background()
	ctrl, mgr, clk := newTestController(t, credstore.NewInMemory())
	require.NoError(t, ctrl.Login(ctx, "tok", RoleEmployee, Identity{UserName: "asha", EmployeeID: 5}, false))

	clk.Advance(9*time.Minute + 30*time.Second)
	require.True(t, mgr.Snapshot().WarningVisible)

	ctrl.Touch()
	assert.False(t, mgr.Snapshot().WarningVisible)
	clk.Advance(9 * time.Minute)
	assert.True(t, ctrl.IsAuthenticated())
}

func TestTouchIgnoredWhenLoggedOut(t *testing.T) {
	ctrl, mgr, _ := newTestController(t, credstore.NewInMemory())
	ctrl.Touch()
	assert.Equal(t, sessionclock.Disarmed, mgr.State())
}

func TestSessionReturnsCopy(t *testing.T) {
	ctx := context.Background()
	ctrl, _, _ := newTestController(t, credstore.NewInMemory())
	require.NoError(t, ctrl.Login(ctx, "tok", RoleEmployee, Identity{UserName: "asha", EmployeeID: 5, EmployeeName: strPtr("Asha")}, false))

	sess := ctrl.Session()
	*sess.Identity.EmployeeName = "changed"
	assert.Equal(t, "Asha", *ctrl.Session().Identity.EmployeeName)
}
