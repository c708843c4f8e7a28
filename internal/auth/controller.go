// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/morganforge/onboard-tui/internal/credstore"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyToken is returned by Login when no token is given.
	ErrEmptyToken = errors.New("empty token")

	// ErrStaleToken marks a stored token whose exp claim has passed.
	ErrStaleToken = errors.New("stored token expired")

	// ErrInvalidRecord marks a stored record that cannot form a session.
	ErrInvalidRecord = errors.New("invalid stored credentials")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// IdleClock is the part of the session clock the controller drives.
type IdleClock interface {
	Arm()
	Activity() bool
	Disarm()
	SetExpiredCallback(fn func())
}

// Option configures a Controller.
type Option func(*Controller)

// WithNow sets the time source used for token expiry checks.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns the current session.
type Controller struct {
	mu        sync.RWMutex
	store     *credstore.Store
	clock     IdleClock
	log       logrus.FieldLogger
	now       func() time.Time
	session   Session
	observers []func(Reason)
}

// NewController creates a logged-out controller. The clock's expiry is
// wired to LogoutWithReason(ReasonIdle).
func NewController(store *credstore.Store, clock IdleClock, log logrus.FieldLogger, opts ...Option) *Controller {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	c := &Controller{
		store: store,
		clock: clock,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if clock != nil {
		clock.SetExpiredCallback(func() {
			c.LogoutWithReason(context.Background(), ReasonIdle)
		})
	}
	return c
}

// OnLogout registers an observer told the reason whenever an
// authenticated session ends. Observers run outside the controller's lock.
func (c *Controller) OnLogout(fn func(Reason)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Restore loads a session from the store. Tiers are checked persistent
// first, then session; the first tier whose whole record is valid wins.
// Missing, partial or invalid data leaves the controller logged out, and a
// tier holding rejected data is cleared. It reports whether a session was
// restored.
func (c *Controller) Restore(ctx context.Context) bool {
	for _, kind := range []credstore.Kind{credstore.KindPersistent, credstore.KindSession} {
		tier := c.store.Tier(kind)
		values, err := tier.Load(ctx)
		if err != nil {
			c.log.WithError(err).WithField("tier", tier.Name()).Warn("credential tier unreadable")
			if errors.Is(err, credstore.ErrCorrupt) {
				c.discard(ctx, tier)
			}
			continue
		}
		if len(values) == 0 {
			continue
		}
		rec := credstore.RecordFromValues(values)
		if !rec.Complete() {
			c.log.WithFields(logrus.Fields{
				"event": "SESSION_RESTORE_REJECTED",
				"tier":  tier.Name(),
			}).Info("stored credentials incomplete")
			c.discard(ctx, tier)
			continue
		}
		sess, err := c.sessionFromRecord(rec)
		if err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"event": "SESSION_RESTORE_REJECTED",
				"tier":  tier.Name(),
			}).Info("stored credentials rejected")
			c.discard(ctx, tier)
			continue
		}
		sess.RememberMe = kind == credstore.KindPersistent

		c.mu.Lock()
		c.session = sess
		c.mu.Unlock()

		if c.clock != nil {
			c.clock.Arm()
		}
		c.logEvent("SESSION_RESTORED", sess, logrus.Fields{"tier": tier.Name()})
		return true
	}
	return false
}

// discard clears a tier whose contents were rejected.
func (c *Controller) discard(ctx context.Context, tier credstore.Tier) {
	if err := tier.Clear(ctx); err != nil {
		c.log.WithError(err).WithField("tier", tier.Name()).Warn("failed to clear rejected credentials")
	}
}

func (c *Controller) sessionFromRecord(rec credstore.Record) (Session, error) {
	role, err := ParseRole(rec.Role)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(rec.EmployeeID))
	if err != nil {
		return Session{}, fmt.Errorf("%w: employee id %q", ErrInvalidRecord, rec.EmployeeID)
	}
	if c.tokenExpired(rec.Token) {
		return Session{}, ErrStaleToken
	}

	ident := Identity{UserName: rec.UserName, EmployeeID: id}
	if rec.EmployeeName != "" {
		name := rec.EmployeeName
		ident.EmployeeName = &name
	}
	return Session{Token: rec.Token, Role: role, Identity: ident}, nil
}

// tokenExpired reports whether token is a JWT with an exp claim in the
// past. Opaque tokens and JWTs without exp are never considered expired.
func (c *Controller) tokenExpired(token string) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(c.now())
}

// Login commits the result of a successful authentication: the session is
// written to the tier chosen by rememberMe (the other tier is cleared),
// set in memory and the clock is armed. No network call is made. On a
// storage failure the in-memory session is left unchanged.
func (c *Controller) Login(ctx context.Context, token string, role Role, ident Identity, rememberMe bool) error {
	if token == "" {
		return ErrEmptyToken
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, string(role))
	}

	sess := Session{Token: token, Role: role, Identity: ident, RememberMe: rememberMe}.clone()

	rec := credstore.Record{
		Token:      token,
		Role:       role.String(),
		UserName:   ident.UserName,
		EmployeeID: strconv.Itoa(ident.EmployeeID),
	}
	if ident.EmployeeName != nil {
		rec.EmployeeName = *ident.EmployeeName
	}
	kind := credstore.KindSession
	if rememberMe {
		kind = credstore.KindPersistent
	}

	if err := c.store.Write(ctx, kind, rec); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	if c.clock != nil {
		c.clock.Arm()
	}
	c.logEvent("SESSION_CREATED", sess, logrus.Fields{"tier": kind.String()})
	return nil
}

// Logout ends the session at the user's request.
func (c *Controller) Logout(ctx context.Context) error {
	return c.LogoutWithReason(ctx, ReasonExplicit)
}

// LogoutWithReason clears the session in memory, wipes both store tiers and
// disarms the clock. It is idempotent; observers are told only when an
// authenticated session actually ended. A wipe failure is returned after
// memory and clock have been cleared.
func (c *Controller) LogoutWithReason(ctx context.Context, reason Reason) error {
	c.mu.Lock()
	prev := c.session
	c.session = Session{}
	observers := append([]func(Reason){}, c.observers...)
	c.mu.Unlock()

	if c.clock != nil {
		c.clock.Disarm()
	}
	wipeErr := c.store.Wipe(ctx)
	if wipeErr != nil {
		c.log.WithError(wipeErr).Error("failed to wipe credential store")
	}

	if !prev.Authenticated() {
		return wipeErr
	}
	c.logEvent("SESSION_TERMINATED", prev, logrus.Fields{"reason": reason.String()})
	for _, fn := range observers {
		fn(reason)
	}
	if wipeErr != nil {
		return fmt.Errorf("failed to clear stored session: %w", wipeErr)
	}
	return nil
}

// IsAuthenticated reports whether a token is held.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Authenticated()
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.clone()
}

// Role returns the current role, or RoleNone.
func (c *Controller) Role() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Role
}

// Token returns the bearer token, or "" when logged out.
func (c *Controller) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Token
}

// Touch forwards a user-activity event to the clock.
func (c *Controller) Touch() {
	if c.clock == nil || !c.IsAuthenticated() {
		return
	}
	c.clock.Activity()
}

func (c *Controller) logEvent(event string, sess Session, extra logrus.Fields) {
	fields := logrus.Fields{
		"event":       event,
		"user":        sess.Identity.UserName,
		"employee_id": sess.Identity.EmployeeID,
		"role":        sess.Role.String(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	c.log.WithFields(fields).Info("session event")
}
