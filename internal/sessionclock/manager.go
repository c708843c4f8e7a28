// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sessionclock

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

const (
	// DefaultWarnAfter is the idle time before the warning is shown.
	DefaultWarnAfter = 9 * time.Minute

	// DefaultLogoutAfter is the idle time before the session is ended.
	DefaultLogoutAfter = 10 * time.Minute

	// DefaultCountdown is the number of seconds shown in the warning.
	DefaultCountdown = 60

	// DefaultCoalesce is the window in which activity bursts collapse into
	// one reset.
	DefaultCoalesce = time.Second

	// MinLogoutAfter is the shortest idle window accepted.
	MinLogoutAfter = 30 * time.Second
)

// Config holds the clock timings.
type Config struct {
	// WarnAfter is measured from the last reset.
	WarnAfter time.Duration

	// LogoutAfter is measured from the last reset. It must exceed WarnAfter.
	LogoutAfter time.Duration

	// Countdown is the starting value of the warning countdown in seconds.
	Countdown int

	// Coalesce limits re-arms in Armed state to one per window. Zero
	// disables coalescing.
	Coalesce time.Duration
}

// DefaultConfig returns the standard timings: warn at 9 minutes, log out
// at 10, 60 second countdown.
func DefaultConfig() Config {
	return Config{
		WarnAfter:   DefaultWarnAfter,
		LogoutAfter: DefaultLogoutAfter,
		Countdown:   DefaultCountdown,
		Coalesce:    DefaultCoalesce,
	}
}

// Normalize fills zero values with defaults and repairs inconsistent
// timings. LogoutAfter is raised to MinLogoutAfter; WarnAfter is pulled
// below LogoutAfter.
func (c Config) Normalize() Config {
	d := DefaultConfig()
	if c.LogoutAfter <= 0 {
		c.LogoutAfter = d.LogoutAfter
	}
	if c.LogoutAfter < MinLogoutAfter {
		c.LogoutAfter = MinLogoutAfter
	}
	if c.WarnAfter <= 0 || c.WarnAfter >= c.LogoutAfter {
		c.WarnAfter = c.LogoutAfter - time.Duration(DefaultCountdown)*time.Second
		if c.WarnAfter <= 0 {
			c.WarnAfter = c.LogoutAfter / 2
		}
	}
	if c.Countdown <= 0 {
		c.Countdown = d.Countdown
	}
	if c.Coalesce < 0 {
		c.Coalesce = 0
	}
	return c
}

// =============================================================================
// STATE
// =============================================================================

// State is the clock state.
type State int

const (
	// Disarmed means no timers are running.
	Disarmed State = iota
	// Armed means the warning and hard-logout timers are running.
	Armed
	// Warning means the countdown is showing; the hard timer still runs.
	Warning
	// Expired is transient while the expired callback runs.
	Expired
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case Disarmed:
		return "DISARMED"
	case Armed:
		return "ARMED"
	case Warning:
		return "WARNING"
	case Expired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is the inactivity timer state as seen by the UI.
type Snapshot struct {
	State            State
	WarningVisible   bool
	SecondsRemaining int

	// Deadline is when the hard timer fires. Zero when not armed.
	Deadline time.Time
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager runs the inactivity timers for one session.
type Manager struct {
	mu    sync.Mutex
	clock Clock
	cfg   Config
	log   logrus.FieldLogger

	state            State
	gen              uint64
	secondsRemaining int
	deadline         time.Time
	// lastDropped is the newest activity the limiter held back since the
	// last reset. The warning timer re-arms from it.
	lastDropped time.Time

	warnTimer   Timer
	expireTimer Timer
	tickTimer   Timer

	limiter *rate.Limiter

	onWarning func(seconds int)
	onTick    func(seconds int)
	onCleared func()
	onExpired func()
}

// New creates a disarmed Manager.
func New(clock Clock, cfg Config, log logrus.FieldLogger) *Manager {
	if clock == nil {
		clock = RealClock()
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	m := &Manager{clock: clock, log: log}
	m.applyConfigLocked(cfg)
	return m
}

func (m *Manager) applyConfigLocked(cfg Config) {
	m.cfg = cfg.Normalize()
	m.limiter = nil
	if m.cfg.Coalesce > 0 {
		m.limiter = rate.NewLimiter(rate.Every(m.cfg.Coalesce), 1)
	}
}

// SetConfig replaces the timings. They take effect at the next reset.
func (m *Manager) SetConfig(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyConfigLocked(cfg)
	m.log.WithFields(logrus.Fields{
		"event":        "SESSION_CLOCK_CONFIG",
		"warn_after":   m.cfg.WarnAfter,
		"logout_after": m.cfg.LogoutAfter,
	}).Info("session clock timings updated")
}

// Config returns the active timings.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// SetExpiredCallback sets the function run when the hard timer fires. It
// runs once per expiry, outside the manager's lock.
func (m *Manager) SetExpiredCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = fn
}

// SetWarningCallbacks sets the display callbacks: onWarning when the
// warning appears, onTick for each countdown second, onCleared when a
// visible warning is dismissed by activity or disarm. Any may be nil.
func (m *Manager) SetWarningCallbacks(onWarning, onTick func(seconds int), onCleared func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWarning = onWarning
	m.onTick = onTick
	m.onCleared = onCleared
}

// Arm cancels any running timers and starts a fresh idle window.
func (m *Manager) Arm() {
	m.mu.Lock()
	wasWarning := m.state == Warning
	if m.limiter != nil {
		// An arm counts as the reset for the current coalesce window
		m.limiter.AllowN(m.clock.Now(), 1)
	}
	m.armLocked()
	cleared := m.onCleared
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"event":        "SESSION_ARMED",
		"logout_after": m.cfg.LogoutAfter,
	}).Debug("session clock armed")

	if wasWarning && cleared != nil {
		cleared()
	}
}

// Activity records a user-activity event. In Armed or Warning state it
// restarts the full idle window. Bursts in Armed state are coalesced into
// one timer reset per Coalesce window; an event held back by the limiter
// still moves the deadline, and the timers catch up when the warning timer
// fires. It reports whether the timers were reset immediately.
func (m *Manager) Activity() bool {
	return m.activity(true)
}

// Extend is the "stay logged in" choice. It always resets an armed clock.
func (m *Manager) Extend() bool {
	return m.activity(false)
}

func (m *Manager) activity(coalesce bool) bool {
	m.mu.Lock()
	switch m.state {
	case Armed:
		now := m.clock.Now()
		if coalesce && m.limiter != nil && !m.limiter.AllowN(now, 1) {
			m.lastDropped = now
			m.deadline = now.Add(m.cfg.LogoutAfter)
			m.mu.Unlock()
			return false
		}
	case Warning:
		// Always honored so the warning can be dismissed
		if m.limiter != nil {
			m.limiter.AllowN(m.clock.Now(), 1)
		}
	default:
		m.mu.Unlock()
		return false
	}

	wasWarning := m.state == Warning
	m.armLocked()
	cleared := m.onCleared
	m.mu.Unlock()

	if wasWarning {
		m.log.WithField("event", "SESSION_EXTENDED").Info("session extended from warning")
		if cleared != nil {
			cleared()
		}
	}
	return true
}

// Disarm cancels every timer and hides the warning. Safe to call in any
// state, any number of times.
func (m *Manager) Disarm() {
	m.mu.Lock()
	wasWarning := m.state == Warning
	wasRunning := m.state != Disarmed
	m.cancelLocked()
	m.gen++
	m.state = Disarmed
	m.secondsRemaining = 0
	m.deadline = time.Time{}
	m.lastDropped = time.Time{}
	cleared := m.onCleared
	m.mu.Unlock()

	if wasRunning {
		m.log.WithField("event", "SESSION_DISARMED").Debug("session clock disarmed")
	}
	if wasWarning && cleared != nil {
		cleared()
	}
}

// Snapshot returns the current timer state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:            m.state,
		WarningVisible:   m.state == Warning,
		SecondsRemaining: m.secondsRemaining,
		Deadline:         m.deadline,
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TimeRemaining returns the time until the hard timer fires, or 0 when
// not armed.
func (m *Manager) TimeRemaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deadline.IsZero() {
		return 0
	}
	remaining := m.deadline.Sub(m.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// TIMER HANDLING
// =============================================================================

// armLocked cancels everything and schedules a new window. Caller holds mu.
func (m *Manager) armLocked() {
	m.armFromLocked(m.clock.Now())
}

// armFromLocked schedules a window that started at from, which may lie in
// the past. Caller holds mu.
func (m *Manager) armFromLocked(from time.Time) {
	m.cancelLocked()
	m.gen++
	gen := m.gen
	m.state = Armed
	m.secondsRemaining = 0
	m.lastDropped = time.Time{}
	m.deadline = from.Add(m.cfg.LogoutAfter)

	elapsed := m.clock.Now().Sub(from)
	if elapsed < 0 {
		elapsed = 0
	}
	m.warnTimer = m.clock.AfterFunc(m.cfg.WarnAfter-elapsed, func() { m.fireWarning(gen) })
	m.expireTimer = m.clock.AfterFunc(m.cfg.LogoutAfter-elapsed, func() { m.fireExpire(gen) })
}

// cancelLocked stops all three timers. Idempotent. Caller holds mu.
func (m *Manager) cancelLocked() {
	for _, t := range []*Timer{&m.warnTimer, &m.expireTimer, &m.tickTimer} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
}

func (m *Manager) fireWarning(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != Armed {
		m.mu.Unlock()
		return
	}
	if !m.lastDropped.IsZero() {
		// Activity arrived after the last reset; the window runs from it
		m.armFromLocked(m.lastDropped)
		m.mu.Unlock()
		return
	}
	m.state = Warning
	m.warnTimer = nil
	m.secondsRemaining = m.cfg.Countdown
	secs := m.secondsRemaining
	m.tickTimer = m.clock.AfterFunc(time.Second, func() { m.tick(gen) })
	cb := m.onWarning
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"event":      "SESSION_WARNING",
		"expires_in": secs,
	}).Info("session inactivity warning")

	if cb != nil {
		cb(secs)
	}
}

func (m *Manager) tick(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != Warning {
		m.mu.Unlock()
		return
	}
	if m.secondsRemaining > 0 {
		m.secondsRemaining--
	}
	secs := m.secondsRemaining
	if secs > 0 {
		m.tickTimer = m.clock.AfterFunc(time.Second, func() { m.tick(gen) })
	} else {
		// Countdown stops at zero; the hard timer ends the session
		m.tickTimer = nil
	}
	cb := m.onTick
	m.mu.Unlock()

	if cb != nil {
		cb(secs)
	}
}

func (m *Manager) fireExpire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || (m.state != Armed && m.state != Warning) {
		m.mu.Unlock()
		return
	}
	if m.state == Armed && !m.lastDropped.IsZero() {
		m.armFromLocked(m.lastDropped)
		m.mu.Unlock()
		return
	}
	// The last countdown second is due with the hard timer; show it first
	finalTick := m.state == Warning && m.secondsRemaining > 0
	m.expireTimer = nil
	m.cancelLocked()
	m.gen++
	expiredGen := m.gen
	m.state = Expired
	m.secondsRemaining = 0
	m.deadline = time.Time{}
	cb := m.onExpired
	onTick := m.onTick
	m.mu.Unlock()

	if finalTick && onTick != nil {
		onTick(0)
	}

	m.log.WithField("event", "SESSION_EXPIRED").Warn("session expired after inactivity")

	if cb != nil {
		cb()
	}

	m.mu.Lock()
	// The callback normally disarms; re-arming from inside it is honored
	if m.gen == expiredGen && m.state == Expired {
		m.state = Disarmed
	}
	m.mu.Unlock()
}
