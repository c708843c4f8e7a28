// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// KEYS AND RECORD
// =============================================================================

// Storage keys. These match the keys the web client kept in local and
// session storage, so exported stores stay readable by either client.
const (
	KeyToken        = "token"
	KeyRole         = "role"
	KeyUserName     = "userName"
	KeyEmployeeID   = "employeeId"
	KeyEmployeeName = "employeeName"
)

// ErrCorrupt indicates a tier's backing data could not be decoded.
var ErrCorrupt = errors.New("credential store corrupt")

// Record is the raw credential group as stored. Values are kept as strings;
// typing and validation happen in the auth controller.
type Record struct {
	Token        string
	Role         string
	UserName     string
	EmployeeID   string
	EmployeeName string
}

// Complete reports whether every required key is present. EmployeeName is
// optional.
func (r Record) Complete() bool {
	return r.Token != "" && r.Role != "" && r.UserName != "" && r.EmployeeID != ""
}

// Values returns the record as a key/value map, omitting empty values.
func (r Record) Values() map[string]string {
	m := make(map[string]string, 5)
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put(KeyToken, r.Token)
	put(KeyRole, r.Role)
	put(KeyUserName, r.UserName)
	put(KeyEmployeeID, r.EmployeeID)
	put(KeyEmployeeName, r.EmployeeName)
	return m
}

// RecordFromValues builds a Record from a key/value map. Unknown keys are
// ignored.
func RecordFromValues(m map[string]string) Record {
	return Record{
		Token:        m[KeyToken],
		Role:         m[KeyRole],
		UserName:     m[KeyUserName],
		EmployeeID:   m[KeyEmployeeID],
		EmployeeName: m[KeyEmployeeName],
	}
}

// =============================================================================
// TIER
// =============================================================================

// Tier is one durable key/value area.
type Tier interface {
	// Name identifies the tier in logs ("persistent", "session").
	Name() string

	// Load returns every key held by the tier. An empty tier returns an
	// empty map and no error.
	Load(ctx context.Context) (map[string]string, error)

	// Replace atomically replaces the tier's entire content with values.
	Replace(ctx context.Context, values map[string]string) error

	// Clear removes everything held by the tier.
	Clear(ctx context.Context) error
}

// =============================================================================
// STORE
// =============================================================================

// Kind selects a tier.
type Kind int

const (
	// KindNone means neither tier.
	KindNone Kind = iota
	// KindPersistent is the long-lived tier.
	KindPersistent
	// KindSession is the login-session tier.
	KindSession
)

// String returns the tier name.
func (k Kind) String() string {
	switch k {
	case KindPersistent:
		return "persistent"
	case KindSession:
		return "session"
	default:
		return "none"
	}
}

// Store pairs the two tiers.
type Store struct {
	persistent Tier
	session    Tier
}

// New creates a Store over the given tiers.
func New(persistent, session Tier) *Store {
	return &Store{persistent: persistent, session: session}
}

// NewInMemory creates a Store whose tiers both live in memory.
func NewInMemory() *Store {
	return New(NewMemoryTier("persistent"), NewMemoryTier("session"))
}

// Tier returns the tier for k, or nil.
func (s *Store) Tier(k Kind) Tier {
	switch k {
	case KindPersistent:
		return s.persistent
	case KindSession:
		return s.session
	default:
		return nil
	}
}

// Write stores rec in the tier selected by k and clears the other tier, so
// no split state survives a login.
func (s *Store) Write(ctx context.Context, k Kind, rec Record) error {
	target, other := s.persistent, s.session
	if k == KindSession {
		target, other = s.session, s.persistent
	} else if k != KindPersistent {
		return fmt.Errorf("credstore: cannot write to tier %s", k)
	}

	if err := other.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear %s tier: %w", other.Name(), err)
	}
	if err := target.Replace(ctx, rec.Values()); err != nil {
		return fmt.Errorf("failed to write %s tier: %w", target.Name(), err)
	}
	return nil
}

// Read returns the first complete record, checking the persistent tier
// before the session tier. A record is read from a single tier; fields are
// never mixed across tiers. Tiers that fail to load are skipped and their
// errors returned alongside.
func (s *Store) Read(ctx context.Context) (Record, Kind, error) {
	var errs []error
	for _, k := range []Kind{KindPersistent, KindSession} {
		t := s.Tier(k)
		values, err := t.Load(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s tier: %w", t.Name(), err))
			continue
		}
		rec := RecordFromValues(values)
		if rec.Complete() {
			return rec, k, errors.Join(errs...)
		}
	}
	return Record{}, KindNone, errors.Join(errs...)
}

// Wipe clears both tiers entirely. Both tiers are attempted even if the
// first fails.
func (s *Store) Wipe(ctx context.Context) error {
	var errs []error
	if err := s.persistent.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s tier: %w", s.persistent.Name(), err))
	}
	if err := s.session.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s tier: %w", s.session.Name(), err))
	}
	return errors.Join(errs...)
}
