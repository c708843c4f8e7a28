// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/onboard-tui/internal/auth"
)

// Sender delivers messages into a running program. *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// WarningSource is the part of the session clock the bridge listens to.
type WarningSource interface {
	SetWarningCallbacks(onWarning, onTick func(seconds int), onCleared func())
}

// LogoutSource is the part of the auth controller the bridge listens to.
type LogoutSource interface {
	OnLogout(fn func(auth.Reason))
}

// Bridge turns session callbacks into Bubble Tea messages. Posting never
// blocks, so callbacks may fire from inside Update; messages keep their
// posting order.
type Bridge struct {
	mu     sync.Mutex
	queue  []tea.Msg
	notify chan struct{}
}

// NewBridge creates an empty Bridge.
func NewBridge() *Bridge {
	return &Bridge{notify: make(chan struct{}, 1)}
}

// Attach registers the bridge's callbacks on the clock and the controller.
func (b *Bridge) Attach(clock WarningSource, ctrl LogoutSource) {
	clock.SetWarningCallbacks(
		func(seconds int) { b.Post(WarningMsg{Seconds: seconds}) },
		func(seconds int) { b.Post(CountdownMsg{Seconds: seconds}) },
		func() { b.Post(WarningClearedMsg{}) },
	)
	ctrl.OnLogout(func(r auth.Reason) { b.Post(LoggedOutMsg{Reason: r}) })
}

// Post queues msg for delivery.
func (b *Bridge) Post(msg tea.Msg) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Run forwards queued messages to s until ctx is done.
func (b *Bridge) Run(ctx context.Context, s Sender) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.notify:
			b.flush(s)
		}
	}
}

func (b *Bridge) flush(s Sender) {
	b.mu.Lock()
	batch := b.queue
	b.queue = nil
	b.mu.Unlock()

	for _, msg := range batch {
		s.Send(msg)
	}
}
