// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sessionclock terminates idle sessions.
//
// A Manager is a small state machine:
//
//	Disarmed --Arm--> Armed --warning timer--> Warning --hard timer--> Expired --> Disarmed
//	             ^        |                       |
//	             +--------+---- Activity/Extend --+
//
// The warning timer and the hard-logout timer are independent. The
// countdown shown during Warning is display only; the hard timer alone
// decides when the session ends.
//
// Every scheduled callback is tagged with the generation it was armed
// under. Any transition bumps the generation, so a callback that fires
// after a reset is dropped and the last committed transition wins.
//
// Time comes from a Clock. Production code uses RealClock; tests drive a
// ManualClock and never wait on the wall clock.
//
//	clk := sessionclock.NewManualClock(time.Now())
//	m := sessionclock.New(clk, sessionclock.DefaultConfig(), logger)
//	m.SetExpiredCallback(func() { controller.Logout(ctx) })
//	m.Arm()
//	clk.Advance(10 * time.Minute) // expired callback runs once
package sessionclock
