// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the signed-in session.
//
// The Controller holds the current token, role and identity in memory,
// commits logins to the credential store, restores the session at startup
// and ends it on explicit logout, inactivity expiry or an authorization
// failure reported by a loader. It is the only writer of the credential
// store and the only driver of the session clock.
//
// Usage:
//
//	ctrl := auth.NewController(store, clock, logger)
//	ctrl.Restore(ctx)
//	if !ctrl.IsAuthenticated() {
//	    // show the login view
//	}
package auth
