// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credstore persists the signed-in user's credentials.
//
// Credentials live in one of two tiers that differ only by lifetime:
//
//   - the persistent tier (SQLite under ~/.onboard) survives restarts and is
//     used when the user asks to be remembered;
//   - the session tier (a JSON file in the per-login runtime directory, or
//     memory) disappears when the OS login session ends.
//
// The credential keys are written as one group and cleared as one group.
// A Store keeps at most one tier populated at a time: writing to one tier
// clears the other.
//
// Only the auth controller talks to this package.
package credstore
