// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP gateway to the onboarding backend.
//
// Every request carries the bearer token of the current session and a
// request id. Failures are classified into a small taxonomy:
//
//   - ErrInvalidCredentials: 401 on login
//   - ErrUnauthorized: 401 anywhere else
//   - ErrServer: any 5xx
//   - ErrNetworkUnreachable: no response received
//   - *ClientError: any other 4xx, carrying the backend's message
//   - *ValidationError: a required field was empty; no request was sent
//
// The gateway never ends the session itself. Callers that see
// ErrUnauthorized log out and return to the entry view.
//
// Idempotent GETs are retried on ErrServer and ErrNetworkUnreachable.
package api
