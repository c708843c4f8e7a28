// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

var (
	// ErrInvalidCredentials indicates the backend rejected a login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indicates the session token was rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("server error")

	// ErrNetworkUnreachable indicates no response was received.
	ErrNetworkUnreachable = errors.New("network unreachable")
)

// ClientError is a 4xx response other than 401.
type ClientError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request rejected (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request rejected (HTTP %d)", e.Status)
}

// ValidationError is a required field left empty. It is raised before any
// request is sent.
type ValidationError struct {
	Field string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Required returns a ValidationError for the first empty value, checked in
// pair order (field, value, field, value, ...).
func Required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return &ValidationError{Field: pairs[i]}
		}
	}
	return nil
}

// IsUnauthorized reports whether err means the session is no longer valid.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// =============================================================================
// USER MESSAGES
// =============================================================================

// User-facing texts.
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgSessionExpired     = "Your session has expired. Please sign in again."
	MsgServerError        = "Server error. Please try again later."
	MsgNoResponse         = "No response from server. Please check your connection."
	MsgClientError        = "An unexpected error occurred"
	MsgUnexpected         = "Unexpected error occurred. Please try again."
)

// UserMessage returns the text shown to the user for err, or "" for nil.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var cerr *ClientError
	if errors.As(err, &cerr) {
		if cerr.Message != "" {
			return cerr.Message
		}
		return MsgClientError
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, ErrUnauthorized):
		return MsgSessionExpired
	case errors.Is(err, ErrServer):
		return MsgServerError
	case errors.Is(err, ErrNetworkUnreachable), errors.Is(err, context.DeadlineExceeded):
		return MsgNoResponse
	default:
		return MsgUnexpected
	}
}
