// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/config"
	"github.com/morganforge/onboard-tui/internal/loader"
	"github.com/morganforge/onboard-tui/internal/ui/styles"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a missing, rejected or expired session
	ExitAuthError = 4
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = errors.New("not signed in; run 'onboard login' first")

// UsageError reports a malformed command line.
type UsageError struct {
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	if e.Example != "" {
		return fmt.Sprintf("%s\nUsage: %s", e.Reason, e.Example)
	}
	return e.Reason
}

// errUsage creates a UsageError.
func errUsage(reason, example string) error {
	return &UsageError{Reason: reason, Example: example}
}

// CommandError is a failed backend operation. Message is the user-facing
// text; Err keeps the cause for exit-code mapping.
type CommandError struct {
	Command string
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return e.Message
}

func (e *CommandError) Unwrap() error { return e.Err }

// outcomeError converts a failed loader outcome.
func outcomeError(command string, o loader.Outcome) error {
	if o.OK() {
		return nil
	}
	switch {
	case errors.Is(o.Err, loader.ErrNotSignedIn):
		return ErrNotSignedIn
	case api.IsUnauthorized(o.Err):
		return &CommandError{
			Command: command,
			Message: o.Message + " Run 'onboard login' to sign in again.",
			Err:     o.Err,
		}
	}
	return &CommandError{Command: command, Message: o.Message, Err: o.Err}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w in a consistent format. In JSON mode the
// error is wrapped in a JSONResponse.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		NewJSONErrorResponse(command, err).Write(w)
		return
	}
	fmt.Fprintln(w, styles.RenderError(err.Error()))
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	var cfgErr config.ValidateErrors
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	var clientErr *api.ClientError
	if errors.As(err, &clientErr) && clientErr.Status == 404 {
		return ExitNotFoundError
	}

	switch {
	case errors.Is(err, ErrNotSignedIn),
		errors.Is(err, api.ErrInvalidCredentials),
		api.IsUnauthorized(err):
		return ExitAuthError
	case errors.Is(err, api.ErrNetworkUnreachable):
		return ExitNetworkError
	}
	return ExitGeneralError
}
