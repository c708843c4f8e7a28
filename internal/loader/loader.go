// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package loader fetches page data for the views.
//
// Each loader reads the signed-in identity from the auth controller, calls
// the gateway and returns display data plus an Outcome. A rejected token
// ends the session and redirects to the entry view; other failures become
// a user message and leave the session alone.
package loader

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/auth"
	"github.com/morganforge/onboard-tui/internal/guard"
)

// DefaultFanOut bounds concurrent requests per page.
const DefaultFanOut = 4

// ErrNotSignedIn is the Outcome error when a loader runs without a session.
var ErrNotSignedIn = errors.New("not signed in")

// Controller is the part of the auth controller loaders use.
type Controller interface {
	Session() auth.Session
	IsAuthenticated() bool
	Login(ctx context.Context, token string, role auth.Role, ident auth.Identity, rememberMe bool) error
	LogoutWithReason(ctx context.Context, reason auth.Reason) error
}

// Outcome tells the page what to do after a load or mutation.
type Outcome struct {
	// Redirect is the path to navigate to, or "".
	Redirect string

	// Message is the user-facing error text, or "".
	Message string

	// Err is the underlying error.
	Err error
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Loader loads page data.
type Loader struct {
	ctrl   Controller
	client *api.Client
	log    logrus.FieldLogger
	now    func() time.Time
	fanOut int
}

// New creates a Loader.
func New(ctrl Controller, client *api.Client, log logrus.FieldLogger) *Loader {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Loader{ctrl: ctrl, client: client, log: log, now: time.Now, fanOut: DefaultFanOut}
}

// SetNow replaces the time source used for overdue checks.
func (l *Loader) SetNow(now func() time.Time) { l.now = now }

// session returns the current session, or an Outcome redirecting to the
// entry view when there is none.
func (l *Loader) session() (auth.Session, Outcome, bool) {
	sess := l.ctrl.Session()
	if !sess.Authenticated() {
		return sess, Outcome{Redirect: guard.PathLogin, Err: ErrNotSignedIn}, false
	}
	return sess, Outcome{}, true
}

// outcome converts err into an Outcome. A 401 logs out first.
func (l *Loader) outcome(ctx context.Context, op string, err error) Outcome {
	if err == nil {
		return Outcome{}
	}
	if api.IsUnauthorized(err) {
		l.log.WithFields(logrus.Fields{
			"event": "SESSION_REJECTED",
			"op":    op,
		}).Warn("backend rejected session token")
		if lerr := l.ctrl.LogoutWithReason(ctx, auth.ReasonUnauthorized); lerr != nil {
			l.log.WithError(lerr).Error("logout after rejected token failed")
		}
		return Outcome{Redirect: guard.PathLogin, Message: api.MsgSessionExpired, Err: err}
	}
	l.log.WithError(err).WithField("op", op).Warn("page load failed")
	return Outcome{Message: api.UserMessage(err), Err: err}
}

// =============================================================================
// LOGIN
// =============================================================================

// Login authenticates against the backend and commits the session. It
// returns the role's home path on success. Empty fields fail validation
// without a request.
func (l *Loader) Login(ctx context.Context, userName, password string, rememberMe bool) (string, Outcome) {
	resp, err := l.client.Login(ctx, userName, password)
	if err != nil {
		return "", Outcome{Message: api.UserMessage(err), Err: err}
	}

	role, err := auth.ParseRole(resp.Role)
	if err != nil {
		l.log.WithError(err).Error("login returned unusable role")
		return "", Outcome{Message: api.MsgClientError, Err: err}
	}
	ident := auth.Identity{
		UserName:     resp.UserName,
		EmployeeID:   resp.EmployeeID,
		EmployeeName: resp.EmployeeName,
	}
	if ident.UserName == "" {
		ident.UserName = userName
	}
	if err := l.ctrl.Login(ctx, resp.Token, role, ident, rememberMe); err != nil {
		return "", Outcome{Message: api.MsgUnexpected, Err: err}
	}
	return guard.Home(role), Outcome{}
}
