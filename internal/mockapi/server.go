// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mockapi is an in-process onboarding backend with seeded data.
//
// It serves the same REST surface as the real backend and is used by tests
// and by the mock-server command for demos. Tokens are HS256 JWTs signed
// with a per-server key; revoked or expired tokens get a 401.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/morganforge/onboard-tui/internal/api"
)

// DefaultTokenTTL is the lifetime of issued tokens.
const DefaultTokenTTL = 8 * time.Hour

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "onboard123"

type user struct {
	userName   string
	password   string
	role       string
	employeeID int
}

type failure struct {
	status    int
	remaining int
}

// Server is the mock backend.
type Server struct {
	mu  sync.Mutex
	log logrus.FieldLogger
	now func() time.Time
	ttl time.Duration
	key []byte

	users     map[string]*user
	employees map[int]*api.Employee
	tasks     map[int][]*api.Task
	comments  map[int][]api.Comment
	teams     map[int]string
	managers  map[int][]int
	catalog   []api.TaskOption
	revoked   map[string]bool
	nextTask  int
	nextNote  int

	failures map[string]*failure
	hits     map[string]int

	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.ttl = d }
}

// New creates a seeded server.
func New(log logrus.FieldLogger, opts ...Option) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	s := &Server{
		log:      log,
		now:      time.Now,
		ttl:      DefaultTokenTTL,
		key:      []byte(uuid.NewString()),
		revoked:  map[string]bool{},
		failures: map[string]*failure{},
		hits:     map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed()
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.WithField("addr", ln.Addr().String()).Info("mock backend listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// TOKENS
// =============================================================================

// IssueToken returns a valid token for a seeded user.
func (s *Server) IssueToken(userName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(userName)]
	if !ok {
		return "", fmt.Errorf("unknown user %q", userName)
	}
	return s.issueLocked(u)
}

func (s *Server) issueLocked(u *user) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  u.userName,
		"role": u.role,
		"eid":  u.employeeID,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"jti":  uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// RevokeToken makes token fail with 401 from now on.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// authenticate returns the user behind a bearer token.
func (s *Server) authenticate(r *http.Request) (*user, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[token] {
		return nil, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, false
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, false
	}
	u, ok := s.users[sub]
	return u, ok
}

// =============================================================================
// TEST HOOKS
// =============================================================================

// FailNext makes the next count requests whose path starts with prefix
// answer with status.
func (s *Server) FailNext(prefix string, status, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[prefix] = &failure{status: status, remaining: count}
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// injectFailure counts the request and answers it with an injected
// failure when one is pending.
func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		status := 0
		for prefix, f := range s.failures {
			if strings.HasPrefix(r.URL.Path, prefix) && f.remaining > 0 {
				f.remaining--
				status = f.status
				break
			}
		}
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}
