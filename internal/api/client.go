// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Configuration constants for the backend client.
const (
	// DefaultBaseURL is the local development backend.
	DefaultBaseURL = "http://localhost:3000"

	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of extra attempts for a failed GET.
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the first backoff delay.
	DefaultRetryDelay = 300 * time.Millisecond

	// retryMaxDelay caps the backoff.
	retryMaxDelay = 5 * time.Second

	// MaxResponseSize is the largest response body accepted.
	MaxResponseSize = 4 * 1024 * 1024

	// RequestIDHeader carries the per-request id.
	RequestIDHeader = "X-Request-ID"

	userAgent = "onboard/1.0"
)

// sharedTransport pools connections across clients.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// TokenSource supplies the bearer token for the current session. An empty
// token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Config holds client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// Client talks to the onboarding backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	log        logrus.FieldLogger
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a client. tokens may be nil for unauthenticated use.
func NewClient(cfg Config, tokens TokenSource, log logrus.FieldLogger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Transport: sharedTransport, Timeout: cfg.Timeout},
		tokens:     tokens,
		log:        log,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// =============================================================================
// REQUESTS
// =============================================================================

// Do sends one JSON request. body is encoded when non-nil; the response is
// decoded into out when out is non-nil. GET requests are retried on server
// and network failures; nothing else is retried.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	attempts := uint(1)
	if method == http.MethodGet {
		attempts += uint(c.maxRetries)
	}

	var respBody []byte
	err := retry.Do(
		func() error {
			b, err := c.send(ctx, method, path, payload)
			if err != nil {
				return err
			}
			respBody = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(retryMaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.log.WithFields(logrus.Fields{
				"method":  method,
				"path":    path,
				"attempt": n + 1,
			}).WithError(err).Warn("retrying request")
		}),
	)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// send performs a single attempt and returns the response body of a 2xx.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	reqID := c.setHeaders(req, payload != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
		"request_id":  reqID,
	}).Debug("backend request")

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, classify(resp.StatusCode, body)
}

func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL.String() + path
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) string {
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(RequestIDHeader, reqID)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return reqID
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrNetworkUnreachable, err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// backendError is the error body the backend sends.
type backendError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// classify maps a non-2xx status to the error taxonomy.
func classify(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status >= 500:
		return fmt.Errorf("%w (HTTP %d)", ErrServer, status)
	}

	var be backendError
	msg := ""
	if err := json.Unmarshal(body, &be); err == nil {
		msg = be.Message
		if msg == "" {
			msg = be.Error
		}
	}
	return &ClientError{Status: status, Message: msg}
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrServer) || errors.Is(err, ErrNetworkUnreachable)
}
