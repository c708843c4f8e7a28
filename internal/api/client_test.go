// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/onboard-tui/internal/api"
	"github.com/morganforge/onboard-tui/internal/mockapi"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newClient(t *testing.T, baseURL string, tokens api.TokenSource) *api.Client {
	t.Helper()
	c, err := api.NewClient(api.Config{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, tokens, nil)
	require.NoError(t, err)
	return c
}

func newMockClient(t *testing.T, userName string) (*api.Client, *mockapi.Server) {
	t.Helper()
	backend := mockapi.New(nil)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	var tokens api.TokenSource
	if userName != "" {
		tok, err := backend.IssueToken(userName)
		require.NoError(t, err)
		tokens = staticToken(tok)
	}
	return newClient(t, srv.URL, tokens), backend
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	_, err := api.NewClient(api.Config{BaseURL: "ftp://example.com"}, nil, nil)
	assert.Error(t, err)

	c, err := api.NewClient(api.Config{BaseURL: "http://localhost:3000/"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", c.BaseURL())
}

// =============================================================================
// HEADERS
// =============================================================================

func TestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, staticToken("abc"))
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/x", map[string]string{"a": "b"}, nil))
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Len(t, got.Get(api.RequestIDHeader), 36)

	c = newClient(t, srv.URL, staticToken(""))
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/x", nil, nil))
	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get("Content-Type"))
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestUnauthorizedOnEmployeeTasks(t *testing.T) {
	c, _ := newMockClient(t, "")
	_, err := c.EmployeeTasks(context.Background(), 5)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, api.MsgSessionExpired, api.UserMessage(err))
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{http.StatusUnauthorized, `{}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, api.ErrUnauthorized)
		}},
		{http.StatusInternalServerError, `oops`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, api.ErrServer)
			assert.Equal(t, api.MsgServerError, api.UserMessage(err))
		}},
		{http.StatusBadRequest, `{"message":"Due date must be in the future"}`, func(t *testing.T, err error) {
			var cerr *api.ClientError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, http.StatusBadRequest, cerr.Status)
			assert.Equal(t, "Due date must be in the future", api.UserMessage(err))
		}},
		{http.StatusNotFound, `not json`, func(t *testing.T, err error) {
			var cerr *api.ClientError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, api.MsgClientError, api.UserMessage(err))
		}},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := newClient(t, srv.URL, nil)
			tt.check(t, c.Do(context.Background(), http.MethodPost, "/x", nil, nil))
		})
	}
}

func TestNetworkUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, nil)
	err := c.Do(context.Background(), http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, api.ErrNetworkUnreachable)
	assert.Equal(t, api.MsgNoResponse, api.UserMessage(err))
}

func TestLoginInvalidCredentials(t *testing.T) {
	c, _ := newMockClient(t, "")
	_, err := c.Login(context.Background(), "asha", "wrong")
	assert.ErrorIs(t, err, api.ErrInvalidCredentials)
	assert.Equal(t, api.MsgInvalidCredentials, api.UserMessage(err))
}

func TestLoginValidation(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()
	c := newClient(t, srv.URL, nil)

	_, err := c.Login(context.Background(), "  ", "pw")
	var verr *api.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Username", verr.Field)
	assert.Equal(t, "Username is required", api.UserMessage(err))

	_, err = c.Login(context.Background(), "asha", "")
	assert.Equal(t, "Password is required", api.UserMessage(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestUserMessageFallbacks(t *testing.T) {
	assert.Empty(t, api.UserMessage(nil))
	assert.Equal(t, api.MsgUnexpected, api.UserMessage(errors.New("boom")))
	assert.Equal(t, api.MsgNoResponse, api.UserMessage(context.DeadlineExceeded))
}

// =============================================================================
// RETRIES
// =============================================================================

func TestGetRetriedOnServerError(t *testing.T) {
	c, backend := newMockClient(t, mockapi.EmployeeUser)
	backend.FailNext("/employees/5/tasks", http.StatusServiceUnavailable, 2)

	tasks, err := c.EmployeeTasks(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
	assert.Equal(t, 3, backend.Hits("/employees/5/tasks"))
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	c, backend := newMockClient(t, mockapi.EmployeeUser)
	backend.FailNext("/employees/5/tasks", http.StatusBadGateway, 10)

	_, err := c.EmployeeTasks(context.Background(), 5)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, 3, backend.Hits("/employees/5/tasks"))
}

func TestUnauthorizedNotRetried(t *testing.T) {
	c, backend := newMockClient(t, "")
	_, err := c.EmployeeTasks(context.Background(), 5)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, 1, backend.Hits("/employees/5/tasks"))
}

func TestMutationsNotRetried(t *testing.T) {
	c, backend := newMockClient(t, mockapi.EmployeeUser)
	backend.FailNext("/employees/5/tasks/101", http.StatusInternalServerError, 1)

	_, err := c.UpdateTaskStatus(context.Background(), 5, 101, api.StatusComplete)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, 1, backend.Hits("/employees/5/tasks/101"))
}

func TestCancelledContextNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newClient(t, srv.URL, nil)
	err := c.Do(ctx, http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, atomic.LoadInt32(&hits), int32(1))
}

// =============================================================================
// ENDPOINTS
// =============================================================================

func TestEmployeeEndpoints(t *testing.T) {
	ctx := context.Background()
	c, _ := newMockClient(t, mockapi.EmployeeUser)

	emp, err := c.Employee(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", emp.Name)

	task, err := c.Task(ctx, 5, 101)
	require.NoError(t, err)
	assert.Equal(t, "Set up laptop", task.Name)
	assert.Len(t, task.Comments, 2)

	updated, err := c.UpdateTaskStatus(ctx, 5, 101, api.StatusSentForReview)
	require.NoError(t, err)
	assert.Equal(t, api.StatusSentForReview, updated.Status)

	require.NoError(t, c.AddComment(ctx, 5, 101, "ready for review"))
	comments, err := c.TaskComments(ctx, 5, 101)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "ready for review", comments[2].Comment)

	err = c.AddComment(ctx, 5, 101, " ")
	assert.Equal(t, "Comment is required", api.UserMessage(err))
}

func TestProfileEndpoints(t *testing.T) {
	ctx := context.Background()
	c, _ := newMockClient(t, mockapi.EmployeeUser)

	p, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "asha", p.UserName)
	assert.Equal(t, "Platform", p.TeamName)

	phone := "555-9999"
	require.NoError(t, c.UpdateProfile(ctx, api.ProfileUpdate{Phone: &phone}))
	p, err = c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, phone, p.Phone)

	bad := "not-an-email"
	err = c.UpdateProfile(ctx, api.ProfileUpdate{Email: &bad})
	assert.Equal(t, "Invalid email address", api.UserMessage(err))
}

func TestManagerEndpoints(t *testing.T) {
	ctx := context.Background()
	c, _ := newMockClient(t, mockapi.ManagerUser)

	teams, err := c.TeamSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)

	members, err := c.TeamMembers(ctx, teams[0].TeamID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	catalog, err := c.TaskCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 5)

	err = c.AddTask(ctx, api.NewTask{
		TaskID: catalog[3].ID, EmployeeID: 5, DueDate: "2030-02-01", Status: api.StatusNew,
		Priority: "Low", CreatedBy: "ravi", UpdatedBy: "ravi",
	})
	require.NoError(t, err)

	err = c.AddTask(ctx, api.NewTask{EmployeeID: 5, DueDate: "2030-02-01", Status: api.StatusNew})
	assert.Equal(t, "Task is required", api.UserMessage(err))
}

func TestTaskCatalogAcceptsWrappedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"tasks":[{"id":9,"name":"Wrapped"}]}`)
	}))
	defer srv.Close()

	opts, err := newClient(t, srv.URL, nil).TaskCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Wrapped", opts[0].Name)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"New", "In Progress", "Sent for Review", "Complete", "Completed"} {
		assert.True(t, api.ValidStatus(s), s)
	}
	assert.False(t, api.ValidStatus("Done"))
}
