// Package client is the state layer a front end drives: an HTTP client for
// the task API plus the session and task list state built on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/VyacheslavBabenko/beejee/models"
)

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
	Errors  []models.FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// message returns the server-provided message of err, or fallback.
func message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  []models.FieldError `json:"errors"`
}

// ListQuery selects a page of tasks. Zero fields are left to the server
// defaults.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Page != 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit != 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	return v
}

// API talks to the task server. The bearer token is read from tokens on
// every request.
type API struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// NewAPI creates a client for the server at baseURL (without the /api suffix).
func NewAPI(baseURL string, tokens TokenStore) *API {
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
	}
}

func (a *API) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	var res models.LoginResult
	body := models.LoginRequest{Username: username, Password: password}
	if err := a.do(ctx, http.MethodPost, "/auth/login", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *API) Verify(ctx context.Context) (*models.VerifyResult, error) {
	var res models.VerifyResult
	if err := a.do(ctx, http.MethodGet, "/auth/verify", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (a *API) ListTasks(ctx context.Context, q ListQuery) (*models.TaskPage, error) {
	var page models.TaskPage
	if err := a.do(ctx, http.MethodGet, "/tasks", q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *API) CreateTask(ctx context.Context, req models.CreateTaskRequest) (int64, error) {
	var created models.CreatedTask
	if err := a.do(ctx, http.MethodPost, "/tasks", nil, req, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (a *API) UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) error {
	return a.do(ctx, http.MethodPut, "/tasks/"+strconv.FormatInt(id, 10), nil, req, nil)
}

func (a *API) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	if err := a.do(ctx, http.MethodGet, "/tasks/"+strconv.FormatInt(id, 10), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// do sends one request and decodes the envelope's data into out.
func (a *API) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := a.tokens.Load()
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
