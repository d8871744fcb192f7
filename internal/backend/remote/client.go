// Package remote implements the service.Service interface against the
// remote to-do HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"gtodo/internal/config"
	"gtodo/internal/logging"
	"gtodo/internal/service"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

// UserAgent is sent with every request. Set at build time.
var UserAgent = "gtodo/0.1.0"

// Client implements service.Service over HTTP.
type Client struct {
	hc       *http.Client
	basePath string
	log      *logging.Logger
}

// New creates a client for cfg.BaseURL using the shared transport stack.
// The remote service is unauthenticated, so no credentials are attached.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Client, error) {
	hc, _, err := htransport.NewClient(ctx,
		option.WithoutAuthentication(),
		option.WithUserAgent(UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	return NewWithHTTPClient(cfg.APIBase(), hc, logger), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// basePath must end with a slash.
func NewWithHTTPClient(basePath string, hc *http.Client, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{
		hc:       hc,
		basePath: basePath,
		log:      logger,
	}
}

// CreateUser creates the user.
func (c *Client) CreateUser(ctx context.Context, username string) error {
	res, err := c.do(ctx, "create user", http.MethodPost, "users/{username}",
		map[string]string{"username": username}, nil)
	if err != nil {
		return err
	}
	return drain(res)
}

// ListTasks returns the user's todos in server order.
func (c *Client) ListTasks(ctx context.Context, username string) ([]service.Task, error) {
	const op = "list tasks"
	res, err := c.do(ctx, op, http.MethodGet, "users/{username}",
		map[string]string{"username": username}, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var body service.UserTasks
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, &service.NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if body.Todos == nil {
		return []service.Task{}, nil
	}
	return body.Todos, nil
}

// CreateTask creates a not-done task for the user.
func (c *Client) CreateTask(ctx context.Context, username, label string) error {
	res, err := c.do(ctx, "create task", http.MethodPost, "todos/{username}",
		map[string]string{"username": username},
		service.NewTask{Label: label, IsDone: false})
	if err != nil {
		return err
	}
	return drain(res)
}

// DeleteTask deletes a task by ID.
func (c *Client) DeleteTask(ctx context.Context, taskID int) error {
	res, err := c.do(ctx, "delete task", http.MethodDelete, "todos/{id}",
		map[string]string{"id": strconv.Itoa(taskID)}, nil)
	if err != nil {
		return err
	}
	return drain(res)
}

// do builds and sends one request. A non-nil response always has a 2xx
// status; the caller owns its body.
func (c *Client) do(ctx context.Context, op, method, path string, params map[string]string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, &service.NetworkError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}

	urls := googleapi.ResolveRelative(c.basePath, path)
	req, err := http.NewRequestWithContext(ctx, method, urls, body)
	if err != nil {
		return nil, &service.NetworkError{Op: op, Err: err}
	}
	googleapi.Expand(req.URL, params)

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With("op", op, "request_id", requestID)
	log.Debug("sending request", "method", method, "url", req.URL.String())

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, &service.NetworkError{Op: op, Err: err}
	}
	log.Debug("received response", "status", res.StatusCode)

	if err := googleapi.CheckResponse(res); err != nil {
		res.Body.Close()
		se := &service.StatusError{Op: op, Code: res.StatusCode, Err: err}
		if gerr, ok := err.(*googleapi.Error); ok {
			se.Body = gerr.Body
		}
		return nil, se
	}
	return res, nil
}

// drain discards and closes a response body so the connection can be reused.
func drain(res *http.Response) error {
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
