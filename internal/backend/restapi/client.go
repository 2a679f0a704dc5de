// Package restapi implements the service.Service interface against the
// remote task REST API.
package restapi

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

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todo/internal/config"
	"todo/internal/identity"
	"todo/internal/service"
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a task API client that attaches bearer tokens from src.
func New(cfg *config.Config, src oauth2.TokenSource, logger *zap.Logger) *Client {
	// oauth2.NewClient would cache the token; the session's token source
	// already decides freshness and must see sign-outs immediately.
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: src,
			Base:   http.DefaultTransport,
		},
	}
	return NewWithHTTPClient(cfg.APIURL, httpClient, cfg.RequestTimeout, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}
}

// taskJSON is the wire form of a task. The API names the identifier _id;
// id is accepted as well.
type taskJSON struct {
	MongoID     string `json:"_id,omitempty"`
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (t taskJSON) task() service.Task {
	id := t.MongoID
	if id == "" {
		id = t.ID
	}
	return service.Task{ID: id, Title: t.Title, Description: t.Description}
}

type taskBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var items []taskJSON
	if _, err := c.do(ctx, "list", http.MethodGet, "/todos", nil, &items); err != nil {
		return nil, err
	}

	tasks := make([]service.Task, 0, len(items))
	for _, it := range items {
		tasks = append(tasks, it.task())
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, title, description string) (service.Task, error) {
	var created taskJSON
	if _, err := c.do(ctx, "create", http.MethodPost, "/todos", taskBody{title, description}, &created); err != nil {
		return service.Task{}, err
	}
	task := created.task()
	if task.ID == "" {
		return service.Task{}, fmt.Errorf("%w: create: response has no id", service.ErrRequestFailed)
	}
	return task, nil
}

// UpdateTask implements service.Service. The server's copy is returned when
// the response carries one, otherwise the accepted values.
func (c *Client) UpdateTask(ctx context.Context, id, title, description string) (service.Task, error) {
	var updated taskJSON
	decoded, err := c.do(ctx, "update", http.MethodPut, "/todos/"+url.PathEscape(id), taskBody{title, description}, &updated)
	if err != nil {
		return service.Task{}, err
	}

	task := service.Task{ID: id, Title: title, Description: description}
	if decoded {
		if got := updated.task(); got.ID == id {
			task = got
		}
	}
	return task, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
	return err
}

// do sends one request. A non-nil out is filled from a JSON response body;
// decoded reports whether that happened.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (decoded bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("%w: %s: %v", service.ErrRequestFailed, op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", service.ErrRequestFailed, op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("task api request failed",
			zap.String("op", op), zap.String("method", method), zap.String("path", path), zap.Error(err))
		return false, wrapError(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("task api request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if err := checkStatus(op, resp); err != nil {
		return false, err
	}
	if out == nil {
		return false, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", service.ErrRequestFailed, op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		if method == http.MethodPut {
			// an update is accepted by status alone
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: invalid response: %v", service.ErrRequestFailed, op, err)
	}
	return true, nil
}

func checkStatus(op string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", service.ErrUnauthorized, op)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s: status %d", service.ErrRequestFailed, op, resp.StatusCode)
	}
	return nil
}

// wrapError classifies transport errors. Token errors from the session
// become ErrUnauthorized.
func wrapError(op string, err error) error {
	if errors.Is(err, identity.ErrNoSession) || errors.Is(err, identity.ErrSessionExpired) {
		return fmt.Errorf("%w: %s: %v", service.ErrUnauthorized, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: request timed out", service.ErrRequestFailed, op)
	}
	return fmt.Errorf("%w: %s: %v", service.ErrRequestFailed, op, err)
}
