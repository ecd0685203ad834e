// Package client talks to a running control panel over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/initializ/edgard/installer"
)

// APIError is a non-2xx response from the control panel.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("control panel returned %d: %s", e.StatusCode, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return msg
}

// StartRequest mirrors the /api/start body. Nil fields use the server defaults.
type StartRequest struct {
	InstallPath    *string `json:"installPath,omitempty"`
	AutoUpdate     *bool   `json:"autoUpdate,omitempty"`
	InstallAdguard *bool   `json:"installAdguard,omitempty"`
}

// Health is the /api/health payload.
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Client is a control panel API client.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the panel at baseURL, e.g. "http://localhost:5000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Status fetches the current installation status.
func (c *Client) Status(ctx context.Context) (installer.Status, error) {
	var st installer.Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &st)
	return st, err
}

// Start asks the panel to begin an installation.
func (c *Client) Start(ctx context.Context, req StartRequest) error {
	return c.do(ctx, http.MethodPost, "/api/start", req, nil)
}

// Pause toggles pause and returns the new paused state.
func (c *Client) Pause(ctx context.Context) (bool, error) {
	var resp struct {
		Paused bool `json:"paused"`
	}
	err := c.do(ctx, http.MethodPost, "/api/pause", nil, &resp)
	return resp.Paused, err
}

// Health checks that the panel is up.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &h)
	return h, err
}

// History lists at most limit finished runs, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]installer.RunSummary, error) {
	var runs []installer.RunSummary
	err := c.do(ctx, http.MethodGet, "/api/history?limit="+strconv.Itoa(limit), nil, &runs)
	return runs, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		var payload struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
