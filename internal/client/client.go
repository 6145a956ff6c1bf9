// Package client talks to the settings API of a running nexus server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nexus-dash/nexus/internal/dashboard"
)

// SettingsPath is the settings API route.
const SettingsPath = "/api/settings"

const defaultTimeout = 10 * time.Second

// StatusError is returned for every non-2xx answer of the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client is a settings API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the server at baseURL (e.g. "http://localhost:3034").
// A nil httpClient uses one with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Load fetches the current document.
func (c *Client) Load(ctx context.Context) (dashboard.Document, error) {
	var d dashboard.Document
	if err := c.do(ctx, http.MethodGet, nil, &d); err != nil {
		return dashboard.Document{}, err
	}

	return d, nil
}

// Save sends the full document.
func (c *Client) Save(ctx context.Context, d dashboard.Document) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	var resp struct {
		Success bool `json:"success"`
	}

	if err := c.do(ctx, http.MethodPost, data, &resp); err != nil {
		return err
	}

	if !resp.Success {
		return &StatusError{StatusCode: http.StatusOK, Message: "server did not confirm the save"}
	}

	return nil
}

func (c *Client) do(ctx context.Context, method string, body []byte, result any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+SettingsPath, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Error string `json:"error"`
		}

		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}

		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
