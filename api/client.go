package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lumen-cli/lumen/auth"
	"github.com/lumen-cli/lumen/constant"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/network"
	"github.com/spf13/viper"
)

// Client issues authenticated requests against one media server.
// It holds no playback state; every call is a plain request/response.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() (string, error)
}

// New constructs a client for the configured server URL, authenticating with
// the keyring-stored session token.
func New() *Client {
	return &Client{
		baseURL: strings.TrimRight(viper.GetString(key.ServerURL), "/"),
		http:    network.Client,
		token:   auth.Token,
	}
}

// NewWith constructs a client against an explicit base URL with a fixed token.
// Used by tests and by the login flow before a token is stored.
func NewWith(baseURL string, httpClient *http.Client, token string) *Client {
	if httpClient == nil {
		httpClient = network.Client
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		token:   func() (string, error) { return token, nil },
	}
}

// BaseURL returns the server base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// absolute resolves a server-relative path (e.g. an HLS playlist URL) against the base URL.
func (c *Client) absolute(p string) string {
	if p == "" || strings.Contains(p, "://") {
		return p
	}
	return c.baseURL + "/" + strings.TrimLeft(p, "/")
}

// statusError is returned for any non-2xx server response.
type statusError struct {
	Status int
	Detail string
}

func (e *statusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server responded %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server responded %d", e.Status)
}

// IsNotFound reports whether err is a 404 server response.
func IsNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.Status == http.StatusNotFound
}

// do performs one request and decodes a JSON response body into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := c.token(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil {
		// Drain so the connection can be reused and the downlink meter gets its sample.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readDetail extracts the server's error detail field, if any.
func readDetail(r io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(raw))
}
