// HTTP client wrapper for the media tracking API
package services

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

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/session"
	"github.com/desertthunder/watchlog/internal/shared"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// Redirector receives the forced navigation on session rejection.
type Redirector interface {
	RedirectToLogin()
}

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client      // transport source; its RoundTripper is wrapped, never mutated
	Session    *session.Manager  // required for authenticated calls
	Navigator  Redirector        // optional
	Logger     *log.Logger
}

// Client provides the request surface used by every service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Manager
	navigator  Redirector
	logger     *log.Logger
}

// NewClient creates a new Client with the bearer and rejection policies installed.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Session == nil {
		opts.Session = session.NewMemoryManager()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	wrapped := *opts.HTTPClient
	wrapped.Transport = newAuthTransport(opts.HTTPClient.Transport, opts.Session)

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &wrapped,
		session:    opts.Session,
		navigator:  opts.Navigator,
		logger:     opts.Logger,
	}
}

// Session returns the session manager the client reads its token from.
func (c *Client) Session() *session.Manager { return c.session }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// APIError is a non-2xx response other than a session rejection.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + shared.Truncate(e.Body, 200)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return shared.ErrItemNotFound
	}
	return shared.ErrAPIRequest
}

// Get performs a GET request to the specified path and returns the raw response.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST request with the given JSON body.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*APIResponse, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Put performs a PUT request with the given JSON body.
func (c *Client) Put(ctx context.Context, path string, body []byte) (*APIResponse, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one request and applies the rejection policy to the response.
//
// Transport errors are returned as-is. 401/403 yield [shared.ErrUnauthorized]; the raw response is still returned.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body []byte) (*APIResponse, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if len(data) > 0 && json.Unmarshal(data, &jsonData) == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.reject(method, path, resp.StatusCode)
		return apiResp, fmt.Errorf("%w: %s %s returned %d", shared.ErrUnauthorized, method, path, resp.StatusCode)
	}

	return apiResp, nil
}

// reject applies the rejection policy: drop the session, then leave protected screens.
func (c *Client) reject(method, path string, status int) {
	c.logger.Warn("session rejected", "method", method, "path", path, "status", status)
	if err := c.session.ClearToken(); err != nil {
		c.logger.Error("failed to clear session", "err", err)
	}
	if c.navigator != nil {
		c.navigator.RedirectToLogin()
	}
}

// DoJSON marshals in (when non-nil), sends the request and decodes a 2xx body into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = data
	}

	resp, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(resp.Body)}
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}
	return nil
}

// IsUnauthorized reports whether err came from a session rejection.
func IsUnauthorized(err error) bool {
	return errors.Is(err, shared.ErrUnauthorized)
}
