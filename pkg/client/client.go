// Package client is a small SDK over the JSON API for Go front ends
// (CLIs, TUIs, tests). It carries the listing pattern every resource
// screen shares: debounced search input, a paginated store where only
// the latest request wins, and confirm-before-destroy.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client issues authenticated requests against one API base URL.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the per-request timeout. Ignored when a custom HTTP
// client is supplied.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// New creates a Client for the given base URL, e.g.
// "http://127.0.0.1:3000/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Page is one page of a listing as served by the API.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// ValidationError is a 400 response carrying per-field messages.
type ValidationError struct {
	APIError
	Fields map[string][]string `json:"errors"`
}

// FetchPage retrieves one page of the resource at path, filtered by the
// search term. Generic because methods cannot carry type parameters.
func FetchPage[T any](ctx context.Context, c *Client, path string, page int, search string) (Page[T], error) {
	var result Page[T]

	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if search != "" {
		q.Set("search", search)
	}

	u := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}

	body, err := c.do(ctx, http.MethodGet, u)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("decode page: %w", err)
	}
	return result, nil
}

// Delete removes the record with the given id at path.
func (c *Client) Delete(ctx context.Context, path string, id uint) error {
	u := fmt.Sprintf("%s%s/%d", c.baseURL, path, id)
	_, err := c.do(ctx, http.MethodDelete, u)
	return err
}

// do issues the request and returns the body, translating non-2xx
// responses into *APIError or *ValidationError.
func (c *Client) do(ctx context.Context, method, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	return nil, decodeError(resp.StatusCode, body)
}

func decodeError(status int, body []byte) error {
	var ve ValidationError
	if err := json.Unmarshal(body, &ve); err == nil && len(ve.Fields) > 0 {
		ve.Status = status
		if ve.Message == "" {
			ve.Message = http.StatusText(status)
		}
		return &ve
	}

	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
