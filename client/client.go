package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultMaxReadAttempts = 3
	defaultBackoffBase     = 250 * time.Millisecond
)

// Client talks to the ProfiRadce API and keeps the shared Cache consistent.
// Reads retry transiently on network and 5xx errors with exponential
// backoff; mutations are sent exactly once and surface their failure to the
// caller.
type Client struct {
	baseURL string
	token   string

	httpClient *http.Client
	cache      *Cache

	maxReadAttempts int
	backoffBase     time.Duration
	sleep           func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithReadRetries bounds the transient retry loop for reads.
func WithReadRetries(attempts int, backoffBase time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxReadAttempts = attempts
		}
		c.backoffBase = backoffBase
	}
}

// New creates a Client against baseURL with a fresh cache.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         baseURL,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		cache:           NewCache(),
		maxReadAttempts: defaultMaxReadAttempts,
		backoffBase:     defaultBackoffBase,
		sleep:           time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache exposes the client's cache, mainly so views can subscribe to keys.
func (c *Client) Cache() *Cache { return c.cache }

// SetToken swaps the session token after login or refresh.
func (c *Client) SetToken(token string) { c.token = token }

// envelope matches the server's standard response wrapper.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// get fetches path, retrying on transient failure, and unmarshals the
// envelope's data into out.
func (c *Client) get(path string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt < c.maxReadAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(c.backoffBase << (attempt - 1))
		}
		lastErr = c.do(http.MethodGet, path, nil, out)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// do issues a single request. Mutations go through here directly; there is
// no retry on this path.
func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: ErrorKindUnknown, Message: err.Error(), cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: ErrorKindUnknown, Message: err.Error(), cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 400 {
				return statusError(resp.StatusCode, "")
			}
			return &Error{Kind: ErrorKindUnknown, Message: fmt.Sprintf("malformed response: %v", err), cause: err}
		}
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Kind: ErrorKindUnknown, Message: fmt.Sprintf("malformed response data: %v", err), cause: err}
		}
	}
	return nil
}
