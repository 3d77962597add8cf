package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/google/uuid"
)

// DefaultTimeout is the transport timeout when none is configured
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries a per-request id for correlating client and server logs
const RequestIDHeader = "X-Request-ID"

// Response is a fully read HTTP response
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into out. An empty body leaves out untouched.
func (r *Response) Decode(out interface{}) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type observer struct {
	id int
	fn func()
}

// Client talks JSON to the backend. It owns one default header map into which
// the session installs the bearer token, and notifies observers of any 401.
// Requests are sent once: no retries and no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	headers   http.Header
	observers []observer
	nextID    int
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		headers:    headers,
	}
}

// SetHTTPClient replaces the underlying transport client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// BaseURL returns the backend base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAuthToken installs "Authorization: Bearer <token>" as a default header.
// An empty token removes it.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == "" {
		c.headers.Del("Authorization")
		return
	}
	c.headers.Set("Authorization", BearerValue(token))
}

// AuthToken returns the token currently installed as a default header
func (c *Client) AuthToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.TrimPrefix(c.headers.Get("Authorization"), "Bearer ")
}

// BearerValue formats a token for the Authorization header
func BearerValue(token string) string {
	return "Bearer " + token
}

// OnUnauthorized registers fn to be called synchronously whenever a response
// carries status 401. The returned detach func removes it and is safe to call
// more than once.
func (c *Client) OnUnauthorized(fn func()) (detach func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observer{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, o := range c.observers {
				if o.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Send performs one request. body may be nil, a []byte, or any value that is
// marshalled as JSON. headers override the defaults for this call only.
// Non-2xx responses are returned together with an *HTTPError.
func (c *Client) Send(ctx context.Context, method, path string, body interface{}, headers http.Header) (*Response, error) {
	var reader io.Reader
	var size int
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
		size = len(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
		size = len(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.mu.Lock()
	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}
	c.mu.Unlock()
	for k, v := range headers {
		req.Header[k] = append([]string(nil), v...)
	}
	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)

	logger.Debug("HTTP Request",
		logger.F("method", method),
		logger.F("url", url),
		logger.F("bodySize", size),
		logger.F("requestID", requestID),
		logger.F("authorized", req.Header.Get("Authorization") != ""))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("error", err), logger.F("url", url))
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}

	logger.Debug("HTTP Response",
		logger.F("status", resp.StatusCode),
		logger.F("url", url),
		logger.F("size", len(data)),
		logger.F("duration", time.Since(start)),
		logger.F("requestID", requestID))

	out := &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}

	if resp.StatusCode == http.StatusUnauthorized {
		c.notifyUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("HTTP error response",
			logger.F("method", method),
			logger.F("path", path),
			logger.F("status", resp.StatusCode))
		return out, &HTTPError{Method: method, Path: path, Status: resp.StatusCode, Body: data}
	}

	return out, nil
}

// notifyUnauthorized runs observers without holding the lock so that they may
// call back into the client (for example to clear the token).
func (c *Client) notifyUnauthorized() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.observers))
	for _, o := range c.observers {
		fns = append(fns, o.fn)
	}
	c.mu.Unlock()

	logger.Info("Unauthorized response observed", logger.F("observers", len(fns)))
	for _, fn := range fns {
		fn()
	}
}

// Do sends a request and decodes the JSON response into out (which may be nil)
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}, headers http.Header) error {
	resp, err := c.Send(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Get is shorthand for Do with GET
func (c *Client) Get(ctx context.Context, path string, out interface{}, headers http.Header) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, headers)
}

// Post is shorthand for Do with POST
func (c *Client) Post(ctx context.Context, path string, body, out interface{}, headers http.Header) error {
	return c.Do(ctx, http.MethodPost, path, body, out, headers)
}

// Put is shorthand for Do with PUT
func (c *Client) Put(ctx context.Context, path string, body, out interface{}, headers http.Header) error {
	return c.Do(ctx, http.MethodPut, path, body, out, headers)
}

// Delete is shorthand for Do with DELETE
func (c *Client) Delete(ctx context.Context, path string, headers http.Header) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, headers)
}
