// Package http is the fluent, retry-aware client used for outgoing calls to
// the payment gateway and notification webhooks.
//
//	gw := http.NewClient("https://api.razorpay.com/v1", http.WithBasicAuth(id, secret))
//	resp, err := gw.Post("/orders").
//	    Body(map[string]any{"amount": 129900, "currency": "INR"}).
//	    Retry(2, time.Second).
//	    Send(ctx)
//
//	var order GatewayOrder
//	err = resp.Throw()
//	err = resp.JSON(&order)
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	gohttp "net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/vastra/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// ------------------- Client -------------------

// Client carries a base URL and headers shared by every request it builds.
type Client struct {
	baseURL string
	headers map[string]string
	user    string
	pass    string
	timeout time.Duration
	http    *gohttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth sends HTTP basic credentials on every request.
func WithBasicAuth(user, pass string) Option {
	return func(c *Client) { c.user, c.pass = user, pass }
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client. baseURL may be empty when every request uses
// an absolute URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: map[string]string{"Accept": "application/json"},
		timeout: 30 * time.Second,
		http:    &gohttp.Client{Transport: defaultTransport},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default is the shared client for absolute URLs.
var Default = NewClient("")

func (c *Client) Get(path string) *Request    { return c.newRequest(gohttp.MethodGet, path) }
func (c *Client) Post(path string) *Request   { return c.newRequest(gohttp.MethodPost, path) }
func (c *Client) Put(path string) *Request    { return c.newRequest(gohttp.MethodPut, path) }
func (c *Client) Patch(path string) *Request  { return c.newRequest(gohttp.MethodPatch, path) }
func (c *Client) Delete(path string) *Request { return c.newRequest(gohttp.MethodDelete, path) }

func (c *Client) newRequest(method, path string) *Request {
	url := path
	if c.baseURL != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return &Request{
		client:    c,
		method:    method,
		url:       url,
		headers:   headers,
		timeout:   c.timeout,
		retries:   1,
		retryWait: 500 * time.Millisecond,
	}
}

// ------------------- Request -------------------

// Request is a fluent HTTP request builder.
type Request struct {
	client    *Client
	method    string
	url       string
	headers   map[string]string
	body      any
	timeout   time.Duration
	retries   int
	retryWait time.Duration
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Bearer sets the Authorization: Bearer <token> header.
func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Body sets the request body. v is marshalled to JSON unless it is a
// string or []byte.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Timeout sets the per-attempt timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry configures retries on transport errors. n is total attempts, wait
// the initial backoff which doubles each attempt. HTTP error statuses are
// returned as responses and never retried.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.retries = n
	r.retryWait = wait
	return r
}

// ------------------- Send -------------------

// Send executes the request and returns a Response.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < r.retries {
			backoff := time.Duration(float64(r.retryWait) * math.Pow(2, float64(attempt-1)))
			logger.WithCtx(ctx).Warn("http: request failed, retrying",
				"url", r.url, "attempt", attempt, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("http: %s %s failed: %w", r.method, r.url, lastErr)
}

func (r *Request) do(ctx context.Context) (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.client.user != "" {
		req.SetBasicAuth(r.client.user, r.client.pass)
	}

	resp, err := r.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case string:
		return strings.NewReader(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// ------------------- Response -------------------

// Response holds the fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string { return string(r.Raw) }

// StatusError is returned by Throw for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: request failed with status %d: %s", e.StatusCode, e.Body)
}

// Throw returns a *StatusError if the response status is not 2xx.
func (r *Response) Throw() error {
	if r.OK() {
		return nil
	}
	body := string(r.Raw)
	if len(body) > 512 {
		body = body[:512]
	}
	return &StatusError{StatusCode: r.StatusCode, Body: body}
}
