package clubio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// Client is the sole path by which the application reaches the backend.
// Construct one at startup and inject it; there is no package-level
// singleton. The bearer token is read from the TokenStore at request time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     Logger
	observer   RequestObserver
	retry      *RetryPolicy
	debug      bool
}

type ClientOption func(*Client)

func WithLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver wires request telemetry, e.g. the prometheus collector in
// the metrics package.
func WithObserver(obs RequestObserver) ClientOption {
	return func(c *Client) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// WithRetryPolicy enables bounded retries for idempotent GET operations.
// Mutations and the credential exchange are never retried.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) {
		p := policy
		c.retry = &p
	}
}

// NewClient returns a Client bound to the configured base address.
func NewClient(cfg Config, tokens TokenStore, opts ...ClientOption) *Client {
	timeout := 30 * time.Second
	if cfg.GetRequestTimeout() > 0 {
		timeout = time.Duration(cfg.GetRequestTimeout()) * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.GetBaseURL(), "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     defLogger{},
		observer:   noopObserver{},
		debug:      cfg.GetDebug(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// TokenStore exposes the credential store the client was built with.
func (c *Client) TokenStore() TokenStore {
	return c.tokens
}

type requestOptions struct {
	method      string
	query       url.Values
	headers     map[string]string
	body        []byte
	contentType string
	idempotent  bool
}

func get() requestOptions {
	return requestOptions{method: http.MethodGet, idempotent: true}
}

func del() requestOptions {
	return requestOptions{method: http.MethodDelete}
}

func postJSON(payload any) (requestOptions, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return requestOptions{}, err
	}
	return requestOptions{method: http.MethodPost, body: body, contentType: "application/json"}, nil
}

func putJSON(payload any) (requestOptions, error) {
	opts, err := postJSON(payload)
	opts.method = http.MethodPut
	return opts, err
}

func postForm(form url.Values) requestOptions {
	return requestOptions{
		method:      http.MethodPost,
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}
}

// request performs a call and decodes the success body into T. Every
// failure path resolves to a Result error; it never returns a Go error.
func request[T any](ctx context.Context, c *Client, endpoint string, opts requestOptions) Result[T] {
	body, errMsg := c.do(ctx, endpoint, opts)
	if errMsg != "" {
		return Fail[T](errMsg)
	}

	var payload T
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("undecodable success body", "endpoint", endpoint, "error", err)
		return Fail[T](msgInvalidBody)
	}

	if c.debug {
		c.logger.Debug("%s %s -> %s", opts.method, endpoint, print.MaybePrettyJSON(payload))
	}

	return Ok(payload)
}

// rawRequest performs a call and returns the body verbatim. Used by the
// CSV bulk upload, whose result is a file and not JSON.
func rawRequest(ctx context.Context, c *Client, endpoint string, opts requestOptions) Result[[]byte] {
	body, errMsg := c.do(ctx, endpoint, opts)
	if errMsg != "" {
		return Fail[[]byte](errMsg)
	}
	return Ok(body)
}

// do issues the HTTP request and normalizes every failure into an error
// string. A non-empty second return value means the body is not usable.
func (c *Client) do(ctx context.Context, endpoint string, opts requestOptions) ([]byte, string) {
	target := c.baseURL + endpoint
	if len(opts.query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		target += sep + opts.query.Encode()
	}

	attempts := 1
	if opts.idempotent && c.retry != nil {
		attempts = c.retry.MaxAttempts
	}

	var lastErr string
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.observer.RecordRetry(endpoint)
			if !sleepBackoff(ctx, c.retry.Backoff(attempt-1)) {
				break
			}
		}

		body, errMsg, retryable := c.doOnce(ctx, target, endpoint, opts)
		if errMsg == "" {
			return body, ""
		}

		lastErr = errMsg
		if !retryable || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, target, endpoint string, opts requestOptions) (body []byte, errMsg string, retryable bool) {
	var reader io.Reader
	if len(opts.body) > 0 {
		reader = bytes.NewReader(opts.body)
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, target, reader)
	if err != nil {
		return nil, failureMessage(err), false
	}

	contentType := opts.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(HeaderRequestID, uuid.NewString())

	for key, val := range opts.headers {
		req.Header.Set(key, val)
	}

	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.RecordTransportFailure(opts.method, endpoint)
		c.logger.Error("transport failure", "endpoint", endpoint, "error", err)
		return nil, failureMessage(err), true
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	c.observer.RecordRequest(opts.method, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorBodyMessage(raw, resp.StatusCode), retryableStatus(resp.StatusCode)
	}

	if readErr != nil {
		c.logger.Error("unable to read response body", "endpoint", endpoint, "error", readErr)
		return nil, msgInvalidBody, false
	}

	return raw, "", false
}

// errorBodyMessage extracts the backend's detail field from a structured
// error body, falling back to a generic status message.
func errorBodyMessage(body []byte, status int) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return httpStatusMessage(status)
}

func failureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return msgUnknownError
	}
	return err.Error()
}

// sleepBackoff waits for the backoff window, returning false if the
// context is cancelled first.
func sleepBackoff(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
