package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/layrpay/layrpay-mcp/internal/logger"
)

// UserIDHeader carries the opaque user identity on every backend call.
const UserIDHeader = "x-layrpay-user-id"

// Client issues requests against the LayrPay backend API and normalizes
// every outcome into a Result. It is safe for concurrent use.
type Client struct {
	baseURL           string
	userID            string
	http              *http.Client
	validationTimeout time.Duration
	log               *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithValidationTimeout overrides the wait for an asynchronous
// transaction-validation outcome.
func WithValidationTimeout(d time.Duration) Option {
	return func(c *Client) { c.validationTimeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		userID:            userID,
		http:              &http.Client{},
		validationTimeout: 120 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.ForComponent("api")
	}
	return c
}

// envelope is the backend's standard response shape. Raw preserves the
// full body for pass-through when the envelope does not declare success.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *Error          `json:"error"`
}

// Request performs a single-shot call against the backend. The body is
// sent as JSON only for POST. All transport and protocol failures
// resolve into the returned Result; Request never panics or errors out.
func (c *Client) Request(ctx context.Context, method, path string, body any, query url.Values) Result {
	req, err := c.newRequest(ctx, method, path, body, query)
	if err != nil {
		return failure(CodeNetworkError, "failed to build request: %v", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return failure(CodeNetworkError, "request to %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	return c.decode(resp)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, query url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if method == http.MethodPost && body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set(UserIDHeader, c.userID)
	}
	return req, nil
}

// decode maps an HTTP response onto a Result following the backend
// envelope convention: {success:true, data} unwraps to data, a non-2xx
// status surfaces the envelope's error object or a synthesized
// HTTP_ERROR, and non-JSON bodies are treated as opaque text.
func (c *Client) decode(resp *http.Response) Result {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(CodeNetworkError, "failed to read response body: %v", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	contentType := resp.Header.Get("Content-Type")

	if !strings.Contains(contentType, "application/json") {
		if !ok {
			return failure(CodeHTTPError, "HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		quoted, _ := json.Marshal(string(raw))
		return success(quoted)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if !ok {
			return failure(CodeHTTPError, "HTTP %d", resp.StatusCode)
		}
		return failure(CodeHTTPError, "invalid JSON in response: %v", err)
	}

	if !ok {
		if env.Error != nil && env.Error.Message != "" {
			return Result{Success: false, Err: env.Error}
		}
		return failure(CodeHTTPError, "HTTP %d", resp.StatusCode)
	}

	if env.Success {
		return success(env.Data)
	}

	// A 2xx body without the success flag passes through untouched.
	return success(raw)
}
