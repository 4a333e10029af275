package netatmo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Netatmo API base URL.
	DefaultBaseURL = "https://api.netatmo.com/"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// API endpoints, relative to the base URL.
const (
	homesDataEndpoint          = "api/homesdata"
	homeStatusEndpoint         = "api/homestatus"
	setStateEndpoint           = "api/setstate"
	setRoomThermPointEndpoint  = "api/setroomthermpoint"
	switchHomeScheduleEndpoint = "api/switchhomeschedule"
	stationsDataEndpoint       = "api/getstationsdata"
)

// RetryConfig configures automatic retry behavior for transient failures.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 3).
	MaxRetries int
	// InitialBackoff is the initial backoff duration (default: 100ms).
	InitialBackoff time.Duration
	// MaxBackoff is the maximum backoff duration (default: 5s).
	MaxBackoff time.Duration
	// Multiplier is the backoff multiplier (default: 2.0).
	Multiplier float64
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
	}
}

// Client is a Netatmo API client. It fetches a valid bearer token from its
// TokenSource before every request.
type Client struct {
	baseURL     string
	userPrefix  string
	auth        TokenSource
	httpClient  *http.Client
	timeout     time.Duration
	retryConfig *RetryConfig
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL, redirecting all endpoint construction
// to a compatible third-party backend.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithUserPrefix sets the multi-tenant API prefix inserted before every
// endpoint path.
func WithUserPrefix(prefix string) Option {
	return func(c *Client) {
		c.userPrefix = prefix
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP request timeout. The timeout is applied after
// all options are processed, so it holds regardless of option order.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetry enables automatic retry with the given configuration.
// Retries are attempted on rate limits (429), server errors (5xx), and timeouts.
func WithRetry(config *RetryConfig) Option {
	return func(c *Client) {
		c.retryConfig = config
	}
}

// NewClient creates a new Netatmo API client.
// Returns ErrNilAuth if auth is nil.
func NewClient(auth TokenSource, opts ...Option) (*Client, error) {
	if auth == nil {
		return nil, ErrNilAuth
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		auth:       auth,
		httpClient: defaultHTTPClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}

	return c, nil
}

// defaultHTTPClient returns the default HTTP client configuration.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		},
	}
}

// endpoint builds the absolute URL for a relative API path, honoring the
// configured user prefix.
func (c *Client) endpoint(path string) string {
	if c.userPrefix != "" {
		path = strings.TrimSuffix(c.userPrefix, "/") + "/" + path
	}
	return joinURL(c.baseURL, path)
}

// postForm performs a form-encoded POST, the backend's native request
// encoding, and returns the response body.
func (c *Client) postForm(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.doWithRetry(ctx, path, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), strings.NewReader(params.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
		return req, nil
	})
}

// postJSON performs a JSON-body POST for the few endpoints that take a
// structured payload, such as setstate.
func (c *Client) postJSON(ctx context.Context, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return c.doWithRetry(ctx, path, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// do performs a single request with a fresh bearer token.
func (c *Client) do(ctx context.Context, path string, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	tok, err := c.auth.ValidToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := build(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: path, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, c.handleError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// handleError converts HTTP error responses to appropriate errors.
func (c *Client) handleError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		// Try to extract the error message from the response body
		var errResp struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return &APIError{
				StatusCode: statusCode,
				Code:       errResp.Error.Code,
				Message:    errResp.Error.Message,
			}
		}
		return &APIError{
			StatusCode: statusCode,
			Message:    string(body),
		}
	}
}

// doWithRetry performs a request with automatic retry on transient failures.
func (c *Client) doWithRetry(ctx context.Context, path string, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	if c.retryConfig == nil {
		return c.do(ctx, path, build)
	}

	var lastErr error
	backoff := c.retryConfig.InitialBackoff

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		data, err := c.do(ctx, path, build)
		if err == nil {
			return data, nil
		}

		// Only retry on transient errors
		if !IsRetryable(err) {
			return nil, err
		}

		lastErr = err
		c.logAttrs(ctx, slog.LevelDebug, "retrying request",
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)

		if attempt < c.retryConfig.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * c.retryConfig.Multiplier)
				if backoff > c.retryConfig.MaxBackoff {
					backoff = c.retryConfig.MaxBackoff
				}
			}
		}
	}

	return nil, lastErr
}

// extractBody unwraps the backend's {"status": "ok", "body": ...} envelope.
func extractBody(data []byte) (json.RawMessage, error) {
	var envelope struct {
		Status string          `json:"status"`
		Body   json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &MalformedCatalogError{Reason: "response envelope", Err: err}
	}
	if envelope.Body == nil {
		return nil, &MalformedCatalogError{Reason: "response has no body: " + truncatePreview(data)}
	}
	return envelope.Body, nil
}

func (c *Client) logAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(ctx, level, msg, attrs...)
}

// checkAPIStatus reports an error when the backend acknowledges a command
// with anything other than "ok".
func checkAPIStatus(data []byte) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return wrapUnexpected("command acknowledgement", data, err)
	}
	if resp.Status != "ok" {
		return wrapUnexpected("command not acknowledged", data, errors.New("status "+resp.Status))
	}
	return nil
}
