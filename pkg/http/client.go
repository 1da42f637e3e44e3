// Package http implements the request execution engine for the Mercetto
// client kit. It turns a logical API call into a reliable HTTP exchange:
// URL and header construction, body serialization, per-attempt timeout
// enforcement, retry with exponential backoff and jitter, an interceptor
// pipeline, and uniform error classification from HTTP status codes.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mercetto/mercetto-go/pkg/ratelimit"
	"github.com/mercetto/mercetto-go/pkg/types"
)

// CredentialProvider supplies the bearer token attached to every request.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// Config holds the engine configuration.
type Config struct {
	// BaseURL is the default API address; per-call overrides win.
	BaseURL string

	// Credentials supplies the bearer token. Optional for unauthenticated
	// endpoints.
	Credentials CredentialProvider

	// Timeout bounds each transport attempt (default 30s).
	Timeout time.Duration

	// MaxRetries bounds retries after the first attempt; total attempts
	// are MaxRetries+1. Zero disables retries entirely.
	MaxRetries int

	// Backoff configures the delay schedule between retries. A zero
	// value selects DefaultBackoffConfig.
	Backoff BackoffConfig

	// DefaultHeaders are attached to every request; per-call headers win.
	DefaultHeaders map[string]string

	// RequestsPerSecond enables a client-side token-bucket throttle when
	// positive. The throttle is applied before each transport attempt.
	RequestsPerSecond float64

	// Logger receives engine debug output. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Request describes one logical API call. It is created at call entry
// and discarded at call exit; the engine never retains it.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE).
	Method string

	// Path is joined onto the base URL unless it already carries a scheme.
	Path string

	// Body is JSON-serialized for POST/PUT/PATCH calls. Ignored for GET
	// and DELETE.
	Body any

	// RawBody is sent verbatim with no Content-Type, leaving it to
	// transport defaults. Takes precedence over Body.
	RawBody []byte

	// Headers add to (but cannot bypass) the engine's injected headers.
	Headers map[string]string

	// Query parameters with empty values are skipped.
	Query map[string]string

	// BaseURL overrides the engine's base address for this call only.
	BaseURL string

	// Timeout overrides the per-attempt timeout for this call only.
	Timeout time.Duration

	// MaxRetries overrides the retry bound for this call only.
	MaxRetries *int
}

// Client is the request execution engine. The interceptor chains and
// configuration are the only state shared across calls; each call's
// retry state is local to that call.
type Client struct {
	httpClient *nethttp.Client
	config     Config
	chains     interceptorChains
	limiter    *rate.Limiter
	tracker    *ratelimit.Tracker
	logger     zerolog.Logger
}

// NewClient creates an engine from the given configuration. A nil
// httpClient selects a default transport; the per-attempt timeout is
// enforced by the engine, not the transport.
func NewClient(config Config, httpClient *nethttp.Client) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.Backoff == (BackoffConfig{}) {
		config.Backoff = DefaultBackoffConfig()
	}
	if httpClient == nil {
		httpClient = &nethttp.Client{}
	}

	client := &Client{
		httpClient: httpClient,
		config:     config,
		tracker:    ratelimit.NewTracker(),
		logger:     config.Logger,
	}
	if config.RequestsPerSecond > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return client
}

// RateLimit returns the most recent rate limit snapshot observed on any
// response, or nil if none has been seen yet.
func (c *Client) RateLimit() *ratelimit.Info {
	return c.tracker.Current()
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, req *Request) (*types.Result, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, req *Request) (*types.Result, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, req *Request) (*types.Result, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, req *Request) (*types.Result, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, req *Request) (*types.Result, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do executes one logical API call: request interceptors, then up to
// MaxRetries+1 transport attempts with backoff, then classification and
// response interceptors. On unrecoverable failure the error interceptor
// chain gets one last chance to produce a recovery envelope before the
// typed error is returned.
func (c *Client) Do(ctx context.Context, method string, req *Request) (*types.Result, error) {
	req.Method = method

	// Request interceptors run once per logical call, not per retry.
	if err := c.runRequestInterceptors(ctx, req); err != nil {
		if typed, ok := types.AsError(err); ok {
			return nil, typed
		}
		return nil, types.NewError(types.CodeInterceptorError, "request interceptor failed").WithErr(err)
	}

	body, contentType, err := serializeBody(req)
	if err != nil {
		return nil, types.NewValidationError("request body is not serializable", nil).WithErr(err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	target := BuildURL(c.baseURL(req), req.Path, req.Query)
	headers := c.mergeHeaders(req.Headers)
	maxRetries := c.maxRetries(req)
	timeout := c.timeout(req)

	var res *types.Result
	for attempt := 0; ; attempt++ {
		res = c.attempt(ctx, req.Method, target, token, contentType, body, headers, timeout)
		if res.OK {
			break
		}

		if !res.Err.IsRetryable() || attempt >= maxRetries {
			break
		}

		// RetryAfter guidance on 429s is recorded on the error but the
		// schedule stays exponential (see DESIGN.md).
		delay := withJitter(c.config.Backoff, CalculateBackoff(c.config.Backoff, attempt))
		c.logger.Debug().
			Int("attempt", attempt).
			Str("code", res.Err.Code).
			Dur("delay", delay).
			Msg("retrying request")

		select {
		case <-ctx.Done():
			return nil, types.NewNetworkError(types.CodeNetworkError, "request cancelled").WithErr(ctx.Err())
		case <-time.After(delay):
		}
	}

	if res.OK {
		if err := c.runResponseInterceptors(ctx, req, res); err != nil {
			if typed, ok := types.AsError(err); ok {
				return nil, typed
			}
			return nil, types.NewError(types.CodeInterceptorError, "response interceptor failed").WithErr(err)
		}
		return res, nil
	}

	// Last-chance recovery through the error chain.
	if recovered := c.runErrorInterceptors(ctx, req, res.Err); recovered != nil {
		return recovered, nil
	}
	return nil, res.Err
}

// attempt performs one transport exchange under its own timeout and
// classifies the outcome. The timeout's cancel handle is released on
// every exit path.
func (c *Client) attempt(ctx context.Context, method, target, token, contentType string, body []byte, headers map[string]string, timeout time.Duration) *types.Result {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return types.Failure(types.NewNetworkError(types.CodeNetworkError, "request cancelled").WithErr(err))
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := buildHTTPRequest(attemptCtx, method, target, token, contentType, body, headers)
	if err != nil {
		return types.Failure(types.NewNetworkError(types.CodeNetworkError, "failed to build request").WithErr(err))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return types.Failure(types.NewTimeoutError("request timed out after " + timeout.String()).WithErr(err))
		}
		return types.Failure(types.NewNetworkError(types.CodeNetworkError, err.Error()).WithErr(err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return types.Failure(types.NewTimeoutError("request timed out after " + timeout.String()).WithErr(err))
		}
		return types.Failure(types.NewNetworkError(types.CodeNetworkError, "failed to read response body").WithErr(err))
	}

	c.tracker.Update(resp.Header)

	return classify(resp.StatusCode, resp.Header, respBody)
}

// isTimeout reports whether a transport error was caused by the attempt
// deadline rather than some other network failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.config.Credentials == nil {
		return "", nil
	}
	token, err := c.config.Credentials.Token(ctx)
	if err != nil {
		if typed, ok := types.AsError(err); ok {
			return "", typed
		}
		return "", types.NewAuthenticationError("failed to obtain credential").WithErr(err)
	}
	return token, nil
}

func (c *Client) baseURL(req *Request) string {
	if req.BaseURL != "" {
		return req.BaseURL
	}
	return c.config.BaseURL
}

func (c *Client) timeout(req *Request) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	return c.config.Timeout
}

func (c *Client) maxRetries(req *Request) int {
	if req.MaxRetries != nil && *req.MaxRetries >= 0 {
		return *req.MaxRetries
	}
	return c.config.MaxRetries
}

func (c *Client) mergeHeaders(headers map[string]string) map[string]string {
	merged := make(map[string]string, len(c.config.DefaultHeaders)+len(headers))
	for key, value := range c.config.DefaultHeaders {
		merged[key] = value
	}
	for key, value := range headers {
		merged[key] = value
	}
	return merged
}
