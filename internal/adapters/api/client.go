// Package api is the control-plane HTTP transport, built on resty
// with rate limiting. The bearer credential is resolved at call time:
// OAuth-configured clients consult the credential manager immediately
// before each request (the manager owns token caching), static-key
// clients attach the key directly.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"tailnetctl/internal/domain"
	"tailnetctl/internal/errors"
)

const (
	// DefaultTimeout bounds each control-plane request.
	DefaultTimeout = 30 * time.Second

	// Rate limiting configuration.
	rateLimitRequestsPerSecond = 10
	rateLimitBurst             = 20

	contentTypeJSON = "application/json"
)

// Client issues authenticated requests against the control plane. It
// never retries internally; structured errors are surfaced so the
// unified client can apply policy.
type Client struct {
	client  *resty.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	tokens  domain.TokenSource
	logger  *slog.Logger
}

// NewClient creates a control-plane transport. Exactly one of apiKey
// and tokens should be set; when both are, tokens wins (explicit OAuth
// configuration is an operator choice).
func NewClient(baseURL, apiKey string, tokens domain.TokenSource, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	// Rate limiter: 10 requests/second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(rateLimitRequestsPerSecond), rateLimitBurst)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.DebugContext(req.Context(), "control-plane request",
			"method", req.Method,
			"url", req.URL,
		)
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.DebugContext(resp.Request.Context(), "control-plane response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
		)
		return nil
	})

	return &Client{
		client:  client,
		limiter: limiter,
		baseURL: baseURL,
		apiKey:  apiKey,
		tokens:  tokens,
		logger:  logger,
	}
}

// Request performs an authenticated request and returns the raw JSON
// body. HTTP 4xx/5xx map to an API error; connection and timeout
// failures map to a network error.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	bearer, err := c.resolveBearer(ctx)
	if err != nil {
		return nil, err
	}

	request := c.client.R().
		SetContext(ctx).
		SetAuthToken(bearer)

	if body != nil {
		request.SetHeader("Content-Type", contentTypeJSON).SetBody(body)
	}

	resp, err := request.Execute(method, path)
	if err != nil {
		return nil, errors.NewNetworkError(method, c.baseURL+path, err)
	}

	if resp.IsError() {
		return nil, errors.NewAPIError(resp.StatusCode(), method, c.baseURL+path, string(resp.Body()))
	}

	return json.RawMessage(resp.Body()), nil
}

// Get performs a GET request and decodes the response into out when
// out is non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.decode(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with an optional JSON payload and
// decodes the response into out when out is non-nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.decode(ctx, http.MethodPost, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Request(ctx, http.MethodDelete, path, nil)
	return err
}

func (c *Client) decode(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewAPIError(0, method, c.baseURL+path, "unparseable response body: "+err.Error())
	}
	return nil
}

// resolveBearer picks the credential for this request. OAuth takes
// precedence over a static key; the authentication error from a failed
// token refresh propagates unchanged.
func (c *Client) resolveBearer(ctx context.Context) (string, error) {
	if c.tokens != nil {
		return c.tokens.GetAccessToken(ctx)
	}
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	return "", errors.NewAuthenticationError(c.baseURL,
		"no API credentials configured", nil)
}
