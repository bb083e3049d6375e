// Package auth owns the OAuth access-token lifecycle for the
// control-plane API: acquisition, expiry tracking, refresh-before-expiry
// and invalidation. One Manager instance owns one cached token;
// callers hold and pass the instance explicitly.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"tailnetctl/internal/domain"
	"tailnetctl/internal/errors"
)

const (
	// DefaultBaseURL is the control plane the token exchange targets
	// unless configured otherwise.
	DefaultBaseURL = "https://api.tailscale.com"

	tokenPath = "/api/v2/oauth/token"

	// expiryBuffer is the lead time before actual expiry at which a
	// cached token is treated as already unusable. Never zero: a token
	// expiring mid-flight on a slow network would fail the request.
	expiryBuffer = 60 * time.Second

	exchangeTimeout = 30 * time.Second
)

// Environment variables consulted by CredentialsFromEnvironment.
const (
	EnvClientID     = "TS_API_CLIENT_ID"
	EnvClientSecret = "TS_API_CLIENT_SECRET"
)

// Credentials holds an OAuth client-credentials pair. Immutable once
// constructed.
type Credentials struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// Configured reports whether both halves of the credential pair are
// present. Absence of either means "not configured", not an error.
func (c Credentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// CredentialsFromEnvironment discovers OAuth credentials from the
// environment. The second return is false unless both client id and
// secret are present.
func CredentialsFromEnvironment() (Credentials, bool) {
	creds := Credentials{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}
	return creds, creds.Configured()
}

// Manager exchanges OAuth client credentials for access tokens and
// caches the result until shortly before expiry. Refreshes are
// serialized: concurrent callers that find a stale token wait for a
// single exchange rather than issuing duplicates.
type Manager struct {
	creds  Credentials
	client *resty.Client
	logger *slog.Logger

	mu    sync.Mutex
	token domain.AccessToken

	now func() time.Time
}

// NewManager creates a credential manager. Fails with an
// authentication error if either half of the credential pair is empty.
func NewManager(creds Credentials, logger *slog.Logger) (*Manager, error) {
	if !creds.Configured() {
		return nil, errors.NewAuthenticationError(creds.BaseURL,
			"OAuth client id and client secret are both required", nil)
	}
	if creds.BaseURL == "" {
		creds.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetBaseURL(creds.BaseURL).
		SetTimeout(exchangeTimeout)

	return &Manager{
		creds:  creds,
		client: client,
		logger: logger,
		now:    time.Now,
	}, nil
}

// GetAccessToken returns a cached token while it satisfies the
// freshness invariant, otherwise performs a synchronous refresh.
func (m *Manager) GetAccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token.Usable(m.now(), expiryBuffer) {
		return m.token.Value, nil
	}
	return m.refreshLocked(ctx)
}

// Invalidate clears the cached token. Idempotent, never fails.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = domain.AccessToken{}
}

// tokenResponse is the token endpoint's success shape.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// tokenErrorResponse is the token endpoint's error shape.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Message          string `json:"message,omitempty"`
}

// refreshLocked exchanges the client credentials for a fresh token.
// Fail-closed: any failure clears the cached token so a stale or
// invalid token is never served after a failed refresh. Caller holds
// m.mu.
func (m *Manager) refreshLocked(ctx context.Context) (string, error) {
	m.token = domain.AccessToken{}

	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     m.creds.ClientID,
			"client_secret": m.creds.ClientSecret,
		}).
		Post(tokenPath)
	if err != nil {
		return "", errors.NewAuthenticationError(m.creds.BaseURL,
			"token exchange request failed",
			errors.NewNetworkError("POST", m.creds.BaseURL+tokenPath, err))
	}

	if resp.IsError() {
		return "", errors.NewAuthenticationError(m.creds.BaseURL,
			fmt.Sprintf("token endpoint returned status %d: %s",
				resp.StatusCode(), upstreamErrorDescription(resp.Body())), nil)
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return "", errors.NewAuthenticationError(m.creds.BaseURL,
			"token endpoint returned an unparseable response", err)
	}
	if token.AccessToken == "" {
		return "", errors.NewAuthenticationError(m.creds.BaseURL,
			"token endpoint returned no access token", nil)
	}

	m.token = domain.AccessToken{
		Value:     token.AccessToken,
		ExpiresAt: m.now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}

	m.logger.Debug("OAuth token refreshed",
		"endpoint", m.creds.BaseURL+tokenPath,
		"expires_in", token.ExpiresIn)

	return m.token.Value, nil
}

// upstreamErrorDescription extracts the most specific error text the
// token endpoint offered, falling back to the raw body.
func upstreamErrorDescription(body []byte) string {
	var parsed tokenErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.ErrorDescription != "" {
			return parsed.ErrorDescription
		}
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return string(body)
}
