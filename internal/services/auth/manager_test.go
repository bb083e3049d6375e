package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailnetctl/internal/errors"
)

func newTokenServer(t *testing.T, exchanges *atomic.Int64, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		handler(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func grantToken(t *testing.T, expiresIn int64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-id", r.PostFormValue("client_id"))
		assert.Equal(t, "client-secret", r.PostFormValue("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tskey-test-token","token_type":"Bearer","expires_in":` +
			strconv.FormatInt(expiresIn, 10) + `}`))
	}
}

func newTestManager(t *testing.T, baseURL string) *Manager {
	t.Helper()
	manager, err := NewManager(Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      baseURL,
	}, nil)
	require.NoError(t, err)
	return manager
}

func TestNewManagerRequiresBothCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{"missing secret", "client-id", ""},
		{"missing id", "", "client-secret"},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(Credentials{ClientID: tt.id, ClientSecret: tt.secret}, nil)
			require.Error(t, err)
			assert.True(t, errors.IsAuthentication(err))
		})
	}
}

func TestGetAccessTokenCachesUntilBuffer(t *testing.T) {
	var exchanges atomic.Int64
	server := newTokenServer(t, &exchanges, grantToken(t, 3600))
	manager := newTestManager(t, server.URL)

	now := time.Now()
	manager.now = func() time.Time { return now }

	token, err := manager.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tskey-test-token", token)
	assert.Equal(t, int64(1), exchanges.Load())

	// Well inside the expiry window: no network call.
	now = now.Add(3600*time.Second - 61*time.Second - time.Second)
	token, err = manager.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tskey-test-token", token)
	assert.Equal(t, int64(1), exchanges.Load())

	// Inside the 60s buffer before expiry: a new exchange happens.
	now = now.Add(2 * time.Second)
	_, err = manager.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), exchanges.Load())
}

func TestRefreshFailsClosed(t *testing.T) {
	var exchanges atomic.Int64
	var failing atomic.Bool
	server := newTokenServer(t, &exchanges, func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"client secret revoked"}`))
			return
		}
		grantToken(t, 3600)(w, r)
	})
	manager := newTestManager(t, server.URL)

	now := time.Now()
	manager.now = func() time.Time { return now }

	_, err := manager.GetAccessToken(context.Background())
	require.NoError(t, err)

	// Force a refresh and make it fail.
	failing.Store(true)
	now = now.Add(4 * time.Hour)

	_, err = manager.GetAccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuthentication(err))
	assert.Contains(t, err.Error(), "client secret revoked")

	// Fail-closed: the old token must not be served even if "now"
	// rolls back inside its original window.
	now = now.Add(-4 * time.Hour)
	_, err = manager.GetAccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuthentication(err))
}

func TestInvalidateForcesRefresh(t *testing.T) {
	var exchanges atomic.Int64
	server := newTokenServer(t, &exchanges, grantToken(t, 3600))
	manager := newTestManager(t, server.URL)

	_, err := manager.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), exchanges.Load())

	manager.Invalidate()
	manager.Invalidate() // idempotent

	_, err = manager.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), exchanges.Load())
}

func TestRefreshNetworkFailure(t *testing.T) {
	manager := newTestManager(t, "http://127.0.0.1:1")

	_, err := manager.GetAccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuthentication(err))
	assert.True(t, errors.IsNetwork(err), "transport failure should be wrapped as a network error")
}

func TestRefreshRejectsEmptyToken(t *testing.T) {
	var exchanges atomic.Int64
	server := newTokenServer(t, &exchanges, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer","expires_in":3600}`))
	})
	manager := newTestManager(t, server.URL)

	_, err := manager.GetAccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuthentication(err))
	assert.Contains(t, err.Error(), "no access token")
}

func TestCredentialsFromEnvironment(t *testing.T) {
	t.Run("both present", func(t *testing.T) {
		t.Setenv(EnvClientID, "env-id")
		t.Setenv(EnvClientSecret, "env-secret")

		creds, ok := CredentialsFromEnvironment()
		assert.True(t, ok)
		assert.Equal(t, "env-id", creds.ClientID)
		assert.Equal(t, "env-secret", creds.ClientSecret)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv(EnvClientID, "env-id")
		t.Setenv(EnvClientSecret, "")

		_, ok := CredentialsFromEnvironment()
		assert.False(t, ok)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		t.Setenv(EnvClientSecret, "env-secret")

		_, ok := CredentialsFromEnvironment()
		assert.False(t, ok)
	})
}
