package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailnetctl/internal/domain"
	"tailnetctl/internal/errors"
)

func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, "auto", config.Mode)
	assert.Equal(t, "-", config.Tailnet)
	assert.Equal(t, DefaultAPIBaseURL, config.APIBaseURL)
	assert.Equal(t, "tailscale", config.CLIPath)
	assert.Equal(t, 30, config.TimeoutSeconds)
	assert.NoError(t, config.Validate())
}

func TestApplyDefaultsFillsUnsetFields(t *testing.T) {
	config := &Config{Mode: "api", Tailnet: "example.com"}
	config.ApplyDefaults()

	assert.Equal(t, "api", config.Mode)
	assert.Equal(t, "example.com", config.Tailnet)
	assert.Equal(t, DefaultAPIBaseURL, config.APIBaseURL)
	assert.Equal(t, 30, config.TimeoutSeconds)
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	config := Default()
	config.Mode = "carrier-pigeon"

	err := config.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "mode")
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	config := Default()
	config.TimeoutSeconds = 0

	err := config.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(EnvAPIKey, "tskey-env")
	t.Setenv(EnvTailnet, "corp.example.com")

	config := Default()
	config.ApplyEnvironment()

	assert.Equal(t, "tskey-env", config.APIKey)
	assert.Equal(t, "corp.example.com", config.Tailnet)
}

func TestOAuthConfigured(t *testing.T) {
	assert.False(t, OAuthConfig{}.Configured())
	assert.False(t, OAuthConfig{ClientID: "id"}.Configured())
	assert.False(t, OAuthConfig{ClientSecret: "secret"}.Configured())
	assert.True(t, OAuthConfig{ClientID: "id", ClientSecret: "secret"}.Configured())
}

func TestManagerLoadMissingFileReturnsDefaults(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "config.yaml"))

	config, err := manager.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeAuto, config.TransportMode())
}

func TestManagerSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	manager := NewManager(path)

	config := Default()
	config.Mode = "api"
	config.Tailnet = "example.com"
	config.OAuth = OAuthConfig{ClientID: "id", ClientSecret: "secret"}

	require.NoError(t, manager.Save(config))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "config may carry secrets")

	loaded, err := manager.Load()
	require.NoError(t, err)
	assert.Equal(t, "api", loaded.Mode)
	assert.Equal(t, "example.com", loaded.Tailnet)
	assert.True(t, loaded.OAuth.Configured())
}

func TestManagerLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [unclosed"), 0o600))

	_, err := NewManager(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
