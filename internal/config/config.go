package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"tailnetctl/internal/domain"
	"tailnetctl/internal/errors"
)

// Environment variables overlaying the config file.
const (
	EnvAPIKey  = "TS_API_KEY"
	EnvTailnet = "TS_TAILNET"
)

// DefaultAPIBaseURL is the control plane used unless configured
// otherwise.
const DefaultAPIBaseURL = "https://api.tailscale.com"

// OAuthConfig holds the OAuth client-credentials pair.
type OAuthConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
}

// Configured reports whether both halves of the pair are present.
func (o OAuthConfig) Configured() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// Config is the resolved client configuration: named fields, documented
// defaults, resolved once at construction.
type Config struct {
	Version string `yaml:"version"`

	// Mode selects the transport: "cli", "api" or "auto" (default).
	Mode string `yaml:"mode"`

	// Tailnet is the network namespace API calls address. "-" selects
	// the tailnet the credentials belong to.
	Tailnet string `yaml:"tailnet"`

	// APIBaseURL defaults to the public control plane.
	APIBaseURL string `yaml:"apiBaseUrl"`

	// APIKey is a static control-plane key. When OAuth is also
	// configured, OAuth wins.
	APIKey string `yaml:"apiKey,omitempty"`

	OAuth OAuthConfig `yaml:"oauth,omitempty"`

	// CLIPath names the local binary; resolved via PATH when bare.
	CLIPath string `yaml:"cliPath"`

	// TimeoutSeconds bounds each CLI invocation and API request.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Version:        "1.0",
		Mode:           string(domain.ModeAuto),
		Tailnet:        "-",
		APIBaseURL:     DefaultAPIBaseURL,
		CLIPath:        "tailscale",
		TimeoutSeconds: 30,
	}
}

// ApplyDefaults fills unset fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	defaults := Default()
	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Mode == "" {
		c.Mode = defaults.Mode
	}
	if c.Tailnet == "" {
		c.Tailnet = defaults.Tailnet
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaults.APIBaseURL
	}
	if c.CLIPath == "" {
		c.CLIPath = defaults.CLIPath
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaults.TimeoutSeconds
	}
}

// ApplyEnvironment overlays environment variables on the config.
func (c *Config) ApplyEnvironment() {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	}
	if tailnet := os.Getenv(EnvTailnet); tailnet != "" {
		c.Tailnet = tailnet
	}
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	switch domain.TransportMode(c.Mode) {
	case domain.ModeCLI, domain.ModeAPI, domain.ModeAuto:
	default:
		return errors.NewValidationError("mode", c.Mode, "supported_values",
			"mode must be one of: cli, api, auto")
	}

	if c.APIBaseURL == "" {
		return errors.NewValidationError("apiBaseUrl", "", "required",
			"apiBaseUrl cannot be empty")
	}

	if c.TimeoutSeconds <= 0 {
		return errors.NewValidationError("timeoutSeconds", "", "positive",
			"timeoutSeconds must be positive")
	}

	return nil
}

// TransportMode returns the configured mode as its typed value.
func (c *Config) TransportMode() domain.TransportMode {
	return domain.TransportMode(c.Mode)
}

// Timeout returns the configured timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Manager handles configuration file operations.
type Manager struct {
	configPath string
}

// NewManager creates a configuration manager for the given path.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tailnetctl", "config.yaml"), nil
}

// Load reads the configuration from disk, returning defaults when the
// file does not exist. Environment overlays and defaults are applied
// before validation.
func (m *Manager) Load() (*Config, error) {
	config := Default()

	if data, err := os.ReadFile(m.configPath); err == nil && len(data) > 0 {
		config = &Config{}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.NewValidationError("config", m.configPath, "yaml",
				"failed to parse config file: "+err.Error())
		}
		config.ApplyDefaults()
	} else if err != nil && !os.IsNotExist(err) {
		return nil, errors.NewValidationError("config", m.configPath, "readable",
			"failed to read config file: "+err.Error())
	}

	config.ApplyEnvironment()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration to disk. The file may carry secrets,
// so it is written owner-readable only.
func (m *Manager) Save(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o750); err != nil {
		return errors.NewValidationError("config", filepath.Dir(m.configPath), "writable",
			"failed to create config directory: "+err.Error())
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.NewValidationError("config", m.configPath, "yaml",
			"failed to marshal config: "+err.Error())
	}

	if err := os.WriteFile(m.configPath, data, 0o600); err != nil {
		return errors.NewValidationError("config", m.configPath, "writable",
			"failed to write config file: "+err.Error())
	}
	return nil
}
