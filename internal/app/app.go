// Package app wires the application's dependencies explicitly:
// configuration, logging, credential manager, transports and the
// unified client. No singletons; callers hold the App value.
package app

import (
	"os"

	apiclient "tailnetctl/internal/adapters/api"
	"tailnetctl/internal/adapters/cli"
	"tailnetctl/internal/config"
	"tailnetctl/internal/domain"
	"tailnetctl/internal/logging"
	"tailnetctl/internal/services/auth"
	"tailnetctl/internal/services/tailscale"
)

// App contains all application dependencies.
type App struct {
	Config *config.Config
	Client *tailscale.Client
	Logger *logging.Logger
}

// Options configures App construction.
type Options struct {
	ConfigPath string
	Verbose    bool
	LogFormat  string
}

// New builds the application from configuration. OAuth credentials
// take precedence over a static API key when both are configured; the
// selection is logged so the operator choice is visible.
func New(opts Options) (*App, error) {
	logLevel := logging.LevelInfo
	if opts.Verbose {
		logLevel = logging.LevelDebug
	}
	logger := logging.NewLogger(logging.Config{
		Level:  logLevel,
		Format: opts.LogFormat,
		Output: os.Stderr,
	})

	configPath := opts.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.NewManager(configPath).Load()
	if err != nil {
		return nil, err
	}

	client, err := BuildClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config: cfg,
		Client: client,
		Logger: logger,
	}, nil
}

// BuildClient constructs the unified client from resolved
// configuration.
func BuildClient(cfg *config.Config, logger *logging.Logger) (*tailscale.Client, error) {
	runner := cli.NewRunner(cfg.CLIPath, cfg.Timeout(), logger.Logger)

	var api domain.APIRequester
	creds := resolveOAuthCredentials(cfg)
	switch {
	case creds.Configured():
		manager, err := auth.NewManager(creds, logger.Logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("using OAuth credentials for control-plane access")
		api = apiclient.NewClient(cfg.APIBaseURL, "", manager, cfg.Timeout(), logger.Logger)
	case cfg.APIKey != "":
		logger.Debug("using static API key for control-plane access")
		api = apiclient.NewClient(cfg.APIBaseURL, cfg.APIKey, nil, cfg.Timeout(), logger.Logger)
	}

	return tailscale.New(tailscale.Options{
		Mode:    cfg.TransportMode(),
		Tailnet: cfg.Tailnet,
		Runner:  runner,
		API:     api,
		Logger:  logger,
	})
}

// resolveOAuthCredentials merges file configuration with environment
// discovery. File configuration wins when present.
func resolveOAuthCredentials(cfg *config.Config) auth.Credentials {
	if cfg.OAuth.Configured() {
		return auth.Credentials{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			BaseURL:      cfg.APIBaseURL,
		}
	}
	if creds, ok := auth.CredentialsFromEnvironment(); ok {
		creds.BaseURL = cfg.APIBaseURL
		return creds
	}
	return auth.Credentials{}
}
