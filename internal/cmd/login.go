package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tailnetctl/internal/adapters/terminal"
	"tailnetctl/internal/config"
	"tailnetctl/internal/services/auth"
)

var loginClientID string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store OAuth credentials for control-plane access",
	Long: `Store an OAuth client id and secret in the config file. The secret is
prompted for with echo disabled; in non-interactive environments set
TS_API_CLIENT_SECRET instead.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginClientID, "client-id", "", "OAuth client id (required)")

	_ = loginCmd.MarkFlagRequired("client-id")
}

// runLogin works on the config file directly: credentials may not
// exist yet, so no client is constructed.
func runLogin(cmd *cobra.Command, args []string) error {
	configPath := cfgFile
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	manager := config.NewManager(configPath)
	cfg, err := manager.Load()
	if err != nil {
		return err
	}

	secretReader := terminal.NewAdapter(os.Stdin, os.Stderr, auth.EnvClientSecret)
	secret, err := secretReader.ReadSecret(cmd.Context(), "OAuth client secret: ")
	if err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("client secret cannot be empty")
	}

	cfg.OAuth = config.OAuthConfig{
		ClientID:     loginClientID,
		ClientSecret: secret,
	}
	if tailnet != "" {
		cfg.Tailnet = tailnet
	}

	if err := manager.Save(cfg); err != nil {
		return err
	}

	fmt.Printf("Credentials saved to %s\n", configPath)
	return nil
}
