package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tailnetctl/internal/app"
)

var (
	cfgFile string
	verbose bool
	mode    string
	tailnet string
)

// Build information
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// SetVersionInfo updates the build information variables
func SetVersionInfo(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

var rootCmd = &cobra.Command{
	Use:   "tailnetctl",
	Short: "Manage a tailnet through the local tailscale binary or the control-plane API",
	Long: `Tailnetctl manages devices, routes and connectivity in a tailnet.
Each operation runs over one of two transports: the locally installed
tailscale binary or the remote control-plane API. The transport is
chosen explicitly (--mode cli|api) or automatically based on which
credentials and tools are available.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/tailnetctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "transport mode: cli, api or auto")
	rootCmd.PersistentFlags().StringVar(&tailnet, "tailnet", "", "tailnet name (default is the credential's own tailnet)")

	_ = viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode"))
	_ = viper.BindPFlag("tailnet", rootCmd.PersistentFlags().Lookup("tailnet"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home + "/.config/tailnetctl")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newApp builds the application, applying command-line overrides on
// top of the loaded configuration.
func newApp() (*app.App, error) {
	a, err := app.New(app.Options{
		ConfigPath: cfgFile,
		Verbose:    verbose,
	})
	if err != nil {
		return nil, err
	}

	overridden := false
	if mode != "" {
		a.Config.Mode = mode
		overridden = true
	}
	if tailnet != "" {
		a.Config.Tailnet = tailnet
		overridden = true
	}
	if overridden {
		if err := a.Config.Validate(); err != nil {
			return nil, err
		}
		a.Client, err = app.BuildClient(a.Config, a.Logger)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}
