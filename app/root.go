// Package app implements the nexus commands.
package app

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/logger"
)

const defaultServer = "http://localhost:3034"

var (
	configPath string // directory holding main.toml

	rootCmd = &cobra.Command{
		Use:   "nexus",
		Short: "Nexus is a self-hosted home dashboard",
		Long: `Nexus is a self-hosted home dashboard. The server keeps one settings
document with the dashboard's widgets and display preferences; the remote
commands edit it through a running server.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
	rootCmd.PersistentFlags().String("server", defaultServer, "nexus server url for remote commands (env NEXUS_SERVER)")

	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))

	viper.SetEnvPrefix("NEXUS")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// readConfig loads main.toml from the config directory and initializes the logger.
func readConfig() (config.Config, error) {
	path := configPath
	if path != "" && !strings.HasSuffix(path, string(os.PathSeparator)) {
		path += string(os.PathSeparator)
	}

	cfg, err := config.ReadConfig(path)
	if err != nil {
		return config.Config{}, err
	}

	if err := logger.Init(cfg.Log); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// serverURL is the --server flag, overridden by NEXUS_SERVER.
func serverURL() string {
	return viper.GetString("server")
}
