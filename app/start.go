package app

import (
	"github.com/spf13/cobra"

	"github.com/nexus-dash/nexus/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode (templates from disk, stack traces)")

	startCmd.Flags().BoolVar(
		&browseStatic,
		"browse",
		false,
		"Enable static file browsing (for development purposes only)",
	)

	rootCmd.AddCommand(startCmd)
}

var (
	devMode      bool
	browseStatic bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the nexus web service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			if browseStatic {
				cfg.Webserver.BrowseStatic = true
			}

			d, err := daemon.Open(cmd.Context(), &cfg)
			if err != nil {
				return err
			}

			return d.Start(cmd.Context())
		},
	}
)
