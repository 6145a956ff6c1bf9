package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-dash/nexus/internal/config"
)

func init() { //nolint: gochecknoinits
	configDumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "Dump as JSON instead of TOML")

	configCmd.AddCommand(configDumpCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	dumpJSON bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	configDumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration with defaults and env overrides applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}

			dump := config.DumpConfig
			if dumpJSON {
				dump = config.DumpConfigJSON
			}

			out, err := dump(&cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}
)
