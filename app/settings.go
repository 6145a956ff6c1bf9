package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexus-dash/nexus/internal/backup"
	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/daemon"
	"github.com/nexus-dash/nexus/internal/dashboard"
	"github.com/nexus-dash/nexus/internal/settings"
)

func init() { //nolint: gochecknoinits
	settingsBackupCmd.Flags().BoolVar(&backupToS3, "s3", false, "Upload to the configured S3 bucket instead of [Backup] Dir")

	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsResetCmd, settingsBackupCmd, settingsRestoreCmd)
	rootCmd.AddCommand(settingsCmd)
}

var (
	backupToS3 bool

	settingsCmd = &cobra.Command{
		Use:   "settings",
		Short: "Read and write the settings document directly in the configured store",
	}

	settingsGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Print the settings document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(cmd, func(ctx context.Context, _ *config.Config, s *settings.Service) error {
				d, err := s.Load(ctx)
				if err != nil {
					return err
				}

				return printDocument(cmd.OutOrStdout(), d)
			})
		},
	}

	settingsSetCmd = &cobra.Command{
		Use:   "set <file|->",
		Short: "Merge a JSON object into the settings document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			return withSettings(cmd, func(ctx context.Context, _ *config.Config, s *settings.Service) error {
				d, err := s.Save(ctx, raw)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %d widgets\n", len(d.Widgets))

				return err
			})
		},
	}

	settingsResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Replace the settings document with the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(cmd, func(ctx context.Context, _ *config.Config, s *settings.Service) error {
				if _, err := s.Reset(ctx); err != nil {
					return err
				}

				_, err := fmt.Fprintln(cmd.OutOrStdout(), "settings reset to defaults")

				return err
			})
		},
	}

	settingsBackupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Export the settings document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(cmd, func(ctx context.Context, cfg *config.Config, s *settings.Service) error {
				dest, err := backup.NewDestination(ctx, cfg.Backup, backupToS3, time.Now())
				if err != nil {
					return err
				}

				if err := backup.Export(ctx, s, dest); err != nil {
					return err
				}

				switch d := dest.(type) {
				case *backup.FileDestination:
					_, err = fmt.Fprintln(cmd.OutOrStdout(), d.Path())
				case *backup.S3Destination:
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "s3://%s/%s\n", cfg.Backup.S3.Bucket, d.Key())
				}

				return err
			})
		},
	}

	settingsRestoreCmd = &cobra.Command{
		Use:   "restore <file|->",
		Short: "Restore an exported settings document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			return withSettings(cmd, func(ctx context.Context, _ *config.Config, s *settings.Service) error {
				d, err := backup.Restore(ctx, s, bytes.NewReader(raw))
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %d widgets\n", len(d.Widgets))

				return err
			})
		},
	}
)

// withSettings opens the configured store for the duration of fn.
func withSettings(
	cmd *cobra.Command,
	fn func(ctx context.Context, cfg *config.Config, s *settings.Service) error,
) (err error) {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	d, err := daemon.Open(cmd.Context(), &cfg)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := d.Close(); err == nil {
			err = closeErr
		}
	}()

	return fn(cmd.Context(), &cfg, d.Settings())
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	return os.ReadFile(name) //nolint:gosec
}

func printDocument(w io.Writer, d dashboard.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(d)
}
