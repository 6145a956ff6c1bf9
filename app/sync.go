package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nexus-dash/nexus/internal/autosave"
	"github.com/nexus-dash/nexus/internal/client"
	"github.com/nexus-dash/nexus/internal/dashboard"
	"github.com/nexus-dash/nexus/internal/store"
)

func init() { //nolint: gochecknoinits
	syncCmd.Flags().Duration("quiet", autosave.DefaultQuietPeriod, "Time without edits before a save (env NEXUS_QUIET)")
	_ = viper.BindPFlag("quiet", syncCmd.Flags().Lookup("quiet"))

	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync <file>",
	Short: "Keep a local JSON file and the server's settings in sync",
	Long: `sync writes the server's settings to <file> when it does not exist yet,
then watches it: every change is merged into the local copy and saved to the
server after the quiet period. Stop with Ctrl-C, pending edits are flushed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		syncer := autosave.New(client.New(serverURL(), nil), autosave.WithQuietPeriod(viper.GetDuration("quiet")))
		syncer.Subscribe(func(st autosave.Status) {
			log.Info().Str("state", st.State.String()).Bool("syncFailed", st.SyncFailed).Msg("sync")
		})

		if err := syncer.Load(ctx); err != nil {
			_ = syncer.Close(context.Background())
			return err
		}

		err := watchFile(ctx, args[0], syncer)

		// flush even when ctx was canceled by the signal
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd
		defer cancel()

		return errors.Join(err, syncer.Close(closeCtx))
	},
}

// watchFile feeds changes of path into the syncer until ctx is done.
func watchFile(ctx context.Context, path string, syncer *autosave.Syncer) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeDocument(path, syncer.Document()); err != nil {
			return err
		}
	} else if err := applyFile(path, syncer); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace files with a rename, so the directory is watched
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	log.Info().Str("file", path).Str("server", serverURL()).Msg("syncing")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Name != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			if err := applyFile(path, syncer); err != nil {
				log.Warn().Err(err).Str("file", path).Msg("ignoring change")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.Error().Err(err).Msg("watcher")
		}
	}
}

// applyFile merges the file's JSON object into the syncer's document.
func applyFile(path string, syncer *autosave.Syncer) error {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return err
	}

	next, err := dashboard.Normalize(raw, syncer.Document())
	if err != nil {
		return err
	}

	return syncer.Update(func(d *dashboard.Document) { *d = next })
}

func writeDocument(path string, d dashboard.Document) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	return store.WriteFileAtomic(path, append(data, '\n'))
}
