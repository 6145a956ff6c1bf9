// Package backup exports the dashboard document to files or S3 and restores it.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/dashboard"
	"github.com/nexus-dash/nexus/internal/store"
)

// maxRestoreSize bounds the documents Restore accepts.
const maxRestoreSize = 8 << 20

// ErrTooLarge is returned by Restore for oversized input.
var ErrTooLarge = errors.New("backup exceeds 8 MiB")

// Destination is an export target.
type Destination interface {
	Write(ctx context.Context, data []byte) error
}

// Loader reads the current document.
type Loader interface {
	Load(ctx context.Context) (dashboard.Document, error)
}

// Restorer stores a restored document.
type Restorer interface {
	Restore(ctx context.Context, raw []byte) (dashboard.Document, error)
}

// FileDestination writes the export to a local file, replacing it atomically.
type FileDestination struct {
	path string
}

// NewFileDestination returns a destination writing to path.
func NewFileDestination(path string) *FileDestination {
	return &FileDestination{path: path}
}

// Path of the export file.
func (d *FileDestination) Path() string {
	return d.path
}

func (d *FileDestination) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o750); err != nil { //nolint:mnd
		return fmt.Errorf("create backup dir: %w", err)
	}

	if err := store.WriteFileAtomic(d.path, data); err != nil {
		return fmt.Errorf("write backup %s: %w", d.path, err)
	}

	return nil
}

// FileName is the export file name for a backup taken at t.
func FileName(t time.Time) string {
	return "nexus-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// NewDestination picks S3 when toS3 is set, otherwise a timestamped file below cfg.Dir.
func NewDestination(ctx context.Context, cfg config.Backup, toS3 bool, now time.Time) (Destination, error) {
	if toS3 {
		return NewS3Destination(ctx, cfg.S3)
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	return NewFileDestination(filepath.Join(dir, FileName(now))), nil
}

// Export writes the current document as indented JSON to dest.
func Export(ctx context.Context, loader Loader, dest Destination) error {
	d, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := dest.Write(ctx, append(data, '\n')); err != nil {
		return err
	}

	log.Info().Int("widgets", len(d.Widgets)).Msg("settings exported")

	return nil
}

// Restore reads a document from r and merges it into the stored one.
func Restore(ctx context.Context, restorer Restorer, r io.Reader) (dashboard.Document, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxRestoreSize+1))
	if err != nil {
		return dashboard.Document{}, fmt.Errorf("read backup: %w", err)
	}

	if len(raw) > maxRestoreSize {
		return dashboard.Document{}, ErrTooLarge
	}

	d, err := restorer.Restore(ctx, raw)
	if err != nil {
		return dashboard.Document{}, fmt.Errorf("restore settings: %w", err)
	}

	log.Info().Int("widgets", len(d.Widgets)).Msg("settings restored")

	return d, nil
}
