package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/db/dsn"
)

// Open returns the backend selected by [Store] Backend.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	var (
		b   Backend
		err error
	)

	switch cfg.Store.Backend {
	case config.BackendFile, "":
		b, err = NewFile(cfg.Store.File.Path)
	case config.BackendGorm:
		b, err = OpenGorm(cfg)
	case config.BackendPostgres:
		b, err = OpenPostgres(ctx, dsn.Create(cfg), cfg.Store.Key)
	case config.BackendKV:
		b, err = OpenKV(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreBackend, cfg.Store.Backend)
	}

	if err != nil {
		return nil, err
	}

	log.Info().Str("backend", cfg.Store.Backend).Msg("settings store opened")

	return b, nil
}
