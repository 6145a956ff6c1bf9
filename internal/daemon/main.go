// Package daemon wires storage, events, providers and the web service together.
package daemon

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/events"
	"github.com/nexus-dash/nexus/internal/providers"
	"github.com/nexus-dash/nexus/internal/settings"
	"github.com/nexus-dash/nexus/internal/store"
	"github.com/nexus-dash/nexus/internal/web"
	"github.com/nexus-dash/nexus/internal/web/handler"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	backend    store.Backend
	publisher  events.Publisher
	settings   *settings.Service
	webService *web.Service
}

// Open connects the store and the event publisher and builds the settings service.
// The web service is created by Start.
func Open(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil") //nolint:goerr113
	}

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := events.New(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return &Daemon{
		cfg:       cfg,
		backend:   backend,
		publisher: publisher,
		settings: settings.New(backend,
			settings.WithPublisher(publisher),
			settings.WithKey(cfg.Store.Key),
		),
	}, nil
}

// Settings returns the settings service.
func (d *Daemon) Settings() *settings.Service {
	return d.settings
}

// Start serves http until SIGINT or SIGTERM, then releases all resources.
func (d *Daemon) Start(ctx context.Context) error {
	seed(ctx, d.settings)

	d.webService = web.New(d.cfg, handler.Deps{
		Settings:  d.settings,
		Providers: providers.New(d.cfg.Providers),
	})

	go func() {
		if err := d.webService.Start(); err != nil {
			log.Fatal().Err(err).Msg("web service failed")
		}
	}()

	d.webService.WaitShutdown()

	return d.Close()
}

// Close releases the publisher and the store.
func (d *Daemon) Close() error {
	return errors.Join(d.publisher.Close(), d.backend.Close())
}
