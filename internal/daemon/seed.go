package daemon

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/settings"
)

// seed makes sure the store holds a document before the first request.
// A corrupt document is left for the operator, the API answers 500 until it is fixed.
func seed(ctx context.Context, s *settings.Service) {
	d, err := s.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("can't read settings at startup")
		return
	}

	log.Info().
		Int("widgets", len(d.Widgets)).
		Str("title", d.AppTitle).
		Msg("settings ready")
}
