// Package settings serves the dashboard document at /api/settings.
package settings

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/dashboard"
	"github.com/nexus-dash/nexus/internal/web/handler"
)

const (
	// Path of the settings API.
	Path = handler.APIPath + "settings"

	// MsgReadFailed is sent when the document can't be loaded.
	MsgReadFailed = "Failed to read settings"
	// MsgSaveFailed is sent when the document can't be stored.
	MsgSaveFailed = "Failed to save settings"
	// MsgNotObject is sent for payloads that are not a JSON object.
	MsgNotObject = "Settings must be a JSON object"
)

// SaveResponse is the body of a successful save.
type SaveResponse struct {
	Success bool `json:"success"`
}

// Service is the settings API handler service.
type Service struct {
	settings handler.Settings
}

// Handler is the settings API handler.
var Handler = Service{}

// Init registers GET and POST on Path.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps handler.Deps) {
	if app == nil || cfg == nil || deps.Settings == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.settings = deps.Settings

	app.Get(Path, s.Get)
	app.Post(Path, s.Post)
}

// Get returns the current document. A fresh store answers with the defaults.
func (s *Service) Get(c *fiber.Ctx) error {
	doc, err := s.settings.Load(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("can't load settings")
		return handler.JSONError(c, fiber.StatusInternalServerError, MsgReadFailed)
	}

	return c.JSON(doc)
}

// Post merges the posted JSON object into the document.
func (s *Service) Post(c *fiber.Ctx) error {
	doc, err := s.settings.Save(c.UserContext(), c.Body())

	switch {
	case errors.Is(err, dashboard.ErrNotObject):
		log.Debug().Err(err).Msg("rejected settings payload")
		return handler.JSONError(c, fiber.StatusBadRequest, MsgNotObject)
	case err != nil:
		log.Error().Err(err).Msg("can't save settings")
		return handler.JSONError(c, fiber.StatusInternalServerError, MsgSaveFailed)
	}

	log.Debug().Int("widgets", len(doc.Widgets)).Msg("settings saved")

	return c.JSON(SaveResponse{Success: true})
}
