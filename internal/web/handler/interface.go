package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/dashboard"
	"github.com/nexus-dash/nexus/internal/providers"
)

// Settings is the part of the settings service the handlers use.
type Settings interface {
	Load(ctx context.Context) (dashboard.Document, error)
	Save(ctx context.Context, raw []byte) (dashboard.Document, error)
}

// Providers is the part of the provider client the handlers use.
type Providers interface {
	Geocode(ctx context.Context, name string) ([]providers.Place, error)
	Weather(ctx context.Context, lat, lon float64) (providers.Weather, error)
	Quote(ctx context.Context, symbol string) (providers.Quote, error)
	Suggest(ctx context.Context, q string) ([]string, error)
	FaviconURL(domainOrURL string) (string, error)
}

// Deps are the services handlers are built on.
type Deps struct {
	Settings  Settings
	Providers Providers
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, deps Deps)
}

// ErrorBody is the JSON body of every failed API call.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSONError sends status with an ErrorBody.
func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorBody{Error: msg})
}
