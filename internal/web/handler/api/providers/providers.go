// Package providers exposes the widget data providers under /api/providers.
// These routes never touch the settings store.
package providers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/config"
	upstream "github.com/nexus-dash/nexus/internal/providers"
	"github.com/nexus-dash/nexus/internal/web/handler"
)

const (
	// Path prefixes every provider route.
	Path = handler.APIPath + "providers"

	msgInvalidQuery = "Invalid query"
	msgNoData       = "No data"
	msgUpstream     = "Upstream provider failed"
)

type (
	geocodeQuery struct {
		Name string `query:"name" validate:"required,max=100"`
	}

	weatherQuery struct {
		Lat string `query:"lat" validate:"required,latitude"`
		Lon string `query:"lon" validate:"required,longitude"`
	}

	stocksParams struct {
		Symbol string `validate:"required,max=16,printascii"`
	}

	suggestQuery struct {
		Q string `query:"q" validate:"max=200"`
	}

	faviconQuery struct {
		Domain string `query:"domain" validate:"required,max=2048"`
	}
)

// Service is the provider API handler service.
type Service struct {
	providers handler.Providers
	validator XValidator
}

// Handler is the provider API handler.
var Handler = Service{}

// Init registers the provider routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps handler.Deps) {
	if app == nil || cfg == nil || deps.Providers == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.providers = deps.Providers
	s.validator = NewValidator()

	grp := app.Group(Path)
	grp.Get("/geocode", s.Geocode)
	grp.Get("/weather", s.Weather)
	grp.Get("/stocks/:symbol", s.Stocks)
	grp.Get("/suggest", s.Suggest)
	grp.Get("/favicon", s.Favicon)
}

// Geocode answers with the places matching name.
func (s *Service) Geocode(c *fiber.Ctx) error {
	var q geocodeQuery
	if fields := s.bind(c, &q); fields != nil {
		return badQuery(c, fields)
	}

	places, err := s.providers.Geocode(c.UserContext(), q.Name)
	if err != nil {
		return s.upstreamError(c, "geocode", err)
	}

	return c.JSON(places)
}

// Weather answers with the current weather at lat/lon.
func (s *Service) Weather(c *fiber.Ctx) error {
	var q weatherQuery
	if fields := s.bind(c, &q); fields != nil {
		return badQuery(c, fields)
	}

	// both passed the latitude/longitude rules
	lat, _ := strconv.ParseFloat(q.Lat, 64)
	lon, _ := strconv.ParseFloat(q.Lon, 64)

	w, err := s.providers.Weather(c.UserContext(), lat, lon)
	if err != nil {
		return s.upstreamError(c, "weather", err)
	}

	return c.JSON(w)
}

// Stocks answers with the intraday chart of :symbol.
func (s *Service) Stocks(c *fiber.Ctx) error {
	p := stocksParams{Symbol: c.Params("symbol")}
	if fields := s.validator.Validate(p); fields != nil {
		return badQuery(c, fields)
	}

	q, err := s.providers.Quote(c.UserContext(), p.Symbol)
	if err != nil {
		return s.upstreamError(c, "stocks", err)
	}

	return c.JSON(q)
}

// Suggest answers with search completions for q.
func (s *Service) Suggest(c *fiber.Ctx) error {
	var q suggestQuery
	if fields := s.bind(c, &q); fields != nil {
		return badQuery(c, fields)
	}

	list, err := s.providers.Suggest(c.UserContext(), q.Q)
	if err != nil {
		return s.upstreamError(c, "suggest", err)
	}

	return c.JSON(list)
}

// Favicon redirects to the favicon of domain.
func (s *Service) Favicon(c *fiber.Ctx) error {
	var q faviconQuery
	if fields := s.bind(c, &q); fields != nil {
		return badQuery(c, fields)
	}

	target, err := s.providers.FaviconURL(q.Domain)
	if err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, msgInvalidQuery)
	}

	return c.Redirect(target, fiber.StatusFound)
}

// bind parses the query string into out and validates it.
func (s *Service) bind(c *fiber.Ctx, out any) []FieldError {
	if err := c.QueryParser(out); err != nil {
		return []FieldError{{Tag: "parse", Value: err.Error()}}
	}

	return s.validator.Validate(out)
}

func badQuery(c *fiber.Ctx, fields []FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(ValidationResponse{Error: msgInvalidQuery, Fields: fields})
}

func (s *Service) upstreamError(c *fiber.Ctx, provider string, err error) error {
	switch {
	case errors.Is(err, upstream.ErrInvalidInput):
		return handler.JSONError(c, fiber.StatusBadRequest, msgInvalidQuery)
	case errors.Is(err, upstream.ErrNoData):
		return handler.JSONError(c, fiber.StatusNotFound, msgNoData)
	default:
		log.Warn().Err(err).Str("provider", provider).Msg("provider request failed")
		return handler.JSONError(c, fiber.StatusBadGateway, msgUpstream)
	}
}
