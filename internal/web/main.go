// Package web serves the settings API, the provider passthrough and the dashboard page.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/config"
	accesslog "github.com/nexus-dash/nexus/internal/logger/adapter/fiber"
	"github.com/nexus-dash/nexus/internal/web/handler"
	providersapi "github.com/nexus-dash/nexus/internal/web/handler/api/providers"
	settingsapi "github.com/nexus-dash/nexus/internal/web/handler/api/settings"
	"github.com/nexus-dash/nexus/internal/web/handler/dashboard"
)

// MetricsPath exposes the prometheus metrics.
const MetricsPath = "/metrics"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start listens on the configured port until the server is shut down.
func (s *Service) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Str("url", s.cfg.Webserver.URL).Msg("http server listening")

	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fiber listen: %w", err)
	}

	return nil
}

// Alive reports whether the check alive route answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// WaitShutdown blocks until SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown lets check alive fail for ShutDownTime seconds so load balancers
// drain this instance, then stops the http server.
func (s *Service) Shutdown() {
	s.alive.Store(false)

	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 for %d seconds to let the LB remove this instance",
			s.cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service with all routes registered.
func New(cfg *config.Config, deps handler.Deps) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if deps.Settings == nil || deps.Providers == nil {
		panic("settings and providers cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192, //nolint:mnd
			AppName:        "nexus",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			BodyLimit:      cfg.Webserver.BodyLimit,
			Views:          newTemplateEngine(cfg),
			ErrorHandler:   errorHandler,
		},
	)

	service := &Service{
		cfg: cfg,
		App: app,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(accesslog.New(accesslog.Config{
		Log:           cfg.Log,
		CheckAliveURI: cfg.Webserver.CheckAliveURI,
	}))

	allowOrigins := cfg.Webserver.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ","),
		AllowHeaders: fiber.HeaderContentType,
	}))

	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Get(cfg.Webserver.CheckAliveURI, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	settingsapi.Handler.Init(app, cfg, deps)
	providersapi.Handler.Init(app, cfg, deps)
	dashboard.Handler.Init(app, cfg, deps)

	return service
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// errorHandler answers API routes with an error body and everything else with text.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	if strings.HasPrefix(c.Path(), handler.APIPath) {
		return handler.JSONError(c, code, msg)
	}

	return c.Status(code).SendString(msg)
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	engine := html.NewFileSystem(templateFS(), ".gohtml")

	// in dev mode templates are read from disk on every render
	if cfg.DevMode {
		engine = html.New("./internal/web/templates", ".gohtml")
		engine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	engine.AddFunc("tileClass", func(t dashboard.Tile) string {
		classes := []string{"tile", "tile-" + t.Type}
		if t.Wide {
			classes = append(classes, "tile-wide")
		}

		if t.Tint != "" {
			classes = append(classes, "tint-"+t.Tint)
		}

		return strings.Join(classes, " ")
	})

	return engine
}
