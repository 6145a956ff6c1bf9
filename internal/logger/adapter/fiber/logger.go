// Package fiber provides the zerolog access log middleware for the nexus web server.
package fiber

import (
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/logger"
)

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Log holds console and file settings of the access log.
	Log logger.Log

	// CacheControlError is sent with responses the error handler failed on.
	CacheControlError string

	// CheckAliveURI is not logged when Log.DisableCheckAlive is set.
	CheckAliveURI string
}

// ConfigDefault is used when New gets no config.
var ConfigDefault = Config{
	CacheControlError: "max-age=0",
}

// New returns the access log middleware.
// Without an enabled writer every request is still timed, but nothing is written.
func New(config ...Config) fiber.Handler {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	access := zerolog.New(zerolog.MultiLevelWriter(accessWriters(&cfg.Log)...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	var (
		once       sync.Once
		errHandler fiber.ErrorHandler
	)

	return func(ctx *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		once.Do(func() {
			errHandler = ctx.App().ErrorHandler
		})

		start := time.Now()

		chainErr := ctx.Next()
		if chainErr != nil {
			if errH := errHandler(ctx, chainErr); errH != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
				ctx.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start).Seconds()
		ctx.Response().Header.Set("X-Performance", strconv.FormatFloat(elapsed, 'f', 6, 64))

		if cfg.Log.DisableCheckAlive && cfg.CheckAliveURI != "" && ctx.Path() == cfg.CheckAliveURI {
			return nil
		}

		// fasthttp normalizes the path, the log keeps what the client sent.
		uri := ctx.Path()
		if qs := ctx.Request().URI().QueryString(); len(qs) > 0 {
			uri += "?" + string(qs)
		}

		entry := access.Log().
			Str("IP", ctx.IP()).
			Int("status", ctx.Response().StatusCode()).
			Float64("X-Performance", elapsed).
			Str("URI", uri).
			Str("method", ctx.Method()).
			Bytes("host", ctx.Request().Host()).
			Str(fiber.HeaderXForwardedFor, ctx.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, ctx.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderOrigin, ctx.Get(fiber.HeaderOrigin))

		if chainErr != nil {
			entry.Err(chainErr)
		}

		entry.Send()

		return nil
	}
}

func accessWriters(cfg *logger.Log) []io.Writer {
	var writers []io.Writer

	if cfg.File.Enabled && cfg.File.AccessLog != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create access log directory")
		} else {
			writers = append(writers, logger.Rolling(
				cfg.File.Path, cfg.File.AccessLog,
				cfg.File.AccessMaxSize, cfg.File.AccessMaxAge, cfg.File.AccessMaxBackups,
			))
		}
	}

	if cfg.Console.Enabled && cfg.EnableAccessLogToConsole {
		if cfg.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	return writers
}
