// Package logger configures the global zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelWriter splits log output by level.
// See func WriteLevel about the separation.
type LevelWriter struct {
	ErrorWriter io.Writer
	InfoWriter  io.Writer
	TraceWriter io.Writer
	WarnWriter  io.Writer
}

// WriteLevel picks the target writer for the level of the event.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (n int, err error) {
	var w io.Writer

	// disabled logging
	if l == zerolog.Disabled {
		return 0, nil
	}

	switch {
	case l == zerolog.TraceLevel:
		w = lw.TraceWriter
	case l == zerolog.WarnLevel:
		w = lw.WarnWriter
	case l > zerolog.WarnLevel: // error and fatal panic go to error
		w = lw.ErrorWriter
	default:
		w = lw.InfoWriter // debug and info go to info
	}

	return w.Write(p) //nolint:wrapcheck
}

// Write sends level-less output to the info writer.
func (lw *LevelWriter) Write(p []byte) (int, error) {
	return lw.InfoWriter.Write(p) //nolint:wrapcheck
}

// Init the zerolog logger.
// Depending on the config it enables console, file, both or no output at all.
func Init(cfg Log) error {
	var (
		logLevel, err = zerolog.ParseLevel(cfg.LogLevel)
		writers       []io.Writer
		stack         bool
	)

	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("loglevel %s is not supported", cfg.LogLevel))
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	// use zerolog stack marshal func if trace level is set
	if logLevel == zerolog.TraceLevel {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
		stack = true
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.ErrorHandler = ErrorHandler //nolint:reassign

	ph := NewPrometheusHook(cfg.ServiceName)

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		if fw := newRollingLevelFile(cfg); fw != nil {
			writers = append(writers, fw)
		}
	}

	mw := zerolog.MultiLevelWriter(writers...)
	ctx := zerolog.New(mw).Hook(ph).With().Timestamp().Str("app", cfg.AppName)

	switch {
	case cfg.ReportCaller && stack:
		log.Logger = ctx.Stack().Logger()
	case cfg.ReportCaller:
		log.Logger = ctx.Caller().Logger()
	default:
		log.Logger = ctx.Logger()
	}

	return nil
}

// Rolling returns a lumberjack file writer below dir.
func Rolling(dir, name string, maxSize, maxAge, maxBackups int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(dir, name),
		MaxSize:    maxSize,
		MaxAge:     maxAge,
		MaxBackups: maxBackups,
		LocalTime:  false,
		Compress:   false,
	}
}

// newRollingLevelFile writes every level group into its own rotating file.
func newRollingLevelFile(cfg Log) io.Writer {
	f := cfg.File

	if err := os.MkdirAll(f.Path, 0o750); err != nil { //nolint: mnd
		log.Error().Err(err).Str("path", f.Path).Msg("can't create log directory")

		return nil
	}

	return &LevelWriter{
		ErrorWriter: Rolling(f.Path, f.ErrorLog, f.ErrorMaxSize, f.ErrorMaxAge, f.ErrorMaxBackups),
		InfoWriter:  Rolling(f.Path, f.InfoLog, f.InfoMaxSize, f.InfoMaxAge, f.InfoMaxBackups),
		TraceWriter: Rolling(f.Path, f.TraceLog, f.TraceMaxSize, f.TraceMaxAge, f.TraceMaxBackups),
		WarnWriter:  Rolling(f.Path, f.WarnLog, f.WarnMaxSize, f.WarnMaxAge, f.WarnMaxBackups),
	}
}

// NewConsoleWriter splits console output between stdout (debug, info) and stderr.
func NewConsoleWriter(cfg Log) io.Writer {
	if !cfg.Console.UseConsoleWriter {
		return &LevelWriter{
			ErrorWriter: os.Stderr,
			InfoWriter:  os.Stdout,
			TraceWriter: os.Stderr,
			WarnWriter:  os.Stderr,
		}
	}

	pretty := func(out io.Writer) io.Writer {
		return zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    false,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	return &LevelWriter{
		ErrorWriter: pretty(os.Stderr),
		InfoWriter:  pretty(os.Stdout),
		TraceWriter: pretty(os.Stderr),
		WarnWriter:  pretty(os.Stderr),
	}
}
