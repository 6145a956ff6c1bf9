// Package gorm routes gorm's statement logging into zerolog.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowThreshold marks statements logged as slow.
const DefaultSlowThreshold = 200 * time.Millisecond

// Logger implements gorm's logger.Interface on top of zerolog.
type Logger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	zl            *zerolog.Logger
}

// New returns a Logger writing to the global zerolog logger at warn level.
func New() Logger {
	return Logger{level: gormlogger.Warn, slowThreshold: DefaultSlowThreshold}
}

// WithLogger returns a copy that writes to zl instead of the global logger.
func (l Logger) WithLogger(zl zerolog.Logger) Logger {
	l.zl = &zl
	return l
}

// WithSlowThreshold returns a copy with another slow statement threshold.
func (l Logger) WithSlowThreshold(d time.Duration) Logger {
	l.slowThreshold = d
	return l
}

func (l Logger) logger() *zerolog.Logger {
	if l.zl != nil {
		return l.zl
	}

	return &log.Logger
}

// LogMode implements logger.Interface.
func (l Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	l.level = level
	return l
}

// Info implements logger.Interface.
func (l Logger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.logger().Info().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Warn implements logger.Interface.
func (l Logger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.logger().Warn().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Error implements logger.Interface.
func (l Logger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.logger().Error().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace implements logger.Interface.
// Record not found is an expected outcome for lookups and is never logged as an error.
func (l Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	var e *zerolog.Event

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		e = l.logger().Error().Err(err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		e = l.logger().Warn().Dur("threshold", l.slowThreshold)
	case l.level >= gormlogger.Info:
		e = l.logger().Debug()
	default:
		return
	}

	sql, rows := fc()

	e.Str("component", "gorm").
		Dur("elapsed", elapsed).
		Int64("rows", rows).
		Str("sql", sql).
		Msg("sql statement")
}
