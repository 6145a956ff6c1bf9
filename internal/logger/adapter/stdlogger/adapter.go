// Package stdlogger exposes the global zerolog logger through printf style methods
// for libraries that expect a classic logger.
package stdlogger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to the global zerolog logger.
type Logger struct {
	component string
}

// New returns a Logger without component tag.
func New() *Logger {
	return &Logger{}
}

// NewComponent returns a Logger whose lines carry a component field.
func NewComponent(name string) *Logger {
	return &Logger{component: name}
}

func (l *Logger) emit(e *zerolog.Event, format string, v ...any) {
	if l.component != "" {
		e = e.Str("component", l.component)
	}

	e.Msg(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// Debugf logs on debug level.
func (l *Logger) Debugf(format string, v ...any) { l.emit(log.Debug(), format, v...) }

// Infof logs on info level.
func (l *Logger) Infof(format string, v ...any) { l.emit(log.Info(), format, v...) }

// Warningf logs on warn level.
func (l *Logger) Warningf(format string, v ...any) { l.emit(log.Warn(), format, v...) }

// Errorf logs on error level.
func (l *Logger) Errorf(format string, v ...any) { l.emit(log.Error(), format, v...) }

// Printf logs on info level. It satisfies the migrate.Logger interface.
func (l *Logger) Printf(format string, v ...any) { l.emit(log.Info(), format, v...) }

// Verbose reports whether debug output is enabled.
func (l *Logger) Verbose() bool {
	return zerolog.GlobalLevel() <= zerolog.DebugLevel
}
