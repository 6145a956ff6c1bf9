package gorm_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	adapter "github.com/nexus-dash/nexus/internal/logger/adapter/gorm"
)

func TestTrace(t *testing.T) {
	query := func() (string, int64) { return "SELECT * FROM settings", 1 }

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		want    string
		wantOut bool
	}{
		{
			name:    "error is logged",
			level:   gormlogger.Warn,
			begin:   time.Now(),
			err:     errors.New("disk I/O error"), //nolint:goerr113
			want:    `"level":"error"`,
			wantOut: true,
		},
		{
			name:  "record not found is not logged",
			level: gormlogger.Warn,
			begin: time.Now(),
			err:   gorm.ErrRecordNotFound,
		},
		{
			name:    "slow statement is a warning",
			level:   gormlogger.Warn,
			begin:   time.Now().Add(-time.Second),
			want:    `"level":"warn"`,
			wantOut: true,
		},
		{
			name:  "fast statement on warn level is dropped",
			level: gormlogger.Warn,
			begin: time.Now(),
		},
		{
			name:    "info level logs every statement",
			level:   gormlogger.Info,
			begin:   time.Now(),
			want:    `"sql":"SELECT * FROM settings"`,
			wantOut: true,
		},
		{
			name:  "silent drops errors",
			level: gormlogger.Silent,
			begin: time.Now(),
			err:   errors.New("disk I/O error"), //nolint:goerr113
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			l := adapter.New().
				WithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel)).
				WithSlowThreshold(100 * time.Millisecond).
				LogMode(tt.level)

			l.Trace(context.Background(), tt.begin, query, tt.err)

			if !tt.wantOut {
				assert.Empty(t, buf.String())
				return
			}

			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), `"component":"gorm"`)
		})
	}
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer

	l := adapter.New().WithLogger(zerolog.New(&buf)).LogMode(gormlogger.Warn)

	l.Info(context.Background(), "hidden %d", 1)
	l.Warn(context.Background(), "shown %d", 2)
	l.Error(context.Background(), "shown %d", 3)

	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "shown 3")
}
