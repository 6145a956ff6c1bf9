package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-dash/nexus/internal/logger"
	adapter "github.com/nexus-dash/nexus/internal/logger/adapter/fiber"
)

// accessLine is the json layout of one access log entry.
type accessLine struct {
	IP     net.IP `json:"IP"`
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	Error  string `json:"error"`
}

var consoleJSON = logger.Log{
	EnableAccessLogToConsole: true,
	Console:                  logger.Console{Enabled: true},
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		want       *accessLine
	}{
		{
			name:       "no writer enabled no output",
			targetPath: "/",
		},
		{
			name:       "console enabled but access log to console disabled",
			config:     adapter.Config{Log: logger.Log{Console: logger.Console{Enabled: true}}},
			targetPath: "/",
		},
		{
			name:       "get root",
			config:     adapter.Config{Log: consoleJSON},
			targetPath: "/",
			want:       &accessLine{Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "double slash keeps the raw path",
			config:     adapter.Config{Log: consoleJSON},
			targetPath: "//settings",
			want:       &accessLine{Status: 404, URI: "//settings", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "query string is logged",
			config:     adapter.Config{Log: consoleJSON},
			targetPath: "/?tab=widgets",
			want:       &accessLine{Status: 200, URI: "/?tab=widgets", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "handler error is logged",
			config:     adapter.Config{Log: consoleJSON},
			targetPath: "/fail",
			want: &accessLine{
				Status: 503, URI: "/fail", Method: fiber.MethodGet, Host: "example.com", Error: "store offline",
			},
		},
		{
			name: "check alive is skipped",
			config: adapter.Config{
				Log: logger.Log{
					EnableAccessLogToConsole: true,
					DisableCheckAlive:        true,
					Console:                  logger.Console{Enabled: true},
				},
				CheckAliveURI: "/checkalive",
			},
			targetPath: "/checkalive",
		},
		{
			name: "check alive is logged unless disabled",
			config: adapter.Config{
				Log:           consoleJSON,
				CheckAliveURI: "/checkalive",
			},
			targetPath: "/checkalive",
			want:       &accessLine{Status: 200, URI: "/checkalive", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name: "next skips the middleware",
			config: adapter.Config{
				Log:  consoleJSON,
				Next: func(*fiber.Ctx) bool { return true },
			},
			targetPath: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := testMiddlewareHelper(t, tt.targetPath, tt.config)

			if tt.want == nil {
				assert.Empty(t, output)
				return
			}

			require.NotEmpty(t, output)

			var got accessLine
			require.NoError(t, json.Unmarshal([]byte(output), &got))

			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, net.ParseIP("0.0.0.0"), got.IP)
			assert.Equal(t, tt.want.URI, got.URI)
			assert.Equal(t, tt.want.Error, got.Error)
		})
	}
}

func TestNewWritesAccessFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	app := newTestApp(adapter.Config{Log: logger.Log{
		File: logger.LogFile{Enabled: true, Path: dir, AccessLog: "access.log"},
	}})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/?from=file", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Performance"))

	content, err := os.ReadFile(filepath.Join(dir, "access.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), `"URI":"/?from=file"`), string(content))
}

func newTestApp(cfg adapter.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
	})

	app.Use(adapter.New(cfg))

	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString("hello test")
	})

	app.Get("/checkalive", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})

	app.Get("/fail", func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "store offline")
	})

	return app
}

func testMiddlewareHelper(t *testing.T, targetPath string, cfg adapter.Config) string {
	t.Helper()

	stdout := os.Stdout

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w

	// the writers pick up os.Stdout when the middleware is built
	app := newTestApp(cfg)

	_, testErr := app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), -1)

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	out := <-outC

	require.NoError(t, testErr)

	return out
}
