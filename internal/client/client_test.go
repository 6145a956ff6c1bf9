package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-dash/nexus/internal/dashboard"
)

// testHandler records the last request and answers with a canned response.
type testHandler struct {
	method      string
	path        string
	body        string
	contentType string

	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.contentType = r.Header.Get("Content-Type")

	data, _ := io.ReadAll(r.Body)
	h.body = string(data)

	w.Header().Set("Content-Type", "application/json")

	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	}

	_, _ = io.WriteString(w, h.responseBody)
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(srv.URL+"/", nil)
}

func TestLoad(t *testing.T) {
	h := &testHandler{responseBody: `{"widgets":[{"id":"1","type":"clock","title":"Clock","config":{}}],"appTitle":"Home","showTitle":true}`}
	c := newTestClient(t, h)

	d, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, h.method)
	assert.Equal(t, SettingsPath, h.path)
	assert.Equal(t, "Home", d.AppTitle)
	require.Len(t, d.Widgets, 1)
	assert.Equal(t, dashboard.WidgetClock, d.Widgets[0].Type)
}

func TestSave(t *testing.T) {
	h := &testHandler{responseBody: `{"success":true}`}
	c := newTestClient(t, h)

	d := dashboard.Default()
	d.AppTitle = "Saved"

	require.NoError(t, c.Save(context.Background(), d))

	assert.Equal(t, http.MethodPost, h.method)
	assert.Equal(t, "application/json", h.contentType)
	assert.Contains(t, h.body, `"appTitle":"Saved"`)
	assert.Contains(t, h.body, `"lockWidgets":false`)
}

func TestErrors(t *testing.T) {
	testCases := []struct {
		name        string
		handler     *testHandler
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "api error body",
			handler:     &testHandler{statusCode: http.StatusInternalServerError, responseBody: `{"error":"Failed to save settings"}`},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to save settings",
		},
		{
			name:        "plain text body",
			handler:     &testHandler{statusCode: http.StatusBadGateway, responseBody: "bad gateway\n"},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "bad gateway",
		},
		{
			name:        "unconfirmed save",
			handler:     &testHandler{responseBody: `{"success":false}`},
			wantStatus:  http.StatusOK,
			wantMessage: "server did not confirm the save",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := newTestClient(t, tc.handler).Save(context.Background(), dashboard.Default())

			var se *StatusError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tc.wantStatus, se.StatusCode)
			assert.Equal(t, tc.wantMessage, se.Message)
		})
	}
}

func TestLoadUndecodableBody(t *testing.T) {
	c := newTestClient(t, &testHandler{responseBody: `not json`})

	_, err := c.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestCanceledContext(t *testing.T) {
	c := newTestClient(t, &testHandler{responseBody: `{}`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
