package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-dash/nexus/internal/dashboard"
	"github.com/nexus-dash/nexus/internal/events"
	"github.com/nexus-dash/nexus/internal/store"
)

var errBackend = errors.New("backend offline")

// memoryBackend is a store.Backend with failure injection.
type memoryBackend struct {
	mu       sync.Mutex
	data     []byte
	writes   int
	readErr  error
	writeErr error
}

func (m *memoryBackend) Read(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, m.readErr
	}

	if m.data == nil {
		return nil, store.ErrNotFound
	}

	return append([]byte(nil), m.data...), nil
}

func (m *memoryBackend) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}

	m.data = append([]byte(nil), data...)
	m.writes++

	return nil
}

func (m *memoryBackend) Close() error { return nil }

func (m *memoryBackend) stored(t *testing.T) map[string]any {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	var out map[string]any
	require.NoError(t, json.Unmarshal(m.data, &out))

	return out
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	topics []string
	events []events.SettingsChanged
	err    error
}

func (r *recorder) Publish(_ context.Context, topic string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.topics = append(r.topics, topic)
	if e, ok := event.(events.SettingsChanged); ok {
		r.events = append(r.events, e)
	}

	return r.err
}

func (r *recorder) Close() error { return nil }

func newService(t *testing.T) (*Service, *memoryBackend, *recorder) {
	t.Helper()

	backend := &memoryBackend{}
	rec := &recorder{}

	return New(backend, WithPublisher(rec), WithKey("dashboard")), backend, rec
}

func TestLoadFirstRunPersistsDefaults(t *testing.T) {
	svc, backend, rec := newService(t)
	ctx := context.Background()

	first, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Default(), first)
	assert.Equal(t, 1, backend.writes)

	second, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.writes, "the second load must not write again")

	assert.Equal(t, []string{events.TopicSettingsCreated}, rec.topics)
	assert.Equal(t, ReasonFirstRun, rec.events[0].Reason)
}

func TestLoadFreshStoreHasBuiltInWidgets(t *testing.T) {
	svc, _, _ := newService(t)

	doc, err := svc.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, doc.Widgets, 4)

	types := make([]dashboard.WidgetType, 0, len(doc.Widgets))
	for _, w := range doc.Widgets {
		types = append(types, w.Type)
		assert.NotNil(t, w.Config)
	}

	assert.Equal(t, []dashboard.WidgetType{
		dashboard.WidgetClock, dashboard.WidgetWeather, dashboard.WidgetStocks, dashboard.WidgetShortcuts,
	}, types)
	assert.Equal(t, dashboard.DefaultAppTitle, doc.AppTitle)
	assert.True(t, doc.ShowTitle)
	assert.True(t, doc.EnableSearchPreview)
	assert.False(t, doc.LockWidgets)
}

func TestSaveRejectsNonObjects(t *testing.T) {
	payloads := []string{`hello`, `"hello"`, `null`, `[]`, `[{"appTitle":"x"}]`, `42`, `{"appTitle":`, ``}

	for _, p := range payloads {
		t.Run(fmt.Sprintf("%q", p), func(t *testing.T) {
			svc, backend, rec := newService(t)
			require.NoError(t, backend.Write(context.Background(), []byte(`{"appTitle":"Keep"}`)))

			_, err := svc.Save(context.Background(), []byte(p))
			require.ErrorIs(t, err, dashboard.ErrNotObject)

			assert.Equal(t, 1, backend.writes, "storage must stay untouched")
			assert.Equal(t, "Keep", backend.stored(t)["appTitle"])
			assert.Empty(t, rec.topics)
		})
	}
}

func TestSaveDefaultsMistypedFields(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, []byte(`{"widgets":"nope","appTitle":7,"showTitle":"yes","enableSearchPreview":null}`))
	require.NoError(t, err)

	doc, err := svc.Load(ctx)
	require.NoError(t, err)

	def := dashboard.Default()
	assert.Equal(t, def.Widgets, doc.Widgets)
	assert.Equal(t, def.AppTitle, doc.AppTitle)
	assert.Equal(t, def.ShowTitle, doc.ShowTitle)
	assert.Equal(t, def.EnableSearchPreview, doc.EnableSearchPreview)
}

func TestSavePartialMergesAndIsIdempotent(t *testing.T) {
	svc, backend, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, []byte(`{"showTitle":false,"lockWidgets":true}`))
	require.NoError(t, err)

	first, err := svc.Save(ctx, []byte(`{"appTitle":"X"}`))
	require.NoError(t, err)
	assert.Equal(t, "X", first.AppTitle)
	assert.False(t, first.ShowTitle, "earlier fields survive a partial save")
	assert.True(t, first.LockWidgets)
	assert.Len(t, first.Widgets, 4)

	storedOnce := backend.stored(t)

	second, err := svc.Save(ctx, []byte(`{"appTitle":"X"}`))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, storedOnce, backend.stored(t))
}

func TestSaveLoadExactRoundTrip(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	payload := `{"widgets":[],"appTitle":"Home","showTitle":false,"enableSearchPreview":true,"lockWidgets":false}`

	_, err := svc.Save(ctx, []byte(payload))
	require.NoError(t, err)

	doc, err := svc.Load(ctx)
	require.NoError(t, err)

	got, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(got))
}

func TestSaveDropsUnknownTopLevelKeys(t *testing.T) {
	svc, backend, _ := newService(t)

	_, err := svc.Save(context.Background(), []byte(`{"appTitle":"Y","theme":"dark"}`))
	require.NoError(t, err)

	stored := backend.stored(t)
	assert.NotContains(t, stored, "theme")
	assert.Equal(t, "Y", stored["appTitle"])
}

func TestReorderPersists(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, []byte(`{"widgets":[
		{"id":"a","type":"notes","title":"A","config":{}},
		{"id":"b","type":"clock","title":"B","config":{"showDate":true}},
		{"id":"c","type":"quote","title":"C","config":{"quoteText":"q"}}
	]}`))
	require.NoError(t, err)

	doc, err := svc.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, doc.Reorder([]string{"c", "a", "b"}))

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = svc.Save(ctx, raw)
	require.NoError(t, err)

	reloaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, reloaded.IDs())
	assert.Equal(t, "q", reloaded.Widgets[0].Config["quoteText"])
}

func TestLoadCorruptDocument(t *testing.T) {
	svc, backend, _ := newService(t)
	backend.data = []byte(`["not","an","object"]`)

	_, err := svc.Load(context.Background())
	require.ErrorIs(t, err, ErrCorruptDocument)
	assert.Equal(t, 0, backend.writes, "a corrupt document is never overwritten by a load")
}

func TestSaveReplacesCorruptDocument(t *testing.T) {
	svc, backend, _ := newService(t)
	backend.data = []byte(`garbage`)

	doc, err := svc.Save(context.Background(), []byte(`{"appTitle":"Fixed"}`))
	require.NoError(t, err)
	assert.Equal(t, "Fixed", doc.AppTitle)
	assert.Len(t, doc.Widgets, 4)

	_, err = svc.Load(context.Background())
	require.NoError(t, err)
}

func TestBackendFailures(t *testing.T) {
	testCases := []struct {
		name     string
		readErr  error
		writeErr error
		call     func(*Service) error
	}{
		{
			name:    "load read failure",
			readErr: errBackend,
			call:    func(s *Service) error { _, err := s.Load(context.Background()); return err },
		},
		{
			name:     "first run write failure",
			writeErr: errBackend,
			call:     func(s *Service) error { _, err := s.Load(context.Background()); return err },
		},
		{
			name:    "save read failure",
			readErr: errBackend,
			call:    func(s *Service) error { _, err := s.Save(context.Background(), []byte(`{}`)); return err },
		},
		{
			name:     "save write failure",
			writeErr: errBackend,
			call:     func(s *Service) error { _, err := s.Save(context.Background(), []byte(`{}`)); return err },
		},
		{
			name:     "reset write failure",
			writeErr: errBackend,
			call:     func(s *Service) error { _, err := s.Reset(context.Background()); return err },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, backend, rec := newService(t)
			backend.readErr = tc.readErr
			backend.writeErr = tc.writeErr

			err := tc.call(svc)
			require.ErrorIs(t, err, errBackend)
			assert.NotErrorIs(t, err, dashboard.ErrNotObject)
			assert.Empty(t, rec.topics, "failed operations publish nothing")
		})
	}
}

func TestPublishFailureDoesNotFailSave(t *testing.T) {
	svc, _, rec := newService(t)
	rec.err = errors.New("nats down") //nolint:goerr113

	doc, err := svc.Save(context.Background(), []byte(`{"appTitle":"Still saved"}`))
	require.NoError(t, err)
	assert.Equal(t, "Still saved", doc.AppTitle)
	assert.Equal(t, []string{events.TopicSettingsCreated, events.TopicSettingsSaved}, rec.topics)
}

func TestReset(t *testing.T) {
	svc, _, rec := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, []byte(`{"appTitle":"Custom","widgets":[]}`))
	require.NoError(t, err)

	doc, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Default(), doc)

	loaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Default(), loaded)
	assert.Equal(t, ReasonReset, rec.events[len(rec.events)-1].Reason)
}

func TestRestorePublishesRestoreReason(t *testing.T) {
	svc, _, rec := newService(t)
	ctx := context.Background()

	_, err := svc.Load(ctx)
	require.NoError(t, err)

	_, err = svc.Restore(ctx, []byte(`{"appTitle":"Backup"}`))
	require.NoError(t, err)
	require.Len(t, rec.events, 2)
	assert.Equal(t, ReasonRestore, rec.events[1].Reason)
	assert.Equal(t, "dashboard", rec.events[1].Key)
}

func TestFirstSaveOnEmptyStorePublishesCreated(t *testing.T) {
	svc, backend, rec := newService(t)
	ctx := context.Background()

	doc, err := svc.Save(ctx, []byte(`{"appTitle":"Fresh"}`))
	require.NoError(t, err)
	assert.Equal(t, "Fresh", doc.AppTitle)
	assert.Equal(t, 1, backend.writes)

	assert.Equal(t, []string{events.TopicSettingsCreated, events.TopicSettingsSaved}, rec.topics)
	assert.Equal(t, ReasonFirstRun, rec.events[0].Reason)
	assert.Equal(t, ReasonSave, rec.events[1].Reason)
	assert.Equal(t, "Fresh", rec.events[1].Document.AppTitle)

	// the document exists now
	_, err = svc.Save(ctx, []byte(`{"appTitle":"Again"}`))
	require.NoError(t, err)
	assert.Equal(t, events.TopicSettingsSaved, rec.topics[len(rec.topics)-1])
	assert.Len(t, rec.topics, 3)
}

func TestConcurrentPartialSavesAreSerialized(t *testing.T) {
	svc, backend, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Load(ctx)
	require.NoError(t, err)

	payloads := []string{
		`{"appTitle":"Concurrent"}`,
		`{"showTitle":false}`,
		`{"enableSearchPreview":false}`,
		`{"lockWidgets":true}`,
	}

	var wg sync.WaitGroup
	for _, p := range payloads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, saveErr := svc.Save(ctx, []byte(p))
			assert.NoError(t, saveErr)
		}()
	}
	wg.Wait()

	doc, err := svc.Load(ctx)
	require.NoError(t, err)

	// every merge saw the result of the previous one
	assert.Equal(t, "Concurrent", doc.AppTitle)
	assert.False(t, doc.ShowTitle)
	assert.False(t, doc.EnableSearchPreview)
	assert.True(t, doc.LockWidgets)
	assert.Equal(t, 1+len(payloads), backend.writes)
}

func TestServiceOverFileBackend(t *testing.T) {
	backend, err := store.NewFile(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	svc := New(backend)
	ctx := context.Background()

	_, err = svc.Save(ctx, []byte(`{"appTitle":"On disk"}`))
	require.NoError(t, err)

	// a new service over the same file sees the saved document
	doc, err := New(backend).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "On disk", doc.AppTitle)
	assert.Len(t, doc.Widgets, 4)
}

func TestOperationsCounter(t *testing.T) {
	svc, _, _ := newService(t)

	before := testutil.ToFloat64(operations.WithLabelValues(opSave, resultRejected))

	_, err := svc.Save(context.Background(), []byte(`"hello"`))
	require.Error(t, err)

	assert.InDelta(t, before+1, testutil.ToFloat64(operations.WithLabelValues(opSave, resultRejected)), 0.001)
}
