// Package settings owns the single dashboard document: it loads it with
// first-run defaults, merges partial updates into it and persists the result.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/dashboard"
	"github.com/nexus-dash/nexus/internal/events"
	"github.com/nexus-dash/nexus/internal/store"
)

// ErrCorruptDocument is returned when the stored document is not a JSON object.
var ErrCorruptDocument = errors.New("stored settings document is corrupt")

// Reasons reported in change events.
const (
	ReasonFirstRun = "first-run"
	ReasonSave     = "save"
	ReasonReset    = "reset"
	ReasonRestore  = "restore"
)

// Service serializes every read-modify-write of the document.
type Service struct {
	mu        sync.Mutex
	backend   store.Backend
	publisher events.Publisher
	key       string
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the change event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithKey sets the key reported in change events.
func WithKey(key string) Option {
	return func(s *Service) { s.key = key }
}

// New returns a Service on top of backend.
func New(backend store.Backend, opts ...Option) *Service {
	s := &Service{
		backend:   backend,
		publisher: &events.NoopPublisher{},
		key:       "dashboard",
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load returns the stored document with defaults filled in.
// The first Load on an empty store persists and returns the defaults.
func (s *Service) Load(ctx context.Context) (dashboard.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	observe(opLoad, err)

	return doc, err
}

// Save merges the JSON object raw into the stored document and persists the result.
// Fields raw omits, or sends with the wrong type, keep their stored value.
// A payload that is not a JSON object fails with dashboard.ErrNotObject before storage is touched.
func (s *Service) Save(ctx context.Context, raw []byte) (dashboard.Document, error) {
	doc, err := s.save(ctx, raw, ReasonSave)
	observe(opSave, err)

	return doc, err
}

// Restore is Save with a restore reason in the change event.
func (s *Service) Restore(ctx context.Context, raw []byte) (dashboard.Document, error) {
	doc, err := s.save(ctx, raw, ReasonRestore)
	observe(opRestore, err)

	return doc, err
}

// Reset overwrites the stored document with the defaults.
func (s *Service) Reset(ctx context.Context) (dashboard.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := dashboard.Default()

	err := s.write(ctx, doc)
	if err == nil {
		s.publish(ctx, events.TopicSettingsSaved, ReasonReset, doc)
	}

	observe(opReset, err)

	return doc, err
}

func (s *Service) load(ctx context.Context) (dashboard.Document, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, store.ErrNotFound) {
		doc := dashboard.Default()
		if err = s.write(ctx, doc); err != nil {
			return dashboard.Document{}, err
		}

		log.Info().Str("key", s.key).Msg("no settings stored, created defaults")
		s.publish(ctx, events.TopicSettingsCreated, ReasonFirstRun, doc)

		return doc, nil
	}

	if err != nil {
		return dashboard.Document{}, fmt.Errorf("read settings: %w", err)
	}

	doc, err := dashboard.Decode(data)
	if err != nil {
		return dashboard.Document{}, fmt.Errorf("%w: %v", ErrCorruptDocument, err) //nolint:errorlint
	}

	return doc, nil
}

func (s *Service) save(ctx context.Context, raw []byte, reason string) (dashboard.Document, error) {
	if _, err := dashboard.Decode(raw); err != nil {
		return dashboard.Document{}, err //nolint:wrapcheck
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base, created, err := s.base(ctx)
	if err != nil {
		return dashboard.Document{}, err
	}

	doc, err := dashboard.Normalize(raw, base)
	if err != nil {
		return dashboard.Document{}, err //nolint:wrapcheck
	}

	if err = s.write(ctx, doc); err != nil {
		return dashboard.Document{}, err
	}

	if created {
		log.Info().Str("key", s.key).Msg("no settings stored, created from first save")
		s.publish(ctx, events.TopicSettingsCreated, ReasonFirstRun, doc)
	}

	s.publish(ctx, events.TopicSettingsSaved, reason, doc)

	return doc, nil
}

// base is the document a save merges into, and whether the store was empty.
// A missing document merges into the defaults, a corrupt one is replaced.
func (s *Service) base(ctx context.Context) (dashboard.Document, bool, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return dashboard.Default(), true, nil
	}

	if err != nil {
		return dashboard.Document{}, false, fmt.Errorf("read settings: %w", err)
	}

	doc, err := dashboard.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("stored settings are corrupt, saving over defaults")
		return dashboard.Default(), false, nil
	}

	return doc, false, nil
}

func (s *Service) write(ctx context.Context, doc dashboard.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err = s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// publish never fails the operation, a lost notification is only logged.
func (s *Service) publish(ctx context.Context, topic, reason string, doc dashboard.Document) {
	err := s.publisher.Publish(ctx, topic, events.SettingsChanged{
		Key:      s.key,
		Reason:   reason,
		Document: doc,
		At:       s.now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("can't publish settings event")
	}
}
