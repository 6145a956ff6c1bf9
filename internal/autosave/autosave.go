// Package autosave keeps a local dashboard document in sync with a settings
// server. Edits are debounced and saved in order by a single worker.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/dashboard"
)

const (
	// DefaultQuietPeriod is the time without edits before a save is issued.
	DefaultQuietPeriod = time.Second

	defaultSaveTimeout = 10 * time.Second
)

var (
	// ErrNotLoaded is returned for edits before the first Load.
	ErrNotLoaded = errors.New("document not loaded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("syncer closed")

	// ErrSyncFailed is returned by Flush while saves are disabled after a failure.
	ErrSyncFailed = errors.New("sync failed, retry required")
)

// State is the lifecycle of the local document.
type State int

const (
	// StateNotLoaded is the state before the first Load.
	StateNotLoaded State = iota
	// StateLoaded means the document was loaded and not edited since.
	StateLoaded
	// StateDirty means there are edits not yet sent to the server.
	StateDirty
	// StateSaving means a save is in flight.
	StateSaving
	// StateSaved means the server holds the latest edit.
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not-loaded"
	case StateLoaded:
		return "loaded"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is passed to subscribers on every change.
type Status struct {
	State      State
	SyncFailed bool
}

// Remote is the settings server.
type Remote interface {
	Load(ctx context.Context) (dashboard.Document, error)
	Save(ctx context.Context, d dashboard.Document) error
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithQuietPeriod sets the debounce period.
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.quiet = d
		}
	}
}

// WithSaveTimeout bounds saves started by the debounce timer.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

type job struct {
	ctx   context.Context //nolint:containedctx
	timed bool
	doc   dashboard.Document
	gen   uint64
	done  chan struct{}
	err   error
}

func (j *job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Syncer owns the local copy of the document.
type Syncer struct {
	remote      Remote
	quiet       time.Duration
	saveTimeout time.Duration

	mu               sync.Mutex
	doc              dashboard.Document
	state            State
	loadedFromRemote bool
	syncFailed       bool
	gen              uint64
	timer            *time.Timer
	subscribers      []func(Status)
	queue            []*job
	last             *job
	closed           bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// New starts a Syncer and its save worker. Call Close to stop it.
func New(remote Remote, opts ...Option) *Syncer {
	s := &Syncer{
		remote:      remote,
		quiet:       DefaultQuietPeriod,
		saveTimeout: defaultSaveTimeout,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)

	go s.run()

	return s
}

// Subscribe registers fn for status changes. fn must not call back into the Syncer.
func (s *Syncer) Subscribe(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, fn)
}

// Status returns the current status.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{State: s.state, SyncFailed: s.syncFailed}
}

// Document returns a copy of the local document.
func (s *Syncer) Document() dashboard.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.doc.Clone()
}

// Load fetches the document from the server. On failure the defaults are
// used locally and autosave stays disabled until Retry succeeds.
func (s *Syncer) Load(ctx context.Context) error {
	d, err := s.remote.Load(ctx)

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.stopTimer()
	s.gen++

	if err != nil {
		s.doc = dashboard.Default()
		s.syncFailed = true
		s.last = nil
	} else {
		s.doc = d
		s.loadedFromRemote = true
		s.syncFailed = false
		s.last = nil
	}

	s.state = StateLoaded
	notify := s.notifier()
	s.mu.Unlock()

	notify()

	if err != nil {
		log.Error().Err(err).Msg("can't load settings, using defaults")
		return fmt.Errorf("load settings: %w", err)
	}

	return nil
}

// Update applies fn to the local document and schedules a save after the
// quiet period. Every call restarts the period.
func (s *Syncer) Update(fn func(d *dashboard.Document)) error {
	s.mu.Lock()

	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.state == StateNotLoaded:
		s.mu.Unlock()
		return ErrNotLoaded
	}

	fn(&s.doc)
	s.gen++
	s.state = StateDirty

	s.stopTimer()
	s.timer = time.AfterFunc(s.quiet, s.quietPeriodElapsed)

	notify := s.notifier()
	s.mu.Unlock()

	notify()

	return nil
}

// Flush saves pending edits now and waits for the result. A save that is
// already queued or in flight for the latest edit is waited for instead.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	var j *job

	switch {
	case s.last != nil && s.last.gen == s.gen && !s.last.finished():
		j = s.last
	case s.state != StateDirty:
		s.mu.Unlock()
		return nil
	case s.syncFailed:
		s.mu.Unlock()
		return ErrSyncFailed
	default:
		s.stopTimer()
		j = s.enqueue(ctx, false)
	}

	s.mu.Unlock()

	return wait(ctx, j)
}

// Retry clears a sync failure. Without a successful initial load it loads
// again and replaces the local document, otherwise it pushes the local one.
func (s *Syncer) Retry(ctx context.Context) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	if !s.loadedFromRemote {
		s.mu.Unlock()
		return s.Load(ctx)
	}

	s.stopTimer()
	j := s.enqueue(ctx, false)
	s.mu.Unlock()

	return wait(ctx, j)
}

// Close flushes pending edits and stops the worker. It returns ErrSyncFailed
// when edits are left unsaved. Closing twice is a no-op.
func (s *Syncer) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	if errors.Is(err, ErrClosed) {
		return nil
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	s.stopTimer()

	// edits made after the flush above
	var final *job
	if s.state == StateDirty && !s.syncFailed {
		final = s.enqueue(ctx, false)
	}

	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()

	if final != nil && final.err != nil {
		err = final.err
	}

	if s.Status().State == StateDirty {
		log.Warn().Msg("closing with unsaved edits")

		if err == nil {
			err = ErrSyncFailed
		}
	}

	return err
}

func (s *Syncer) quietPeriodElapsed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer = nil

	if s.closed || s.syncFailed || s.state != StateDirty {
		return
	}

	s.enqueue(context.Background(), true)
}

// enqueue snapshots the document for the worker. Callers hold mu.
// Timed saves are bounded by saveTimeout.
func (s *Syncer) enqueue(ctx context.Context, timed bool) *job {
	j := &job{
		ctx:   ctx,
		timed: timed,
		doc:   s.doc.Clone(),
		gen:   s.gen,
		done:  make(chan struct{}),
	}

	s.queue = append(s.queue, j)
	s.last = j

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return j
}

func (s *Syncer) next() (*job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil, false
	}

	j := s.queue[0]
	s.queue = s.queue[1:]

	return j, true
}

func (s *Syncer) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.done:
			s.drain()
			return
		}
	}
}

func (s *Syncer) drain() {
	for {
		j, ok := s.next()
		if !ok {
			return
		}

		j.err = s.save(j)
		close(j.done)
	}
}

func (s *Syncer) save(j *job) error {
	ctx := j.ctx
	if j.timed {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.saveTimeout)
		defer cancel()
	}

	s.mu.Lock()
	s.state = StateSaving
	notify := s.notifier()
	s.mu.Unlock()

	notify()

	err := s.remote.Save(ctx, j.doc)

	s.mu.Lock()

	if err != nil {
		s.syncFailed = true
		s.state = StateDirty
	} else {
		s.syncFailed = false

		if j.gen == s.gen {
			s.state = StateSaved
		} else {
			s.state = StateDirty
		}
	}

	notify = s.notifier()
	s.mu.Unlock()

	notify()

	if err != nil {
		log.Error().Err(err).Msg("can't save settings, autosave disabled until retry")
		return fmt.Errorf("save settings: %w", err)
	}

	log.Debug().Uint64("generation", j.gen).Msg("settings saved")

	return nil
}

// stopTimer cancels a pending debounce. Callers hold mu.
func (s *Syncer) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// notifier captures the status for the subscribers. Callers hold mu and
// call the result after unlocking.
func (s *Syncer) notifier() func() {
	st := Status{State: s.state, SyncFailed: s.syncFailed}
	subs := append([]func(Status){}, s.subscribers...)

	return func() {
		for _, fn := range subs {
			fn(st)
		}
	}
}

func wait(ctx context.Context, j *job) error {
	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
