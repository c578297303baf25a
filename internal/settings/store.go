// Package settings holds the process-wide mod settings: the current value,
// its durable copy in a key-value store, and the stream of changes.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alfredjeanlab/modflags/internal/kv"
	"github.com/alfredjeanlab/modflags/internal/metrics"
	"github.com/alfredjeanlab/modflags/internal/model"
)

// DefaultKey is the storage key the settings payload is persisted under.
const DefaultKey = "mod_settings_v1"

// Store owns the current settings. Reads are lock-free; updates are
// serialized so that every update observes the result of the previous one.
type Store struct {
	kv     kv.KV
	key    string
	logger *slog.Logger

	current atomic.Pointer[model.Settings]

	mu      sync.Mutex // guards subs, dirty, closed; held for the whole of Update
	subs    map[*Subscription]struct{}
	dirty   bool // last write failed; the persisted copy is stale
	closed  bool
	loadErr error
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for recoverable failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// UpdateResult describes the outcome of Update.
type UpdateResult struct {
	Settings model.Settings `json:"settings"`
	Previous model.Settings `json:"previous"`
	// Changed is false when the updater returned the current value; no
	// notification is sent in that case.
	Changed bool `json:"changed"`
	// Persisted is true when a write to the key-value store was made and
	// succeeded during this update.
	Persisted bool `json:"persisted"`
}

// New loads the persisted settings from backend and returns a ready store.
// A missing, unreadable or corrupt payload yields the default settings; the
// cause is available from LoadErr.
func New(ctx context.Context, backend kv.KV, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		key:    DefaultKey,
		logger: slog.Default(),
		subs:   make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	initial := s.load(ctx)
	s.current.Store(&initial)
	return s
}

func (s *Store) load(ctx context.Context) model.Settings {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return model.DefaultSettings()
	}
	if err != nil {
		s.loadErr = &DecodeError{Key: s.key, Err: err}
		s.logger.Warn("reading persisted settings failed, using defaults", "key", s.key, "error", err)
		metrics.IncDecodeFallback()
		return model.DefaultSettings()
	}
	settings, err := Decode(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Key = s.key
		}
		s.loadErr = err
		s.logger.Warn("persisted settings are corrupt, using defaults", "key", s.key, "error", err)
		metrics.IncDecodeFallback()
		return model.DefaultSettings()
	}
	return settings
}

// Key returns the storage key.
func (s *Store) Key() string { return s.key }

// LoadErr returns the error that forced a fallback to defaults at startup,
// or nil.
func (s *Store) LoadErr() error { return s.loadErr }

// Current returns the current settings.
func (s *Store) Current() model.Settings {
	return *s.current.Load()
}

// Update applies f to the current settings. A changed result becomes the
// current value, is persisted and is delivered to every subscriber. If the
// write fails the new value stays current and subscribers are still
// notified; the returned error is a *PersistError.
func (s *Store) Update(ctx context.Context, f model.Updater) (UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := *s.current.Load()
	next := f(prev)
	res := UpdateResult{Settings: next, Previous: prev}

	if next.Equal(prev) {
		metrics.IncSettingsUpdate(false)
		if !s.dirty {
			return res, nil
		}
		// Retry a write that failed earlier.
		if err := s.persistLocked(ctx, next); err != nil {
			return res, err
		}
		res.Persisted = true
		return res, nil
	}

	s.current.Store(&next)
	res.Changed = true
	metrics.IncSettingsUpdate(true)

	err := s.persistLocked(ctx, next)
	res.Persisted = err == nil

	for sub := range s.subs {
		sub.push(next)
	}
	return res, err
}

// Flush retries a write that failed during an earlier Update. It is a no-op
// when the persisted copy is current.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.persistLocked(ctx, *s.current.Load())
}

func (s *Store) persistLocked(ctx context.Context, v model.Settings) error {
	data, err := Encode(v)
	if err == nil {
		err = s.kv.Set(ctx, s.key, data)
	}
	if err != nil {
		s.dirty = true
		metrics.IncPersistFailure()
		s.logger.Warn("persisting settings failed", "key", s.key, "error", err)
		return &PersistError{Key: s.key, Settings: v, Err: err}
	}
	s.dirty = false
	return nil
}

// Raw returns the stored record for the settings key, exactly as persisted.
func (s *Store) Raw(ctx context.Context) (*model.Entry, error) {
	if r, ok := s.kv.(kv.EntryReader); ok {
		e, err := r.GetEntry(ctx, s.key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.key, err)
		}
		return e, nil
	}
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}
	return &model.Entry{Key: s.key, Value: data}, nil
}

// Close ends every open subscription. The key-value store is not closed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	subs := make([]*Subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}
}
