// Package store persists conversation threads as one JSON array under a
// single key of a kv.Store.
//
// The whole collection is rewritten on every change. Access is serialized
// within one process; two processes writing the same backend race and the
// last writer wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/raphaelgruber/flirtassist/internal/kv"
	"github.com/raphaelgruber/flirtassist/internal/metrics"
	"github.com/raphaelgruber/flirtassist/internal/models"
)

// Key is the storage key holding the serialized thread list.
const Key = "flirtassist:threads:v1"

// ThreadStore owns the persisted collection of threads, most recent first.
type ThreadStore struct {
	mu      sync.Mutex
	kv      kv.Store
	logger  *slog.Logger
	metrics *metrics.Collector
}

// Option configures a ThreadStore.
type Option func(*ThreadStore)

// WithMetrics records load/save timings in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *ThreadStore) { s.metrics = c }
}

// New creates a store on top of backend.
func New(backend kv.Store, logger *slog.Logger, opts ...Option) *ThreadStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ThreadStore{kv: backend, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns all threads. Missing data yields an empty list. Data that
// does not parse is treated as empty as well and only logged; backend I/O
// failures are returned.
func (s *ThreadStore) Load(ctx context.Context) ([]models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save replaces the entire collection with threads.
func (s *ThreadStore) Save(ctx context.Context, threads []models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, threads)
}

// Upsert replaces the thread with the same ID in place, or prepends t.
// t is stored in its normalized shape (see models.Thread.Normalize).
func (s *ThreadStore) Upsert(ctx context.Context, t models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Normalize()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(all, func(x models.Thread) bool { return x.ID == t.ID })
	if idx >= 0 {
		all[idx] = t
	} else {
		all = slices.Insert(all, 0, t)
	}
	return s.save(ctx, all)
}

// Get returns the thread with id, or nil when absent.
func (s *ThreadStore) Get(ctx context.Context, id string) (*models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			t := all[i]
			return &t, nil
		}
	}
	return nil, nil
}

// Delete removes the thread with id. Unknown ids leave the collection as is.
func (s *ThreadStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(all, func(x models.Thread) bool { return x.ID == id })
	return s.save(ctx, kept)
}

func (s *ThreadStore) load(ctx context.Context) (threads []models.Thread, err error) {
	start := time.Now()
	defer func() { s.metrics.Since(metrics.OpStoreLoad, start, err) }()

	raw, found, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load threads: %w", err)
	}
	if !found || len(raw) == 0 {
		return []models.Thread{}, nil
	}

	if err := json.Unmarshal(raw, &threads); err != nil {
		s.logger.Warn("stored threads are unreadable, starting empty",
			"key", Key, "bytes", len(raw), "error", err)
		return []models.Thread{}, nil
	}
	if threads == nil {
		threads = []models.Thread{}
	}
	return threads, nil
}

func (s *ThreadStore) save(ctx context.Context, threads []models.Thread) (err error) {
	start := time.Now()
	defer func() { s.metrics.Since(metrics.OpStoreSave, start, err) }()

	if threads == nil {
		threads = []models.Thread{}
	}
	data, err := json.Marshal(threads)
	if err != nil {
		return fmt.Errorf("marshal threads: %w", err)
	}
	if err := s.kv.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("save threads: %w", err)
	}
	s.logger.Debug("threads saved", "count", len(threads), "bytes", len(data))
	return nil
}
