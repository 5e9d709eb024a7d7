// Package cache provides a TTL key/value store that lives in memory and is
// persisted to a single JSON file between runs.
//
// Usage:
//
//	s := cache.Open(path, logger)
//	defer s.Close()
//	s.Set("key", value, time.Hour)
//	var v T
//	if s.Get("key", &v) {
//	    // use cached value
//	}
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	cacheDirPerm  = 0o750
	cacheFilePerm = 0o600
)

// Entry is one cached value with its expiry, also the on-disk format.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is the process-wide cache. Values are kept JSON-encoded so that a
// reloaded store serves exactly what was stored before the restart.
type Store struct {
	mu     sync.RWMutex
	items  map[string]Entry
	path   string
	logger *slog.Logger
	now    func() time.Time
	closed bool
}

// Option tunes a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store that persists to path. Nothing is read.
func New(path string, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{
		items:  make(map[string]Entry),
		path:   path,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and loads path into it. A missing or malformed file
// leaves the store empty; only the latter is logged.
func Open(path string, logger *slog.Logger, opts ...Option) *Store {
	s := New(path, logger, opts...)
	err := s.load()
	switch {
	case err == nil:
		s.logger.Debug("cache loaded", "path", path, "entries", len(s.items))
	case errors.Is(err, os.ErrNotExist):
		s.logger.Debug("no cache file yet", "path", path)
	default:
		s.logger.Warn("cache load failed, starting empty", "path", path, "error", err)
	}
	return s
}

func (s *Store) load() error {
	if s.path == "" {
		return os.ErrNotExist
	}
	data, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		return err
	}

	items := make(map[string]Entry)
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	// a file holding "null" decodes without error
	if items == nil {
		items = make(map[string]Entry)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Get decodes the value stored under key into dst. It returns false when the
// key was never set, has expired, or cannot be decoded into dst.
func (s *Store) Get(key string, dst any) bool {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || e.Expired(s.now()) {
		return false
	}
	if err := json.Unmarshal(e.Value, dst); err != nil {
		s.logger.Warn("cached value does not decode", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key for ttl, replacing any previous entry.
func (s *Store) Set(key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %q: %w", key, err)
	}

	s.mu.Lock()
	s.items[key] = Entry{Value: raw, ExpiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Flush writes every unexpired entry to the cache file, replacing it.
func (s *Store) Flush() error {
	if s.path == "" {
		return nil
	}

	now := s.now()
	s.mu.RLock()
	live := make(map[string]Entry, len(s.items))
	for k, e := range s.items {
		if !e.Expired(now) {
			live[k] = e
		}
	}
	s.mu.RUnlock()

	data, err := json.Marshal(live)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), cacheDirPerm); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, cacheFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.logger.Debug("cache saved", "path", s.path, "entries", len(live))
	return nil
}

// Close flushes the store once. Later calls are no-ops.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Flush()
	if err != nil {
		s.logger.Error("cache save failed", "path", s.path, "error", err)
	}
	return err
}
