// Package ingest drives per-document processing: acquire raw bytes,
// extract text with OCR fallback, parse, score, and hand off the
// serialized document, with bounded retry around the whole sequence.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// SourceStore provides raw document bytes by key.
type SourceStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// FetchFunc fetches raw bytes from the external origin. Blocking
// network I/O is expected here; callers bound concurrency.
type FetchFunc func(ctx context.Context, key string) ([]byte, error)

// CacheStoreConfig configures a cache-first source store.
type CacheStoreConfig struct {
	// Fs is the cache filesystem. Defaults to an in-memory fs, which
	// makes the store a session cache only.
	Fs afero.Fs

	// Dir is the cache directory within Fs.
	Dir string

	// Fetch retrieves bytes on a cache miss.
	Fetch FetchFunc

	// MinRequestDelay is an advisory minimum delay between consecutive
	// origin fetches, for callers repeatedly hitting the same external
	// host. Zero disables the delay.
	MinRequestDelay time.Duration

	Logger hclog.Logger
}

// CacheStore is a cache-first SourceStore: a hit on the cache
// filesystem short-circuits the origin fetch, and every successful
// fetch is written back to the cache.
type CacheStore struct {
	fs       afero.Fs
	dir      string
	fetch    FetchFunc
	minDelay time.Duration
	logger   hclog.Logger

	mu        sync.Mutex
	lastFetch time.Time
}

// NewCacheStore creates a cache-first store.
func NewCacheStore(cfg CacheStoreConfig) (*CacheStore, error) {
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("fetch function is required")
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewMemMapFs()
	}
	if cfg.Dir == "" {
		cfg.Dir = "cache"
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if err := cfg.Fs.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &CacheStore{
		fs:       cfg.Fs,
		dir:      cfg.Dir,
		fetch:    cfg.Fetch,
		minDelay: cfg.MinRequestDelay,
		logger:   cfg.Logger.Named("source-cache"),
	}, nil
}

// Fetch implements SourceStore.
func (s *CacheStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	path := s.cachePath(key)

	if data, err := afero.ReadFile(s.fs, path); err == nil {
		s.logger.Debug("cache hit", "key", key, "bytes", len(data))
		return data, nil
	}

	if err := s.throttle(ctx); err != nil {
		return nil, err
	}

	data, err := s.fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}

	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		// A cache write failure does not fail the fetch.
		s.logger.Warn("failed to write cache entry", "key", key, "error", err)
	}
	s.logger.Debug("cache miss, fetched from origin", "key", key, "bytes", len(data))
	return data, nil
}

// throttle enforces the advisory minimum inter-request delay.
func (s *CacheStore) throttle(ctx context.Context) error {
	if s.minDelay <= 0 {
		return nil
	}

	s.mu.Lock()
	now := time.Now()
	wait := s.minDelay - now.Sub(s.lastFetch)
	if wait <= 0 {
		s.lastFetch = now
		s.mu.Unlock()
		return nil
	}
	// Reserve the slot so concurrent callers queue behind this one.
	s.lastFetch = now.Add(wait)
	s.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// cachePath maps a source key to a cache file path.
func (s *CacheStore) cachePath(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "?", "_").Replace(key)
	return filepath.Join(s.dir, safe)
}
