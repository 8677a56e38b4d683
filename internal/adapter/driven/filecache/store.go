// Package filecache persists the snapshot as a single JSON document on disk.
package filecache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*Store)(nil)

// Store reads and writes the snapshot cache file. Writes are atomic
// (write-to-temp, rename) so a crashed process never leaves a half-written
// document behind. The cache is an optimization; callers treat failures as
// soft.
type Store struct {
	path string
}

// NewStore creates a Store writing to the given file path. The parent
// directory is created on first save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted snapshot. Returns (nil, nil) when no cache file
// exists yet. Items written by an older schema decode with zero-value
// defaults for any fields they lack.
func (s *Store) Load(_ context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cache file: %w", err)
	}
	if snap.ByTabID == nil {
		snap.ByTabID = map[string][]model.PullRequestItem{}
	}

	return &snap, nil
}

// Save overwrites the cache file atomically.
func (s *Store) Save(_ context.Context, snap model.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}
