// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package state persists the per-stream scan watermarks between process
// runs. The on-disk format is a flat JSON object mapping string keys to
// string values: for each stream an ISO-8601 timestamp under
// "{stream}_updated_at" and a tiebreaker uuid under "{stream}_last_id".
//
// Writes are atomic (write-to-temp, fsync, rename) and always serialize the
// full mapping, so the file's key set only ever grows. A missing or corrupt
// file is treated as an empty mapping; every stream then restarts from the
// configured default watermark. Single-writer discipline is enforced
// externally by the PID-file lock.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/models"
)

// FileStorage reads and writes the raw state mapping.
type FileStorage struct {
	path string
}

// NewFileStorage creates storage backed by the file at path. The file and
// its parent directory are created on first save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the mapping from disk. A missing file yields an empty mapping;
// a file that cannot be parsed is logged and treated the same way.
func (s *FileStorage) Load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		logging.Warn().
			Str("path", s.path).
			Err(err).
			Msg("State file is corrupt, starting from an empty mapping")
		return map[string]string{}, nil
	}
	return values, nil
}

// Save durably replaces the mapping on disk. The new content is written to
// a temporary file in the same directory, synced, and renamed over the
// target so readers never observe a partial write.
func (s *FileStorage) Save(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file %s: %w", s.path, err)
	}
	return nil
}

// State is the in-memory view of the watermark mapping plus its backing
// storage. Keys set through State accumulate; nothing ever deletes one.
type State struct {
	mu      sync.RWMutex
	storage *FileStorage
	values  map[string]string

	// defaultModified seeds every stream cursor with no persisted value,
	// typically the epoch.
	defaultModified time.Time
}

// New loads the state file at path. defaultModified is the watermark
// returned for streams with no persisted value.
func New(path string, defaultModified time.Time) (*State, error) {
	storage := NewFileStorage(path)
	values, err := storage.Load()
	if err != nil {
		return nil, err
	}

	logging.Debug().
		Str("path", path).
		Int("keys", len(values)).
		Time("default_modified", defaultModified).
		Msg("Loaded watermark state")

	return &State{
		storage:         storage,
		values:          values,
		defaultModified: defaultModified.UTC(),
	}, nil
}

// Get returns the stored value for key, if any.
func (s *State) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores key=value and persists the full mapping before returning.
func (s *State) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.storage.Save(s.values)
}

// Cursor returns the persisted scan position for the stream, or the default
// (defaultModified, zero uuid) when the stream has never advanced. A stored
// value that does not parse is a data error and aborts the caller.
func (s *State) Cursor(kind models.EntityKind) (models.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur := models.Cursor{Modified: s.defaultModified}

	if raw, ok := s.values[kind.WatermarkKey()]; ok {
		ts, err := models.ParseTimestamp(raw)
		if err != nil {
			return models.Cursor{}, fmt.Errorf("failed to parse watermark %s: %w", kind.WatermarkKey(), err)
		}
		cur.Modified = ts
	}

	if raw, ok := s.values[kind.CursorIDKey()]; ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return models.Cursor{}, fmt.Errorf("failed to parse cursor id %s: %w", kind.CursorIDKey(), err)
		}
		cur.ID = id
	}

	return cur, nil
}

// SetCursor persists the stream's scan position. Both the timestamp and the
// tiebreaker id are written in a single durable update.
func (s *State) SetCursor(kind models.EntityKind, cur models.Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[kind.WatermarkKey()] = models.FormatTimestamp(cur.Modified)
	s.values[kind.CursorIDKey()] = cur.ID.String()

	if err := s.storage.Save(s.values); err != nil {
		return fmt.Errorf("failed to persist cursor for %s: %w", kind, err)
	}
	return nil
}
