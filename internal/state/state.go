// Package state provides the per-pipeline state store seam. The engine
// loads a pipeline's state handle before its first step, hands it to
// every connector call, and saves it back once the pipeline succeeds.
// The layout of the state itself is owned by connectors.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists opaque per-pipeline state between runs.
type Store interface {
	// Load returns the stored state for a pipeline, or nil when none exists.
	Load(pipeline string) (map[string]any, error)
	// Save replaces the stored state for a pipeline.
	Save(pipeline string, state map[string]any) error
}

// FileStore keeps all pipeline state in one JSON file, keyed by pipeline
// name. Suitable for local projects; the file lives under the project's
// .dft directory.
type FileStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	data   map[string]map[string]any
}

// NewFileStore creates a store backed by the given file path. The file
// is created lazily on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store.
func (s *FileStore) Load(pipeline string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.data[pipeline], nil
}

// Save implements Store.
func (s *FileStore) Save(pipeline string, state map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.data[pipeline] = state

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	return nil
}

func (s *FileStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	s.data = make(map[string]map[string]any)
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("state store: parsing %s: %w", s.path, err)
	}
	s.loaded = true
	return nil
}

// MemoryStore is an in-memory Store for tests and no-persistence runs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]any
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]any)}
}

// Load implements Store.
func (s *MemoryStore) Load(pipeline string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[pipeline], nil
}

// Save implements Store.
func (s *MemoryStore) Save(pipeline string, state map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[pipeline] = state
	return nil
}
