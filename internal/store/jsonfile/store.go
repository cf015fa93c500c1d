// Package jsonfile provides a JSON file-based session store.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hay-kot/leadr/internal/core/session"
)

// SessionFile is the root JSON structure stored on disk.
type SessionFile struct {
	Session session.Record `json:"session"`
}

// Store implements session.Store using a JSON file for persistence.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New creates a new JSON file store at the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted session, or the zero record if none exists.
func (s *Store) Load(ctx context.Context) (session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return session.Record{}, err
	}

	return file.Session, nil
}

// Save replaces the persisted session.
func (s *Store) Save(ctx context.Context, rec session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(SessionFile{Session: rec})
}

// Clear removes the session file. Clearing a missing file is not an error.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// load reads the session file from disk.
// Returns empty SessionFile if file doesn't exist.
func (s *Store) load() (SessionFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return SessionFile{}, nil
		}
		return SessionFile{}, fmt.Errorf("read session file: %w", err)
	}

	if len(data) == 0 {
		return SessionFile{}, nil
	}

	var file SessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return SessionFile{}, fmt.Errorf("parse session file: %w", err)
	}

	return file, nil
}

// save writes the session file to disk atomically. The file holds a bearer
// token, so it is readable by the owner only.
func (s *Store) save(file SessionFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
