// Package storage provides the durable key/value stores backing the
// credential and the recency cache. It includes a file-backed store and a
// Redis-based one.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/core/ports"
)

// FileStore persists keys as a single JSON object on disk. It is the
// default backend when Redis is not configured.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore creates a file-backed store at path. The file is created
// lazily on the first Set.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Get retrieves a value by key. A missing file or key yields
// ports.ErrKeyNotFound.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()

	if err != nil {
		return "", err
	}

	value, ok := entries[key]

	if !ok {
		return "", ports.ErrKeyNotFound
	}

	return value, nil
}

// Set writes a value under key, creating the file and its directory as
// needed.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()

	if err != nil {
		return err
	}

	entries[key] = value
	serialized, err := json.MarshalIndent(entries, "", "  ")

	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := os.WriteFile(s.path, serialized, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	s.logger.Debug("state persisted", zap.String("key", key), zap.String("path", s.path))

	return nil
}

func (s *FileStore) readLocked() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)

	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	entries := map[string]string{}

	if err := json.Unmarshal(raw, &entries); err != nil {
		// A corrupt state file is treated as empty rather than fatal.
		s.logger.Warn("discarding unreadable state file", zap.String("path", s.path), zap.Error(err))

		return map[string]string{}, nil
	}

	return entries, nil
}
