// Package history persists the conversation on disk.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/diogo/sanai/internal/config"
	"github.com/diogo/sanai/internal/models"
)

// FileName is the conversation file inside the history directory
const FileName = "conversation.json"

// ErrCorrupt is returned by Load when the stored file cannot be decoded.
// The unreadable file is moved aside so the next Save does not destroy it.
var ErrCorrupt = errors.New("stored conversation is corrupt")

// Store reads and writes the whole conversation as one JSON list
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a store under baseDir/history
func NewStore(baseDir string) (*Store, error) {
	dir := filepath.Join(baseDir, "history")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// DefaultStore creates a store in the configuration directory
func DefaultStore() (*Store, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(dir)
}

// Path returns the conversation file path
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load returns the stored messages. A missing file yields an empty list.
// An undecodable file is moved aside and ErrCorrupt is returned with an empty list.
func (s *Store) Load() ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.read()
	if !errors.Is(err, ErrCorrupt) {
		return messages, err
	}

	backup := s.Path() + ".corrupt"
	if renameErr := os.Rename(s.Path(), backup); renameErr != nil {
		return nil, fmt.Errorf("%w (keeping %s: %v)", err, s.Path(), renameErr)
	}
	return []models.Message{}, fmt.Errorf("%w (moved to %s)", err, backup)
}

// Read is Load without side effects: a corrupt file stays where it is.
func (s *Store) Read() ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

func (s *Store) read() ([]models.Message, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Message{}, nil
		}
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	var messages []models.Message
	if err := sonic.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// Save replaces the stored conversation with messages.
// An empty list is never written, so a fresh session cannot wipe the file.
func (s *Store) Save(messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	data, err := sonic.ConfigStd.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeAtomic(s.Path(), data)
}

// writeAtomic writes data to a temp file in the same directory and renames it over path
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".conversation-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write conversation: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync conversation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close conversation: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace conversation: %w", err)
	}

	return nil
}
