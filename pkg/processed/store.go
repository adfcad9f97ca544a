// Package processed tracks which tweets have already been archived so
// repeat work can be reported across sessions. The set only ever grows:
// a processed tweet may still be re-archived, the record exists to flag
// the repeat, not to block it.
package processed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"tweetarchiver/pkg/logger"
)

// storageKey is the single well-known key the processed id list lives under
const storageKey = "processed_tweets"

// Store is the processed-set contract injected into the pipeline
type Store interface {
	// Has reports whether an archive has previously been produced for the id.
	// Safe to call for ids that were never resolved.
	Has(tweetID string) bool

	// Add records the id after an archive has been produced. Adding an
	// existing id is a no-op, the set never holds duplicates.
	Add(tweetID string) error
}

// FileStore persists the set in a JSON file. Reads and writes are
// whole-value (read entire set, mutate, write entire set); the mutex only
// serializes callers within one process, concurrent processes can still
// lose updates. Accepted for a single-user tool.
type FileStore struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

// NewFileStore creates a store backed by the default per-OS data directory
func NewFileStore() (*FileStore, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}
	return NewFileStoreAt(filepath.Join(dataDir, "processed.json"))
}

// NewFileStoreAt creates a store backed by the given file path
func NewFileStoreAt(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{
		path:   path,
		logger: logger.GetLogger(),
	}, nil
}

// Has reports whether the id is in the persisted set
func (s *FileStore) Has(tweetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load()
	if err != nil {
		s.logger.WithError(err).Warn("failed to load processed set")
		return false
	}

	for _, id := range ids {
		if id == tweetID {
			return true
		}
	}
	return false
}

// Add appends the id to the persisted set if not already present
func (s *FileStore) Add(tweetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load()
	if err != nil {
		return fmt.Errorf("failed to load processed set: %w", err)
	}

	for _, id := range ids {
		if id == tweetID {
			return nil
		}
	}

	ids = append(ids, tweetID)
	if err := s.save(ids); err != nil {
		return fmt.Errorf("failed to save processed set: %w", err)
	}

	s.logger.DebugWithFields("tweet marked as processed", map[string]interface{}{
		"tweet_id": tweetID,
		"total":    len(ids),
	})

	return nil
}

// All returns every processed id in insertion order
func (s *FileStore) All() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load reads the whole set from disk. A missing file is an empty set.
func (s *FileStore) load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var document map[string][]string
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to decode processed set: %w", err)
	}

	return document[storageKey], nil
}

// save atomically replaces the set on disk
func (s *FileStore) save(ids []string) error {
	data, err := json.MarshalIndent(map[string][]string{storageKey: ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode processed set: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}

// MemoryStore is an in-memory Store for tests and one-off runs
type MemoryStore struct {
	ids map[string]bool
	mu  sync.Mutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]bool)}
}

// Has reports whether the id has been added
func (s *MemoryStore) Has(tweetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[tweetID]
}

// Add records the id
func (s *MemoryStore) Add(tweetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[tweetID] = true
	return nil
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "tweetarchiver")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "tweetarchiver")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "tweetarchiver")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "tweetarchiver")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
