package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// Saver persists a finished bundle under a suggested filename and returns
// where it ended up. The packager does not care what the destination is;
// a file on disk stands in for the browser's download prompt.
type Saver interface {
	Save(filename string, data []byte) (string, error)
}

// FileSaver saves bundles into a directory on the local filesystem
type FileSaver struct {
	dir string
}

// NewFileSaver creates a saver rooted at the given directory
func NewFileSaver(dir string) (*FileSaver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileSaver{dir: dir}, nil
}

// Save writes the bundle atomically via a temp file and rename
func (s *FileSaver) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filename)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}

	return path, nil
}

// Dir returns the output directory path
func (s *FileSaver) Dir() string {
	return s.dir
}
