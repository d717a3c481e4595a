package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skyarchive/fitsfetch/internal/domain"
	"github.com/skyarchive/fitsfetch/internal/port"
)

// Manager handles local cache directory operations
type Manager struct {
	rootDir string
}

// Ensure Manager implements port.FileSystem
var _ port.FileSystem = (*Manager)(nil)

// NewManager creates a new filesystem manager. The root directory is not
// created here; callers bootstrap it with EnsureRoot at the start of a run.
func NewManager(rootDir string) *Manager {
	return &Manager{rootDir: rootDir}
}

// RootDir returns the cache root directory
func (m *Manager) RootDir() string {
	return m.rootDir
}

// EnsureRoot creates the cache root directory and any missing parents.
// Idempotent; fails if the path exists as a non-directory entry.
func (m *Manager) EnsureRoot() error {
	if err := os.MkdirAll(m.rootDir, 0755); err != nil {
		return domain.NewDirectoryError(m.rootDir, err)
	}
	return nil
}

// LocalPath returns the local cache path for a resource URL: the segment
// after the last "/" joined to the root directory. Query strings and
// fragments are kept verbatim in the filename.
func (m *Manager) LocalPath(url string) string {
	tokens := strings.Split(url, "/")
	name := tokens[len(tokens)-1]
	return filepath.Join(m.rootDir, name)
}

// FileExists checks if any filesystem entry exists at the path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFile streams content directly to the path. On a mid-transfer
// failure whatever was written stays in place; a later run sees the
// partial file as present and will not retry it.
func (m *Manager) WriteFile(path string, reader io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}

	return written, nil
}
