package port

import "io"

// FileSystem defines the interface for cache directory operations
type FileSystem interface {
	// RootDir returns the cache root directory
	RootDir() string

	// EnsureRoot creates the cache root directory if it does not exist
	EnsureRoot() error

	// LocalPath returns the local cache path for a resource URL
	LocalPath(url string) string

	// FileExists checks if any filesystem entry exists at the path
	FileExists(path string) bool

	// WriteFile streams content to the path.
	// Returns: bytes written, error
	WriteFile(path string, reader io.Reader) (int64, error)
}
