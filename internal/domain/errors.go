package domain

import (
	"errors"
)

// FetchError reports a failed retrieval of a single resource. It is
// non-fatal: the run records it and continues with the next resource.
type FetchError struct {
	URL string
	Err error
}

// Error returns the error message
func (e *FetchError) Error() string {
	if e.Err != nil {
		return "fetch " + e.URL + ": " + e.Err.Error()
	}
	return "fetch " + e.URL + " failed"
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new fetch error for the given resource URL
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// IsFetchError returns true if the error is a per-resource fetch failure
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// DirectoryError reports a cache directory that could not be created.
// It is fatal to the run: nothing can be cached without the directory.
type DirectoryError struct {
	Path string
	Err  error
}

// Error returns the error message
func (e *DirectoryError) Error() string {
	if e.Err != nil {
		return "cache directory " + e.Path + ": " + e.Err.Error()
	}
	return "cache directory " + e.Path + " unavailable"
}

// Unwrap returns the underlying error
func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// NewDirectoryError creates a new directory error for the given path
func NewDirectoryError(path string, err error) *DirectoryError {
	return &DirectoryError{Path: path, Err: err}
}

// IsDirectoryError returns true if the error is a cache directory failure
func IsDirectoryError(err error) bool {
	var de *DirectoryError
	return errors.As(err, &de)
}
