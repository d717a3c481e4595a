package port

import (
	"context"
	"io"
)

// Retriever defines the interface for fetching a remote resource.
// Implementations perform the actual transfer; callers own the presence
// check and the write to disk.
type Retriever interface {
	// Fetch opens a stream to the resource body.
	// Returns: body reader, content length (-1 if unknown), error
	Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error)
}
