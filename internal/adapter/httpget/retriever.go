package httpget

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skyarchive/fitsfetch/internal/port"
)

// Retriever fetches resources over HTTP GET
type Retriever struct {
	client    *http.Client
	userAgent string
}

// Ensure Retriever implements port.Retriever
var _ port.Retriever = (*Retriever)(nil)

// New creates a new HTTP retriever. A zero timeout means the transfer
// blocks until the transport completes or fails.
func New(timeout time.Duration, userAgent string) *Retriever {
	return &Retriever{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch performs a GET request and returns the response body stream.
// Any non-200 status is an error; the body is closed in that case.
func (r *Retriever) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, resp.ContentLength, nil
}
