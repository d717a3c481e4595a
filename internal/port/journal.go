package port

import (
	"time"

	"github.com/skyarchive/fitsfetch/internal/domain"
)

// Journal defines the interface for recording run history. The journal is
// write-only during a run; it is never consulted for the presence check.
type Journal interface {
	// RecordRun persists one run and its per-resource results
	RecordRun(startedAt time.Time, summary *domain.Summary) error

	// Recent returns the most recently recorded entries, newest first
	Recent(limit int) ([]domain.HistoryEntry, error)

	// Close releases the underlying storage
	Close() error
}
