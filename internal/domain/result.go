package domain

import "time"

// Outcome classifies how a single resource was handled during a run.
type Outcome string

const (
	// OutcomeSkipped means a file already existed at the local path and
	// no network access was made.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFetched means the resource was downloaded to the local path.
	OutcomeFetched Outcome = "fetched"

	// OutcomeFailed means the retrieval failed; the local path may hold
	// nothing or a partial file.
	OutcomeFailed Outcome = "failed"
)

// Result represents the outcome of handling a single resource
type Result struct {
	// URL is the remote resource identifier
	URL string

	// LocalPath is the derived path inside the cache directory
	LocalPath string

	// Outcome is how the resource was handled
	Outcome Outcome

	// BytesWritten is the total bytes written to disk (fetched only)
	BytesWritten int64

	// Err is the failure cause (failed only)
	Err error
}

// Summary aggregates the per-resource results of one run
type Summary struct {
	Skipped int
	Fetched int
	Failed  int
	Results []Result
}

// Add appends a result and updates the counts
func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFetched:
		s.Fetched++
	case OutcomeFailed:
		s.Failed++
	}
}

// HasFailures returns true if any resource failed during the run
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

// HistoryEntry is a journaled per-resource outcome from a past run
type HistoryEntry struct {
	RunID      int64
	URL        string
	Outcome    Outcome
	Bytes      int64
	Error      string
	RecordedAt time.Time
}
