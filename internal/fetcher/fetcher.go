package fetcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skyarchive/fitsfetch/internal/domain"
	"github.com/skyarchive/fitsfetch/internal/port"
)

// Fetcher ensures each resource URL has a local copy in the cache
// directory, downloading only the ones that are absent.
type Fetcher struct {
	retriever port.Retriever
	fs        port.FileSystem
	journal   port.Journal // may be nil
	logger    *zap.Logger
}

// New creates a new Fetcher. journal may be nil to disable run history.
func New(retriever port.Retriever, fs port.FileSystem, journal port.Journal, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		retriever: retriever,
		fs:        fs,
		journal:   journal,
		logger:    logger,
	}
}

// Run bootstraps the cache directory, then handles every URL exactly once,
// in order, regardless of individual outcomes. A directory bootstrap
// failure is fatal and returns before any fetch is attempted; individual
// fetch failures are recorded in the summary and never stop the run.
func (f *Fetcher) Run(ctx context.Context, urls []string) (*domain.Summary, error) {
	startedAt := time.Now()

	if err := f.fs.EnsureRoot(); err != nil {
		return nil, err
	}

	f.logger.Info("run started",
		zap.String("cache_dir", f.fs.RootDir()),
		zap.Int("resources", len(urls)))

	summary := &domain.Summary{}
	for _, url := range urls {
		res := f.FetchIfAbsent(ctx, url)
		summary.Add(res)

		switch res.Outcome {
		case domain.OutcomeSkipped:
			f.logger.Info("already present, skipping",
				zap.String("url", res.URL),
				zap.String("path", res.LocalPath))
		case domain.OutcomeFetched:
			f.logger.Info("fetched",
				zap.String("url", res.URL),
				zap.String("path", res.LocalPath),
				zap.Int64("bytes", res.BytesWritten))
		case domain.OutcomeFailed:
			f.logger.Error("fetch failed",
				zap.String("url", res.URL),
				zap.Error(res.Err))
		}
	}

	f.logger.Info("run finished",
		zap.Int("skipped", summary.Skipped),
		zap.Int("fetched", summary.Fetched),
		zap.Int("failed", summary.Failed))

	if f.journal != nil {
		if err := f.journal.RecordRun(startedAt, summary); err != nil {
			f.logger.Error("failed to record run in journal", zap.Error(err))
		}
	}

	return summary, nil
}

// FetchIfAbsent handles a single resource: derive the local path, skip if
// any entry already exists there, otherwise stream the body to disk. The
// presence check is filesystem existence only; a zero-byte or partial file
// from an earlier failed run counts as present.
func (f *Fetcher) FetchIfAbsent(ctx context.Context, url string) domain.Result {
	localPath := f.fs.LocalPath(url)

	if f.fs.FileExists(localPath) {
		return domain.Result{
			URL:       url,
			LocalPath: localPath,
			Outcome:   domain.OutcomeSkipped,
		}
	}

	body, _, err := f.retriever.Fetch(ctx, url)
	if err != nil {
		return domain.Result{
			URL:       url,
			LocalPath: localPath,
			Outcome:   domain.OutcomeFailed,
			Err:       domain.NewFetchError(url, err),
		}
	}
	defer body.Close()

	written, err := f.fs.WriteFile(localPath, body)
	if err != nil {
		return domain.Result{
			URL:          url,
			LocalPath:    localPath,
			Outcome:      domain.OutcomeFailed,
			BytesWritten: written,
			Err:          domain.NewFetchError(url, fmt.Errorf("write failed: %w", err)),
		}
	}

	return domain.Result{
		URL:          url,
		LocalPath:    localPath,
		Outcome:      domain.OutcomeFetched,
		BytesWritten: written,
	}
}
