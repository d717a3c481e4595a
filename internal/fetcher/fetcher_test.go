package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/skyarchive/fitsfetch/internal/domain"
	"github.com/skyarchive/fitsfetch/internal/fs"
	"github.com/skyarchive/fitsfetch/internal/port"
)

// mockRetriever implements port.Retriever for testing
type mockRetriever struct {
	mu     sync.Mutex
	bodies map[string]string // url -> response body
	errs   map[string]error  // url -> fetch error
	calls  map[string]int    // url -> number of Fetch calls
}

func newMockRetriever() *mockRetriever {
	return &mockRetriever{
		bodies: make(map[string]string),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (m *mockRetriever) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[url]++
	if err, ok := m.errs[url]; ok {
		return nil, 0, err
	}
	body := m.bodies[url]
	return io.NopCloser(bytes.NewReader([]byte(body))), int64(len(body)), nil
}

func (m *mockRetriever) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// mockJournal implements port.Journal for testing
type mockJournal struct {
	mu        sync.Mutex
	recorded  []*domain.Summary
	recordErr error
}

func (m *mockJournal) RecordRun(startedAt time.Time, summary *domain.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, summary)
	return m.recordErr
}

func (m *mockJournal) Recent(limit int) ([]domain.HistoryEntry, error) {
	return nil, nil
}

func (m *mockJournal) Close() error { return nil }

var _ port.Retriever = (*mockRetriever)(nil)
var _ port.Journal = (*mockJournal)(nil)

func newTestFetcher(t *testing.T, retriever port.Retriever, journal port.Journal) (*Fetcher, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "samp")
	return New(retriever, fs.NewManager(dir), journal, zap.NewNop()), dir
}

func TestRun_FetchesAbsentResources(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/data/a.fits"] = "SIMPLE  ="
	retriever.bodies["https://example.org/data/b.fits"] = "XTENSION"

	f, dir := newTestFetcher(t, retriever, nil)

	urls := []string{
		"https://example.org/data/a.fits",
		"https://example.org/data/b.fits",
	}
	summary, err := f.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Fetched != 2 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Errorf("summary = {fetched:%d skipped:%d failed:%d}, want {2 0 0}",
			summary.Fetched, summary.Skipped, summary.Failed)
	}

	for _, url := range urls {
		path := filepath.Join(dir, filepath.Base(url))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file at %s: %v", path, err)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, "a.fits"))
	if err != nil {
		t.Fatalf("reading fetched file: %v", err)
	}
	if string(got) != "SIMPLE  =" {
		t.Errorf("fetched content = %q, want %q", got, "SIMPLE  =")
	}
}

func TestRun_Idempotence(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/a.fits"] = "aaa"
	retriever.bodies["https://example.org/b.fits"] = "bbb"

	f, _ := newTestFetcher(t, retriever, nil)
	urls := []string{"https://example.org/a.fits", "https://example.org/b.fits"}

	first, err := f.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Fetched != 2 {
		t.Fatalf("first run fetched = %d, want 2", first.Fetched)
	}

	second, err := f.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Skipped != 2 || second.Fetched != 0 {
		t.Errorf("second run = {fetched:%d skipped:%d}, want {0 2}", second.Fetched, second.Skipped)
	}

	if got := retriever.totalCalls(); got != 2 {
		t.Errorf("total network calls = %d, want 2 (none on second run)", got)
	}
}

func TestRun_SkipOnPresence(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/a.fits"] = "real content"

	f, dir := newTestFetcher(t, retriever, nil)

	// Pre-existing zero-byte file, e.g. left over from a failed run.
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.fits"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	summary, err := f.Run(context.Background(), []string{"https://example.org/a.fits"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", summary.Skipped)
	}
	if got := retriever.totalCalls(); got != 0 {
		t.Errorf("network calls = %d, want 0", got)
	}

	info, err := os.Stat(filepath.Join(dir, "a.fits"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("zero-byte file was overwritten, size = %d", info.Size())
	}
}

func TestRun_NonInterference(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/a.fits"] = "aaa"
	retriever.errs["https://example.org/b.fits"] = errors.New("connection refused")
	retriever.bodies["https://example.org/c.fits"] = "ccc"

	f, dir := newTestFetcher(t, retriever, nil)

	urls := []string{
		"https://example.org/a.fits",
		"https://example.org/b.fits",
		"https://example.org/c.fits",
	}
	summary, err := f.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Fetched != 2 || summary.Failed != 1 {
		t.Errorf("summary = {fetched:%d failed:%d}, want {2 1}", summary.Fetched, summary.Failed)
	}
	if !summary.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}

	// The resource after the failed one must still have been fetched.
	if _, err := os.Stat(filepath.Join(dir, "c.fits")); err != nil {
		t.Errorf("expected c.fits after earlier failure: %v", err)
	}
	// The failed resource leaves nothing behind.
	if _, err := os.Stat(filepath.Join(dir, "b.fits")); err == nil {
		t.Error("b.fits exists after failed fetch")
	}

	var failed *domain.Result
	for i := range summary.Results {
		if summary.Results[i].Outcome == domain.OutcomeFailed {
			failed = &summary.Results[i]
		}
	}
	if failed == nil {
		t.Fatal("no failed result recorded")
	}
	if !domain.IsFetchError(failed.Err) {
		t.Errorf("failed result error = %T, want *domain.FetchError", failed.Err)
	}
}

func TestRun_DirectoryBootstrap(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/a.fits"] = "aaa"

	base := t.TempDir()
	dir := filepath.Join(base, "deeply", "nested", "samp")
	f := New(retriever, fs.NewManager(dir), nil, zap.NewNop())

	if _, err := os.Stat(dir); err == nil {
		t.Fatal("cache dir exists before run")
	}

	if _, err := f.Run(context.Background(), []string{"https://example.org/a.fits"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("cache dir not created: %v", err)
	}

	// Directory already present: second run must not error.
	if _, err := f.Run(context.Background(), []string{"https://example.org/a.fits"}); err != nil {
		t.Errorf("second Run() error = %v", err)
	}
}

func TestRun_DirectoryCreationFatal(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/a.fits"] = "aaa"

	// Cache dir path occupied by a regular file.
	base := t.TempDir()
	blocked := filepath.Join(base, "samp")
	if err := os.WriteFile(blocked, []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}

	f := New(retriever, fs.NewManager(blocked), nil, zap.NewNop())

	summary, err := f.Run(context.Background(), []string{"https://example.org/a.fits"})
	if err == nil {
		t.Fatal("Run() error = nil, want directory error")
	}
	if !domain.IsDirectoryError(err) {
		t.Errorf("Run() error = %T, want *domain.DirectoryError", err)
	}
	if summary != nil {
		t.Errorf("summary = %v, want nil on fatal error", summary)
	}
	if got := retriever.totalCalls(); got != 0 {
		t.Errorf("network calls = %d, want 0 when bootstrap fails", got)
	}
}

func TestRun_RecordsJournal(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/a.fits"] = "aaa"
	retriever.errs["https://example.org/b.fits"] = errors.New("boom")

	journal := &mockJournal{}
	f, _ := newTestFetcher(t, retriever, journal)

	urls := []string{"https://example.org/a.fits", "https://example.org/b.fits"}
	if _, err := f.Run(context.Background(), urls); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(journal.recorded) != 1 {
		t.Fatalf("journal recorded %d runs, want 1", len(journal.recorded))
	}
	got := journal.recorded[0]
	if got.Fetched != 1 || got.Failed != 1 || len(got.Results) != 2 {
		t.Errorf("journaled summary = {fetched:%d failed:%d results:%d}, want {1 1 2}",
			got.Fetched, got.Failed, len(got.Results))
	}
}

func TestRun_JournalErrorDoesNotFailRun(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/a.fits"] = "aaa"

	journal := &mockJournal{recordErr: errors.New("disk full")}
	f, _ := newTestFetcher(t, retriever, journal)

	summary, err := f.Run(context.Background(), []string{"https://example.org/a.fits"})
	if err != nil {
		t.Fatalf("Run() error = %v, journal failures must not abort the run", err)
	}
	if summary.Fetched != 1 {
		t.Errorf("fetched = %d, want 1", summary.Fetched)
	}
}

func TestRun_DuplicateIdentifiers(t *testing.T) {
	retriever := newMockRetriever()
	retriever.bodies["https://example.org/a.fits"] = "aaa"

	f, _ := newTestFetcher(t, retriever, nil)

	urls := []string{"https://example.org/a.fits", "https://example.org/a.fits"}
	summary, err := f.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The second occurrence sees the file written by the first.
	if summary.Fetched != 1 || summary.Skipped != 1 {
		t.Errorf("summary = {fetched:%d skipped:%d}, want {1 1}", summary.Fetched, summary.Skipped)
	}
}
