package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OptimNow/my-scraper/internal/clock/system"
	"github.com/OptimNow/my-scraper/internal/database"
	"github.com/OptimNow/my-scraper/internal/extract"
	"github.com/OptimNow/my-scraper/internal/fetch"
	"github.com/OptimNow/my-scraper/internal/politeness"
	"github.com/OptimNow/my-scraper/internal/publisher"
	"github.com/OptimNow/my-scraper/internal/storage"
)

type staticDiscoverer struct {
	urls []string
	err  error
}

func (d staticDiscoverer) Discover(context.Context) ([]string, error) {
	return d.urls, d.err
}

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("run-%d", g.n), nil
}

type recordingDB struct {
	mu       sync.Mutex
	runs     []database.Run
	outcomes []database.Outcome
}

func (r *recordingDB) SaveRun(_ context.Context, run database.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *recordingDB) SaveOutcome(_ context.Context, o database.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	return nil
}

func (r *recordingDB) Close() {}

func detailHandler(slow map[string]bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slow[r.URL.Path] {
			time.Sleep(500 * time.Millisecond)
		}
		slug := extract.Slug(r.URL.Path)
		fmt.Fprintf(w, `<html><body>
			<h1>Title of %s</h1>
			<h2>Detection</h2>
			<ul><li>Check tag X</li><li>Check tag Y</li><li>Check tag Z</li></ul>
		</body></html>`, slug)
	})
}

type testEnv struct {
	runner *Runner
	store  *storage.MemoryProvider
	db     *recordingDB
	pub    *publisher.MemoryProvider
}

func newTestEnv(t *testing.T, srvURL string, urls []string) *testEnv {
	t.Helper()
	base, err := url.Parse(srvURL)
	require.NoError(t, err)

	assembler := extract.NewAssembler(extract.Options{
		Origin:  "optimnow-hub",
		BaseURL: base,
		Clock:   system.New(),
	}, nil)
	fetcher := fetch.NewCollyFetcher(fetch.Config{UserAgent: "test-agent", Timeout: 100 * time.Millisecond}, nil)

	env := &testEnv{
		store: storage.NewMemoryProvider(),
		db:    &recordingDB{},
		pub:   publisher.NewMemoryProvider(),
	}
	env.runner = NewRunner(
		staticDiscoverer{urls: urls},
		fetcher,
		assembler,
		env.store,
		env.db,
		env.pub,
		&seqIDGen{},
		system.New(),
		politeness.NoopPauser{},
		Config{FetchTimeout: 100 * time.Millisecond, StoragePrefix: "records"},
		nil,
	)
	return env
}

func TestRunBatchPartialFailure(t *testing.T) {
	srv := httptest.NewServer(detailHandler(map[string]bool{"/hub/inefficiencies/slow-page/": true}))
	defer srv.Close()

	urls := []string{
		srv.URL + "/hub/inefficiencies/a-first/",
		srv.URL + "/hub/inefficiencies/slow-page/",
		srv.URL + "/hub/inefficiencies/z-last/",
	}
	env := newTestEnv(t, srv.URL, urls)

	report, err := env.runner.RunBatch(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, report.Results, 2, "one bad page never aborts the batch")
	require.Len(t, report.Errors, 1)
	require.Equal(t, urls[1], report.Errors[0].URL)
	require.NotEmpty(t, report.Errors[0].Message)

	require.Equal(t, "a-first", report.Results[0].ID)
	require.Equal(t, "z-last", report.Results[1].ID)
	require.Equal(t, []string{"Check tag X", "Check tag Y", "Check tag Z"}, report.Results[0].DetectionSignals)
}

func TestRunBatchStoresAndPublishes(t *testing.T) {
	srv := httptest.NewServer(detailHandler(nil))
	defer srv.Close()

	urls := []string{srv.URL + "/hub/inefficiencies/only-one/"}
	env := newTestEnv(t, srv.URL, urls)

	report, err := env.runner.RunBatch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.Equal(t, 1, env.store.Len())

	payloads := env.pub.Payloads()
	require.Len(t, payloads, 1)
	note, ok := payloads[0].(StoredNotification)
	require.True(t, ok)
	require.Equal(t, "only-one", note.ID)
	require.Equal(t, "memory", note.Bucket)
}

func TestRunBatchRecordsRunHistory(t *testing.T) {
	srv := httptest.NewServer(detailHandler(map[string]bool{"/hub/inefficiencies/slow-page/": true}))
	defer srv.Close()

	urls := []string{
		srv.URL + "/hub/inefficiencies/fine/",
		srv.URL + "/hub/inefficiencies/slow-page/",
	}
	env := newTestEnv(t, srv.URL, urls)

	_, err := env.runner.RunBatch(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, env.db.runs, 1)
	run := env.db.runs[0]
	require.Equal(t, "run-1", run.ID)
	require.Equal(t, 2, run.Discovered)
	require.Equal(t, 1, run.Succeeded)
	require.Equal(t, 1, run.Failed)
	require.Len(t, env.db.outcomes, 2)
}

func TestRunBatchHonorsLimit(t *testing.T) {
	srv := httptest.NewServer(detailHandler(nil))
	defer srv.Close()

	urls := []string{
		srv.URL + "/hub/inefficiencies/a/",
		srv.URL + "/hub/inefficiencies/b/",
		srv.URL + "/hub/inefficiencies/c/",
	}
	env := newTestEnv(t, srv.URL, urls)

	report, err := env.runner.RunBatch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	require.Equal(t, "a", report.Results[0].ID)
	require.Equal(t, "b", report.Results[1].ID)
}

func TestRunBatchDiscoveryFailureIsFatal(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:0", nil)
	env.runner.discoverer = staticDiscoverer{err: fmt.Errorf("index unreachable")}

	_, err := env.runner.RunBatch(context.Background(), 0)
	require.Error(t, err)
}

func TestRunOne(t *testing.T) {
	srv := httptest.NewServer(detailHandler(nil))
	defer srv.Close()

	env := newTestEnv(t, srv.URL, nil)
	rec, err := env.runner.RunOne(context.Background(), srv.URL+"/hub/inefficiencies/solo/")
	require.NoError(t, err)
	require.Equal(t, "solo", rec.ID)
	require.Equal(t, "Title of solo", rec.Title)

	// Single-URL mode leaves no run history behind.
	require.Empty(t, env.db.runs)
	require.Empty(t, env.db.outcomes)
}

func TestRunOneSurfacesFailureReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL, nil)
	_, err := env.runner.RunOne(context.Background(), srv.URL+"/hub/inefficiencies/solo/")
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}
