// Package pipeline orchestrates one scrape: discover detail URLs, fetch and
// extract each sequentially with a politeness delay, persist records, and
// report partial failures without aborting the batch.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/OptimNow/my-scraper/internal/database"
	"github.com/OptimNow/my-scraper/internal/extract"
	"github.com/OptimNow/my-scraper/internal/fetch"
	"github.com/OptimNow/my-scraper/internal/metrics"
	"github.com/OptimNow/my-scraper/internal/politeness"
	"github.com/OptimNow/my-scraper/internal/publisher"
	"github.com/OptimNow/my-scraper/internal/storage"
)

// Discoverer yields the ordered batch of detail URLs to process.
type Discoverer interface {
	Discover(ctx context.Context) ([]string, error)
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// URLError names the single URL that failed and why.
type URLError struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Report is the outcome of a batch run: every record extracted plus every
// per-URL failure. A failure never drops the rest of the batch.
type Report struct {
	RunID      string           `json:"run_id"`
	Results    []extract.Record `json:"results"`
	Errors     []URLError       `json:"errors"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// StoredNotification is the payload published after each successful store.
type StoredNotification struct {
	ID        string `json:"id"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	ScrapedAt string `json:"scrapedAt"`
}

// Config tunes the orchestration loop.
type Config struct {
	// FetchTimeout bounds each page fetch.
	FetchTimeout time.Duration
	// Delay is the mandatory politeness pause between consecutive fetches.
	Delay time.Duration
	// StoragePrefix prefixes every object key.
	StoragePrefix string
}

// Runner wires the collaborators around the extraction engine.
type Runner struct {
	discoverer Discoverer
	fetcher    fetch.Fetcher
	assembler  *extract.Assembler
	store      storage.Provider
	db         database.Provider
	pub        publisher.Provider
	ids        IDGenerator
	clock      extract.Clock
	pauser     politeness.Pauser
	cfg        Config
	logger     *zap.Logger
}

// NewRunner constructs a Runner. Nil pauser and logger get defaults; the
// other collaborators are required.
func NewRunner(
	discoverer Discoverer,
	fetcher fetch.Fetcher,
	assembler *extract.Assembler,
	store storage.Provider,
	db database.Provider,
	pub publisher.Provider,
	ids IDGenerator,
	clock extract.Clock,
	pauser politeness.Pauser,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	if pauser == nil {
		pauser = politeness.TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		discoverer: discoverer,
		fetcher:    fetcher,
		assembler:  assembler,
		store:      store,
		db:         db,
		pub:        pub,
		ids:        ids,
		clock:      clock,
		pauser:     pauser,
		cfg:        cfg,
		logger:     logger,
	}
}

// RunBatch discovers detail URLs and processes them strictly sequentially.
// When limit is positive, only the first limit URLs of the deterministic
// discovery order are processed.
func (r *Runner) RunBatch(ctx context.Context, limit int) (Report, error) {
	runID, err := r.ids.NewID()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}
	report := Report{
		RunID:     runID,
		Results:   []extract.Record{},
		Errors:    []URLError{},
		StartedAt: r.clock.Now(),
	}

	urls, err := r.discoverer.Discover(ctx)
	if err != nil {
		return report, fmt.Errorf("discover detail urls: %w", err)
	}
	discovered := len(urls)
	if limit > 0 && limit < len(urls) {
		urls = urls[:limit]
	}
	r.logger.Info("starting batch run",
		zap.String("run_id", runID),
		zap.Int("discovered", discovered),
		zap.Int("processing", len(urls)),
	)

	for i, pageURL := range urls {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			r.pauser.Pause(ctx, r.cfg.Delay)
		}
		rec, failure := r.processURL(ctx, runID, pageURL)
		if failure != nil {
			report.Errors = append(report.Errors, *failure)
			continue
		}
		report.Results = append(report.Results, rec)
	}

	report.FinishedAt = r.clock.Now()
	r.saveRun(ctx, report, discovered)
	if len(report.Errors) == 0 {
		metrics.RunFinished("ok")
	} else {
		metrics.RunFinished("partial")
	}
	r.logger.Info("batch run finished",
		zap.String("run_id", runID),
		zap.Int("succeeded", len(report.Results)),
		zap.Int("failed", len(report.Errors)),
	)
	return report, nil
}

// RunOne bypasses discovery and extracts a single page.
func (r *Runner) RunOne(ctx context.Context, pageURL string) (extract.Record, error) {
	rec, failure := r.processURL(ctx, "", pageURL)
	if failure != nil {
		return extract.Record{}, fmt.Errorf("scrape %s: %s", failure.URL, failure.Message)
	}
	return rec, nil
}

// processURL runs fetch → assemble → store → publish for one URL. Any
// failure is returned as a URLError; the caller decides whether to abort.
func (r *Runner) processURL(ctx context.Context, runID, pageURL string) (extract.Record, *URLError) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	start := r.clock.Now()
	doc, err := r.fetcher.Fetch(fetchCtx, pageURL)
	metrics.ObserveFetchDuration(time.Since(start))
	if err != nil {
		metrics.PageFetched("error")
		r.logger.Warn("page fetch failed", zap.String("url", pageURL), zap.Error(err))
		r.saveOutcome(ctx, runID, database.Outcome{
			RunID: runID, URL: pageURL, Error: err.Error(), ScrapedAt: r.clock.Now(),
		})
		return extract.Record{}, &URLError{URL: pageURL, Message: err.Error()}
	}
	metrics.PageFetched("ok")

	rec := r.assembler.Assemble(doc, pageURL)
	if problems := extract.Validate(rec); len(problems) > 0 {
		metrics.ValidationWarning()
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return extract.Record{}, &URLError{URL: pageURL, Message: fmt.Sprintf("marshal record: %v", err)}
	}
	key := fmt.Sprintf("%s/%s-%d.json", r.cfg.StoragePrefix, rec.ID, r.clock.Now().Unix())
	info, err := r.store.Save(ctx, key, payload)
	if err != nil {
		r.logger.Warn("record store failed", zap.String("url", pageURL), zap.Error(err))
		r.saveOutcome(ctx, runID, database.Outcome{
			RunID: runID, URL: pageURL, RecordID: rec.ID,
			Error: err.Error(), ScrapedAt: r.clock.Now(),
		})
		return extract.Record{}, &URLError{URL: pageURL, Message: fmt.Sprintf("store record: %v", err)}
	}
	metrics.RecordExtracted()
	r.logger.Debug("record stored",
		zap.String("id", rec.ID),
		zap.String("key", info.Key),
		zap.Int64("size", info.Size),
	)

	if _, err := r.pub.Publish(ctx, StoredNotification{
		ID:        rec.ID,
		Bucket:    info.Bucket,
		Key:       info.Key,
		ScrapedAt: rec.ScrapedAt,
	}); err != nil {
		// Notification loss is tolerable; the record is already durable.
		r.logger.Warn("publish notification failed", zap.String("id", rec.ID), zap.Error(err))
	}

	r.saveOutcome(ctx, runID, database.Outcome{
		RunID: runID, URL: pageURL, RecordID: rec.ID,
		StorageKey: info.Key, ScrapedAt: r.clock.Now(),
	})
	return rec, nil
}

func (r *Runner) saveRun(ctx context.Context, report Report, discovered int) {
	if report.RunID == "" {
		return
	}
	err := r.db.SaveRun(ctx, database.Run{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Discovered: discovered,
		Succeeded:  len(report.Results),
		Failed:     len(report.Errors),
	})
	if err != nil {
		r.logger.Warn("save run history failed", zap.String("run_id", report.RunID), zap.Error(err))
	}
}

func (r *Runner) saveOutcome(ctx context.Context, runID string, outcome database.Outcome) {
	if runID == "" {
		return
	}
	if err := r.db.SaveOutcome(ctx, outcome); err != nil {
		r.logger.Warn("save outcome failed", zap.String("url", outcome.URL), zap.Error(err))
	}
}
