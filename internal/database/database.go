// Package database persists scrape-run history: one row per batch run and
// one per processed URL. The interface decouples the scraper from Postgres
// so tests and local runs can use the no-op provider.
package database

import (
	"context"
	"time"
)

// Run summarizes one batch scrape.
type Run struct {
	ID         string    `db:"id"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	Discovered int       `db:"discovered"`
	Succeeded  int       `db:"succeeded"`
	Failed     int       `db:"failed"`
}

// Outcome records the result of processing a single URL within a run.
// Error is empty on success; StorageKey is empty on failure.
type Outcome struct {
	RunID      string    `db:"run_id"`
	URL        string    `db:"url"`
	RecordID   string    `db:"record_id"`
	StorageKey string    `db:"storage_key"`
	Error      string    `db:"error"`
	ScrapedAt  time.Time `db:"scraped_at"`
}

// Provider is the run-history persistence interface.
type Provider interface {
	// SaveRun upserts the summary row for a run.
	SaveRun(ctx context.Context, run Run) error
	// SaveOutcome appends one per-URL outcome row.
	SaveOutcome(ctx context.Context, outcome Outcome) error
	// Close releases the connection pool.
	Close()
}

// NoOpProvider discards run history. The default when no database is
// configured.
type NoOpProvider struct{}

// SaveRun does nothing.
func (NoOpProvider) SaveRun(context.Context, Run) error { return nil }

// SaveOutcome does nothing.
func (NoOpProvider) SaveOutcome(context.Context, Outcome) error { return nil }

// Close does nothing.
func (NoOpProvider) Close() {}
