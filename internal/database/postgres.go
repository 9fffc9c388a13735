package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of pgxpool.Pool the provider uses. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresProvider implements Provider using a pgx connection pool.
//
// Expected schema:
//
//	CREATE TABLE scrape_runs (
//	    id UUID PRIMARY KEY,
//	    started_at TIMESTAMPTZ NOT NULL,
//	    finished_at TIMESTAMPTZ NOT NULL,
//	    discovered INT NOT NULL,
//	    succeeded INT NOT NULL,
//	    failed INT NOT NULL
//	);
//	CREATE TABLE scrape_outcomes (
//	    run_id UUID NOT NULL REFERENCES scrape_runs (id),
//	    url TEXT NOT NULL,
//	    record_id TEXT,
//	    storage_key TEXT,
//	    error TEXT,
//	    scraped_at TIMESTAMPTZ NOT NULL
//	);
type PostgresProvider struct {
	pool PgxPool
}

// NewPostgresProvider connects to dsn and verifies the connection.
func NewPostgresProvider(ctx context.Context, dsn string) (*PostgresProvider, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresProvider{pool: pool}, nil
}

// NewPostgresProviderWithPool wires an existing pool, used by tests to
// inject a mock.
func NewPostgresProviderWithPool(pool PgxPool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

const saveRunSQL = `
	INSERT INTO scrape_runs (id, started_at, finished_at, discovered, succeeded, failed)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		finished_at = EXCLUDED.finished_at,
		discovered = EXCLUDED.discovered,
		succeeded = EXCLUDED.succeeded,
		failed = EXCLUDED.failed`

// SaveRun upserts the run summary row.
func (p *PostgresProvider) SaveRun(ctx context.Context, run Run) error {
	_, err := p.pool.Exec(ctx, saveRunSQL,
		run.ID, run.StartedAt, run.FinishedAt, run.Discovered, run.Succeeded, run.Failed)
	if err != nil {
		return fmt.Errorf("insert scrape run %s: %w", run.ID, err)
	}
	return nil
}

const saveOutcomeSQL = `
	INSERT INTO scrape_outcomes (run_id, url, record_id, storage_key, error, scraped_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// SaveOutcome appends one per-URL outcome row.
func (p *PostgresProvider) SaveOutcome(ctx context.Context, outcome Outcome) error {
	_, err := p.pool.Exec(ctx, saveOutcomeSQL,
		outcome.RunID, outcome.URL, outcome.RecordID, outcome.StorageKey, outcome.Error, outcome.ScrapedAt)
	if err != nil {
		return fmt.Errorf("insert scrape outcome for %s: %w", outcome.URL, err)
	}
	return nil
}

// Close shuts down the pool.
func (p *PostgresProvider) Close() {
	p.pool.Close()
}
