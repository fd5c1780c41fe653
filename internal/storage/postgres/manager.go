// Package postgres implements pitfacts storage on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS companies (
    ticker       TEXT PRIMARY KEY,
    cik          TEXT NOT NULL,
    entity_name  TEXT NOT NULL,
    sector       TEXT NOT NULL DEFAULT '',
    industry     TEXT NOT NULL DEFAULT '',
    sic_code     TEXT NOT NULL DEFAULT '',
    fye_month    TEXT NOT NULL DEFAULT '',
    enriched_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS fiscal_year_metadata (
    ticker                 TEXT PRIMARY KEY,
    fiscal_year_end_month  TEXT NOT NULL,
    confidence             TEXT NOT NULL,
    sample_size            INTEGER NOT NULL,
    dominant_month_pct     DOUBLE PRECISION NOT NULL,
    filing_forms_found     TEXT[] NOT NULL DEFAULT '{}',
    recent_filing_date     DATE,
    notes                  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS field_catalog (
    field_name       TEXT PRIMARY KEY,
    taxonomy         TEXT NOT NULL,
    label            TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    count            INTEGER NOT NULL,
    companies_using  TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS field_categories (
    field_name           TEXT PRIMARY KEY,
    label                TEXT NOT NULL DEFAULT '',
    taxonomy             TEXT NOT NULL DEFAULT '',
    statement_type       TEXT NOT NULL,
    temporal_nature      TEXT NOT NULL,
    accounting_concepts  TEXT[] NOT NULL DEFAULT '{}',
    is_critical          BOOLEAN NOT NULL,
    special_handling     TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS field_priorities (
    field_name        TEXT PRIMARY KEY,
    taxonomy          TEXT NOT NULL DEFAULT '',
    priority_score    DOUBLE PRECISION NOT NULL,
    availability_pct  DOUBLE PRECISION NOT NULL,
    tier              TEXT NOT NULL,
    is_critical       BOOLEAN NOT NULL,
    is_deprecated     BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS financial_facts (
    id              BIGSERIAL PRIMARY KEY,
    ticker          TEXT NOT NULL,
    cik             TEXT NOT NULL,
    entity_name     TEXT NOT NULL,
    sector          TEXT NOT NULL DEFAULT '',
    industry        TEXT NOT NULL DEFAULT '',
    field_name      TEXT NOT NULL,
    field_label     TEXT NOT NULL DEFAULT '',
    statement_type  TEXT NOT NULL,
    temporal_type   TEXT NOT NULL,
    period_start    DATE,
    period_end      DATE NOT NULL,
    value           DOUBLE PRECISION,
    unit            TEXT NOT NULL,
    filing_date     DATE NOT NULL,
    fiscal_year     INTEGER,
    fiscal_period   TEXT NOT NULL DEFAULT '',
    form            TEXT NOT NULL DEFAULT '',
    is_amended      BOOLEAN NOT NULL,
    field_priority  DOUBLE PRECISION NOT NULL,
    taxonomy        TEXT NOT NULL,
    account_number  TEXT NOT NULL DEFAULT '',
    frame           TEXT NOT NULL DEFAULT '',
    UNIQUE (ticker, field_name, period_end, fiscal_period, unit, account_number)
);
CREATE INDEX IF NOT EXISTS financial_facts_asof ON financial_facts (ticker, field_name, filing_date);

CREATE TABLE IF NOT EXISTS point_in_time_events (
    id             BIGSERIAL PRIMARY KEY,
    ticker         TEXT NOT NULL,
    filing_date    DATE NOT NULL,
    period_end     DATE NOT NULL,
    form           TEXT NOT NULL,
    fiscal_year    INTEGER,
    fiscal_period  TEXT NOT NULL DEFAULT '',
    accession      TEXT NOT NULL,
    UNIQUE (ticker, filing_date, period_end, form, accession)
);

CREATE TABLE IF NOT EXISTS ttm_metrics (
    id             BIGSERIAL PRIMARY KEY,
    ticker         TEXT NOT NULL,
    metric_name    TEXT NOT NULL,
    as_of_date     DATE NOT NULL,
    period_end     DATE NOT NULL,
    ttm_value      DOUBLE PRECISION NOT NULL,
    source_filing  TEXT NOT NULL DEFAULT '',
    UNIQUE (ticker, metric_name, as_of_date)
);
`

// Manager implements interfaces.StorageManager on a pgx connection pool.
type Manager struct {
	pool   *pgxpool.Pool
	logger *common.Logger

	companyStore *CompanyStore
	fieldStore   *FieldStore
	factStore    *FactStore
	eventStore   *EventStore
	ttmStore     *TTMStore
}

// NewManager opens a pool against the configured DSN and applies the schema.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()
	cfg := config.Storage.Postgres

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Str("database", poolConfig.ConnConfig.Database).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("Postgres storage manager initialized")

	return newManager(pool, logger), nil
}

func newManager(pool *pgxpool.Pool, logger *common.Logger) *Manager {
	return &Manager{
		pool:         pool,
		logger:       logger,
		companyStore: NewCompanyStore(pool, logger),
		fieldStore:   NewFieldStore(pool, logger),
		factStore:    NewFactStore(pool, logger),
		eventStore:   NewEventStore(pool, logger),
		ttmStore:     NewTTMStore(pool, logger),
	}
}

// Migrate creates every table and index if missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (m *Manager) CompanyStore() interfaces.CompanyStore {
	return m.companyStore
}

func (m *Manager) FieldStore() interfaces.FieldStore {
	return m.fieldStore
}

func (m *Manager) FactStore() interfaces.FactStore {
	return m.factStore
}

func (m *Manager) EventStore() interfaces.EventStore {
	return m.eventStore
}

func (m *Manager) TTMStore() interfaces.TTMStore {
	return m.ttmStore
}

func (m *Manager) Backend() string {
	return common.BackendPostgres
}

func (m *Manager) Close() error {
	m.pool.Close()
	return nil
}

// batchSize bounds the number of statements queued in one pgx.Batch.
const batchSize = 500

// execBatch queues sql once per row in windows of batchSize and returns total rows affected.
func execBatch(ctx context.Context, pool *pgxpool.Pool, sql string, n int, args func(i int) []any) (int, error) {
	affected := 0
	for lo := 0; lo < n; lo += batchSize {
		hi := min(lo+batchSize, n)

		batch := &pgx.Batch{}
		for i := lo; i < hi; i++ {
			batch.Queue(sql, args(i)...)
		}

		br := pool.SendBatch(ctx, batch)
		for i := lo; i < hi; i++ {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return affected, err
			}
			affected += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return affected, err
		}
	}
	return affected, nil
}

// notFound maps pgx.ErrNoRows to models.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
