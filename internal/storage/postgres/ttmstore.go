package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
)

// TTMStore implements interfaces.TTMStore on Postgres.
type TTMStore struct {
	pool   *pgxpool.Pool
	logger *common.Logger
}

// NewTTMStore creates a new TTMStore.
func NewTTMStore(pool *pgxpool.Pool, logger *common.Logger) *TTMStore {
	return &TTMStore{pool: pool, logger: logger}
}

const ttmColumns = "ticker, metric_name, as_of_date, period_end, ttm_value, source_filing"

func (s *TTMStore) SaveTTM(ctx context.Context, records []models.TTMRecord) error {
	sql := `INSERT INTO ttm_metrics (` + ttmColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ticker, metric_name, as_of_date) DO UPDATE SET
			period_end = EXCLUDED.period_end,
			ttm_value = EXCLUDED.ttm_value,
			source_filing = EXCLUDED.source_filing`

	_, err := execBatch(ctx, s.pool, sql, len(records), func(i int) []any {
		r := records[i]
		return []any{r.Ticker, r.MetricName, r.AsOfDate, r.PeriodEnd, r.TTMValue, r.SourceFiling}
	})
	if err != nil {
		return fmt.Errorf("failed to save ttm records: %w", err)
	}
	return nil
}

func scanTTM(row rowScanner) (models.TTMRecord, error) {
	var r models.TTMRecord
	err := row.Scan(&r.Ticker, &r.MetricName, &r.AsOfDate, &r.PeriodEnd, &r.TTMValue, &r.SourceFiling)
	return r, err
}

func (s *TTMStore) ListTTM(ctx context.Context, ticker, metric string) ([]models.TTMRecord, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+ttmColumns+" FROM ttm_metrics WHERE ticker = $1 AND metric_name = $2 ORDER BY as_of_date", ticker, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to list ttm records: %w", err)
	}
	defer rows.Close()

	var out []models.TTMRecord
	for rows.Next() {
		r, err := scanTTM(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ttm record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *TTMStore) GetTTMAsOf(ctx context.Context, ticker, metric string, asOf time.Time) (*models.TTMRecord, error) {
	sql := "SELECT " + ttmColumns + ` FROM ttm_metrics
		WHERE ticker = $1 AND metric_name = $2 AND as_of_date <= $3
		ORDER BY as_of_date DESC LIMIT 1`

	r, err := scanTTM(s.pool.QueryRow(ctx, sql, ticker, metric, asOf))
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// Compile-time check
var _ interfaces.TTMStore = (*TTMStore)(nil)
