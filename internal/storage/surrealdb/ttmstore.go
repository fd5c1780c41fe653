package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// TTMStore implements interfaces.TTMStore using SurrealDB.
type TTMStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewTTMStore creates a new TTMStore.
func NewTTMStore(db *surrealdb.DB, logger *common.Logger) *TTMStore {
	return &TTMStore{db: db, logger: logger}
}

func (s *TTMStore) SaveTTM(ctx context.Context, records []models.TTMRecord) error {
	ids := make([]string, len(records))
	rows := make([]ttmRecord, len(records))
	for i, r := range records {
		ids[i] = r.RecordID()
		rows[i] = ttmRecord{ID: surrealmodels.NewRecordID(tableTTM, ids[i]), TTMRecord: r}
	}
	return replaceRecords(ctx, s.db, tableTTM, ids, rows)
}

func (s *TTMStore) ListTTM(ctx context.Context, ticker, metric string) ([]models.TTMRecord, error) {
	sql := "SELECT * FROM ttm_metrics WHERE ticker = $ticker AND metric_name = $metric ORDER BY as_of_date ASC"
	rows, err := queryRows[models.TTMRecord](ctx, s.db, sql, map[string]any{"ticker": ticker, "metric": metric})
	if err != nil {
		return nil, fmt.Errorf("failed to list ttm records: %w", err)
	}
	return rows, nil
}

func (s *TTMStore) GetTTMAsOf(ctx context.Context, ticker, metric string, asOf time.Time) (*models.TTMRecord, error) {
	sql := `SELECT * FROM ttm_metrics
		WHERE ticker = $ticker AND metric_name = $metric AND as_of_date <= $as_of
		ORDER BY as_of_date DESC LIMIT 1`
	vars := map[string]any{"ticker": ticker, "metric": metric, "as_of": asOf}
	rows, err := queryRows[models.TTMRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to get ttm as of %s: %w", models.FormatDate(asOf), err)
	}
	if len(rows) == 0 {
		return nil, models.ErrNotFound
	}
	return &rows[0], nil
}

// Compile-time check
var _ interfaces.TTMStore = (*TTMStore)(nil)
