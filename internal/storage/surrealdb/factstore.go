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

// FactStore implements interfaces.FactStore using SurrealDB.
// Record ids are derived from the natural key, so a fact is written at most once.
type FactStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewFactStore creates a new FactStore.
func NewFactStore(db *surrealdb.DB, logger *common.Logger) *FactStore {
	return &FactStore{db: db, logger: logger}
}

func (s *FactStore) InsertFacts(ctx context.Context, facts []models.NormalizedFact) (int, error) {
	if len(facts) == 0 {
		return 0, nil
	}
	ids := make([]string, len(facts))
	records := make([]factRecord, len(facts))
	for i, f := range facts {
		ids[i] = f.RecordID()
		records[i] = factRecord{ID: surrealmodels.NewRecordID(tableFacts, ids[i]), NormalizedFact: f}
	}
	n, err := insertIgnore(ctx, s.db, tableFacts, ids, records)
	if err != nil {
		return n, err
	}
	s.logger.Debug().
		Str("ticker", facts[0].Ticker).
		Int("offered", len(facts)).
		Int("inserted", n).
		Msg("Facts stored")
	return n, nil
}

func (s *FactStore) CountFacts(ctx context.Context, ticker string) (int, error) {
	type countResult struct {
		Cnt int `json:"cnt"`
	}
	sql := "SELECT count() AS cnt FROM financial_facts WHERE ticker = $ticker GROUP ALL"
	rows, err := queryRows[countResult](ctx, s.db, sql, map[string]any{"ticker": ticker})
	if err != nil {
		return 0, fmt.Errorf("failed to count facts: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Cnt, nil
}

func (s *FactStore) ListFacts(ctx context.Context, ticker, field string) ([]models.NormalizedFact, error) {
	sql := "SELECT * FROM financial_facts WHERE ticker = $ticker"
	vars := map[string]any{"ticker": ticker}
	if field != "" {
		sql += " AND field_name = $field"
		vars["field"] = field
	}
	sql += " ORDER BY filing_date ASC, period_end ASC"

	rows, err := queryRows[models.NormalizedFact](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	return rows, nil
}

func (s *FactStore) GetFactAsOf(ctx context.Context, ticker, field string, asOf time.Time) (*models.NormalizedFact, error) {
	sql := `SELECT * FROM financial_facts
		WHERE ticker = $ticker AND field_name = $field AND filing_date <= $as_of
		ORDER BY filing_date DESC, period_end DESC LIMIT 1`
	vars := map[string]any{"ticker": ticker, "field": field, "as_of": asOf}

	rows, err := queryRows[models.NormalizedFact](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to get fact as of %s: %w", models.FormatDate(asOf), err)
	}
	if len(rows) == 0 {
		return nil, models.ErrNotFound
	}
	return &rows[0], nil
}

// Compile-time check
var _ interfaces.FactStore = (*FactStore)(nil)
