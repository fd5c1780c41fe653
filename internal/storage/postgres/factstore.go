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

// FactStore implements interfaces.FactStore on Postgres.
// The table's unique constraint on the natural key gives insert-or-ignore.
type FactStore struct {
	pool   *pgxpool.Pool
	logger *common.Logger
}

// NewFactStore creates a new FactStore.
func NewFactStore(pool *pgxpool.Pool, logger *common.Logger) *FactStore {
	return &FactStore{pool: pool, logger: logger}
}

const factColumns = `ticker, cik, entity_name, sector, industry, field_name, field_label, statement_type,
	temporal_type, period_start, period_end, value, unit, filing_date, fiscal_year, fiscal_period,
	form, is_amended, field_priority, taxonomy, account_number, frame`

func (s *FactStore) InsertFacts(ctx context.Context, facts []models.NormalizedFact) (int, error) {
	if len(facts) == 0 {
		return 0, nil
	}
	sql := `INSERT INTO financial_facts (` + factColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (ticker, field_name, period_end, fiscal_period, unit, account_number) DO NOTHING`

	n, err := execBatch(ctx, s.pool, sql, len(facts), func(i int) []any {
		f := facts[i]
		return []any{
			f.Ticker, f.CIK, f.EntityName, f.Sector, f.Industry, f.FieldName, f.FieldLabel, string(f.StatementType),
			string(f.TemporalType), f.PeriodStart, f.PeriodEnd, f.Value, f.Unit, f.FilingDate, f.FiscalYear, f.FiscalPeriod,
			f.Form, f.IsAmended, f.FieldPriority, f.Taxonomy, f.AccountNumber, f.Frame,
		}
	})
	if err != nil {
		return n, fmt.Errorf("failed to insert facts: %w", err)
	}
	s.logger.Debug().
		Str("ticker", facts[0].Ticker).
		Int("offered", len(facts)).
		Int("inserted", n).
		Msg("Facts stored")
	return n, nil
}

func scanFact(row rowScanner) (models.NormalizedFact, error) {
	var f models.NormalizedFact
	var statement, temporal string
	err := row.Scan(
		&f.Ticker, &f.CIK, &f.EntityName, &f.Sector, &f.Industry, &f.FieldName, &f.FieldLabel, &statement,
		&temporal, &f.PeriodStart, &f.PeriodEnd, &f.Value, &f.Unit, &f.FilingDate, &f.FiscalYear, &f.FiscalPeriod,
		&f.Form, &f.IsAmended, &f.FieldPriority, &f.Taxonomy, &f.AccountNumber, &f.Frame,
	)
	f.StatementType = models.StatementType(statement)
	f.TemporalType = models.TemporalNature(temporal)
	return f, err
}

func (s *FactStore) CountFacts(ctx context.Context, ticker string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM financial_facts WHERE ticker = $1", ticker).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count facts: %w", err)
	}
	return n, nil
}

func (s *FactStore) ListFacts(ctx context.Context, ticker, field string) ([]models.NormalizedFact, error) {
	sql := "SELECT " + factColumns + " FROM financial_facts WHERE ticker = $1"
	args := []any{ticker}
	if field != "" {
		sql += " AND field_name = $2"
		args = append(args, field)
	}
	sql += " ORDER BY filing_date, period_end, id"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	defer rows.Close()

	var out []models.NormalizedFact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *FactStore) GetFactAsOf(ctx context.Context, ticker, field string, asOf time.Time) (*models.NormalizedFact, error) {
	sql := "SELECT " + factColumns + ` FROM financial_facts
		WHERE ticker = $1 AND field_name = $2 AND filing_date <= $3
		ORDER BY filing_date DESC, period_end DESC, id DESC LIMIT 1`

	f, err := scanFact(s.pool.QueryRow(ctx, sql, ticker, field, asOf))
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// Compile-time check
var _ interfaces.FactStore = (*FactStore)(nil)
