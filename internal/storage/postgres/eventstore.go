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

// EventStore implements interfaces.EventStore on Postgres.
type EventStore struct {
	pool   *pgxpool.Pool
	logger *common.Logger
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *pgxpool.Pool, logger *common.Logger) *EventStore {
	return &EventStore{pool: pool, logger: logger}
}

const eventColumns = "ticker, filing_date, period_end, form, fiscal_year, fiscal_period, accession"

func (s *EventStore) InsertEvents(ctx context.Context, events []models.FilingEvent) (int, error) {
	sql := `INSERT INTO point_in_time_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, filing_date, period_end, form, accession) DO NOTHING`

	n, err := execBatch(ctx, s.pool, sql, len(events), func(i int) []any {
		e := events[i]
		return []any{e.Ticker, e.FilingDate, e.PeriodEnd, e.Form, e.FiscalYear, e.FiscalPeriod, e.AccessionNumber}
	})
	if err != nil {
		return n, fmt.Errorf("failed to insert events: %w", err)
	}
	return n, nil
}

func scanEvent(row rowScanner) (models.FilingEvent, error) {
	var e models.FilingEvent
	err := row.Scan(&e.Ticker, &e.FilingDate, &e.PeriodEnd, &e.Form, &e.FiscalYear, &e.FiscalPeriod, &e.AccessionNumber)
	return e, err
}

func (s *EventStore) ListEvents(ctx context.Context, ticker string) ([]models.FilingEvent, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+eventColumns+" FROM point_in_time_events WHERE ticker = $1 ORDER BY filing_date, period_end, id", ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var out []models.FilingEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *EventStore) GetEventAsOf(ctx context.Context, ticker string, asOf time.Time) (*models.FilingEvent, error) {
	sql := "SELECT " + eventColumns + ` FROM point_in_time_events
		WHERE ticker = $1 AND filing_date <= $2
		ORDER BY filing_date DESC, period_end DESC, id DESC LIMIT 1`

	e, err := scanEvent(s.pool.QueryRow(ctx, sql, ticker, asOf))
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// Compile-time check
var _ interfaces.EventStore = (*EventStore)(nil)
