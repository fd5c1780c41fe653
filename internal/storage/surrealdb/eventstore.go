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

// EventStore implements interfaces.EventStore using SurrealDB.
type EventStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewEventStore creates a new EventStore.
func NewEventStore(db *surrealdb.DB, logger *common.Logger) *EventStore {
	return &EventStore{db: db, logger: logger}
}

func (s *EventStore) InsertEvents(ctx context.Context, events []models.FilingEvent) (int, error) {
	ids := make([]string, len(events))
	records := make([]eventRecord, len(events))
	for i, e := range events {
		ids[i] = e.RecordID()
		records[i] = eventRecord{ID: surrealmodels.NewRecordID(tableEvents, ids[i]), FilingEvent: e}
	}
	return insertIgnore(ctx, s.db, tableEvents, ids, records)
}

func (s *EventStore) ListEvents(ctx context.Context, ticker string) ([]models.FilingEvent, error) {
	sql := "SELECT * FROM point_in_time_events WHERE ticker = $ticker ORDER BY filing_date ASC, period_end ASC"
	rows, err := queryRows[models.FilingEvent](ctx, s.db, sql, map[string]any{"ticker": ticker})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return rows, nil
}

func (s *EventStore) GetEventAsOf(ctx context.Context, ticker string, asOf time.Time) (*models.FilingEvent, error) {
	sql := `SELECT * FROM point_in_time_events
		WHERE ticker = $ticker AND filing_date <= $as_of
		ORDER BY filing_date DESC, period_end DESC LIMIT 1`
	rows, err := queryRows[models.FilingEvent](ctx, s.db, sql, map[string]any{"ticker": ticker, "as_of": asOf})
	if err != nil {
		return nil, fmt.Errorf("failed to get event as of %s: %w", models.FormatDate(asOf), err)
	}
	if len(rows) == 0 {
		return nil, models.ErrNotFound
	}
	return &rows[0], nil
}

// Compile-time check
var _ interfaces.EventStore = (*EventStore)(nil)
