package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// batchSize bounds the number of records sent in one statement.
const batchSize = 500

// Stored rows carry their record id alongside the model fields.
type (
	catalogRecord struct {
		ID surrealmodels.RecordID `json:"id"`
		models.FieldCatalogEntry
	}
	categoryRecord struct {
		ID surrealmodels.RecordID `json:"id"`
		models.FieldClassification
	}
	priorityRecord struct {
		ID surrealmodels.RecordID `json:"id"`
		models.FieldPriority
	}
	factRecord struct {
		ID surrealmodels.RecordID `json:"id"`
		models.NormalizedFact
	}
	eventRecord struct {
		ID surrealmodels.RecordID `json:"id"`
		models.FilingEvent
	}
	ttmRecord struct {
		ID surrealmodels.RecordID `json:"id"`
		models.TTMRecord
	}
)

// forChunks calls fn over [lo, hi) windows of at most batchSize.
func forChunks(n int, fn func(lo, hi int) error) error {
	for lo := 0; lo < n; lo += batchSize {
		hi := min(lo+batchSize, n)
		if err := fn(lo, hi); err != nil {
			return err
		}
	}
	return nil
}

// replaceRecords deletes then re-inserts records by id inside one transaction per chunk,
// giving insert-or-replace semantics. A failed chunk leaves its previous rows in place
// and is retried before giving up.
func replaceRecords[R any](ctx context.Context, db *surrealdb.DB, table string, ids []string, records []R) error {
	sql := fmt.Sprintf("BEGIN TRANSACTION; DELETE $rids; INSERT INTO %s $rows; COMMIT TRANSACTION;", table)
	return forChunks(len(records), func(lo, hi int) error {
		rids := make([]surrealmodels.RecordID, 0, hi-lo)
		for _, id := range ids[lo:hi] {
			rids = append(rids, surrealmodels.NewRecordID(table, id))
		}
		vars := map[string]any{"rids": rids, "rows": records[lo:hi]}

		for attempt := 1; attempt <= 3; attempt++ {
			_, err := surrealdb.Query[any](ctx, db, sql, vars)
			if err == nil {
				return nil
			}
			if attempt == 3 || ctx.Err() != nil {
				return fmt.Errorf("failed to replace %s records after retries: %w", table, err)
			}
		}
		return nil
	})
}

// insertIgnore inserts records whose id is not yet stored and returns how many were new.
// The first occurrence of a duplicated id within records wins.
func insertIgnore[R any](ctx context.Context, db *surrealdb.DB, table string, ids []string, records []R) (int, error) {
	seen := make(map[string]bool, len(ids))
	var uniqIDs []string
	var uniq []R
	for i, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		uniqIDs = append(uniqIDs, id)
		uniq = append(uniq, records[i])
	}

	inserted := 0
	err := forChunks(len(uniq), func(lo, hi int) error {
		rids := make([]surrealmodels.RecordID, 0, hi-lo)
		for _, id := range uniqIDs[lo:hi] {
			rids = append(rids, surrealmodels.NewRecordID(table, id))
		}

		existing, err := queryRows[surrealmodels.RecordID](ctx, db, "SELECT VALUE id FROM $rids", map[string]any{"rids": rids})
		if err != nil {
			return fmt.Errorf("failed to check existing %s records: %w", table, err)
		}
		stored := make(map[string]bool, len(existing))
		for _, rid := range existing {
			stored[fmt.Sprint(rid.ID)] = true
		}

		var fresh []R
		for i, id := range uniqIDs[lo:hi] {
			if !stored[id] {
				fresh = append(fresh, uniq[lo+i])
			}
		}
		if len(fresh) == 0 {
			return nil
		}

		sql := fmt.Sprintf("INSERT INTO %s $rows", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, map[string]any{"rows": fresh}); err != nil {
			return fmt.Errorf("failed to insert %s records: %w", table, err)
		}
		inserted += len(fresh)
		return nil
	})
	return inserted, err
}
