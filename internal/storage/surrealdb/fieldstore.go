package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// FieldStore implements interfaces.FieldStore using SurrealDB.
// Rows are keyed by field name.
type FieldStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewFieldStore creates a new FieldStore.
func NewFieldStore(db *surrealdb.DB, logger *common.Logger) *FieldStore {
	return &FieldStore{db: db, logger: logger}
}

func (s *FieldStore) SaveCatalog(ctx context.Context, entries []models.FieldCatalogEntry) error {
	ids := make([]string, len(entries))
	records := make([]catalogRecord, len(entries))
	for i, e := range entries {
		ids[i] = e.FieldName
		records[i] = catalogRecord{ID: surrealmodels.NewRecordID(tableFieldCatalog, e.FieldName), FieldCatalogEntry: e}
	}
	if err := replaceRecords(ctx, s.db, tableFieldCatalog, ids, records); err != nil {
		return err
	}
	s.logger.Debug().Int("fields", len(entries)).Msg("Field catalog saved")
	return nil
}

func (s *FieldStore) GetCatalog(ctx context.Context) ([]models.FieldCatalogEntry, error) {
	rows, err := queryRows[models.FieldCatalogEntry](ctx, s.db, "SELECT * FROM field_catalog ORDER BY field_name ASC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get field catalog: %w", err)
	}
	return rows, nil
}

func (s *FieldStore) SaveClassifications(ctx context.Context, classifications []models.FieldClassification) error {
	ids := make([]string, len(classifications))
	records := make([]categoryRecord, len(classifications))
	for i, c := range classifications {
		ids[i] = c.FieldName
		records[i] = categoryRecord{ID: surrealmodels.NewRecordID(tableFieldCategories, c.FieldName), FieldClassification: c}
	}
	return replaceRecords(ctx, s.db, tableFieldCategories, ids, records)
}

func (s *FieldStore) GetClassifications(ctx context.Context) ([]models.FieldClassification, error) {
	rows, err := queryRows[models.FieldClassification](ctx, s.db, "SELECT * FROM field_categories ORDER BY field_name ASC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get field classifications: %w", err)
	}
	return rows, nil
}

func (s *FieldStore) SavePriorities(ctx context.Context, priorities []models.FieldPriority) error {
	ids := make([]string, len(priorities))
	records := make([]priorityRecord, len(priorities))
	for i, p := range priorities {
		ids[i] = p.FieldName
		records[i] = priorityRecord{ID: surrealmodels.NewRecordID(tableFieldPriorities, p.FieldName), FieldPriority: p}
	}
	return replaceRecords(ctx, s.db, tableFieldPriorities, ids, records)
}

func (s *FieldStore) GetPriorities(ctx context.Context) ([]models.FieldPriority, error) {
	sql := "SELECT * FROM field_priorities ORDER BY priority_score DESC, field_name ASC"
	rows, err := queryRows[models.FieldPriority](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get field priorities: %w", err)
	}
	return rows, nil
}

// Compile-time check
var _ interfaces.FieldStore = (*FieldStore)(nil)
