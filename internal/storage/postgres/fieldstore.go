package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
)

// FieldStore implements interfaces.FieldStore on Postgres.
type FieldStore struct {
	pool   *pgxpool.Pool
	logger *common.Logger
}

// NewFieldStore creates a new FieldStore.
func NewFieldStore(pool *pgxpool.Pool, logger *common.Logger) *FieldStore {
	return &FieldStore{pool: pool, logger: logger}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *FieldStore) SaveCatalog(ctx context.Context, entries []models.FieldCatalogEntry) error {
	sql := `INSERT INTO field_catalog (field_name, taxonomy, label, description, count, companies_using)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (field_name) DO UPDATE SET
			taxonomy = EXCLUDED.taxonomy,
			label = EXCLUDED.label,
			description = EXCLUDED.description,
			count = EXCLUDED.count,
			companies_using = EXCLUDED.companies_using`

	_, err := execBatch(ctx, s.pool, sql, len(entries), func(i int) []any {
		e := entries[i]
		return []any{e.FieldName, e.Taxonomy, e.Label, e.Description, e.Count, nonNil(e.CompaniesUsing)}
	})
	if err != nil {
		return fmt.Errorf("failed to save field catalog: %w", err)
	}
	s.logger.Debug().Int("fields", len(entries)).Msg("Field catalog saved")
	return nil
}

func (s *FieldStore) GetCatalog(ctx context.Context) ([]models.FieldCatalogEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT field_name, taxonomy, label, description, count, companies_using
		FROM field_catalog ORDER BY field_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get field catalog: %w", err)
	}
	defer rows.Close()

	var out []models.FieldCatalogEntry
	for rows.Next() {
		var e models.FieldCatalogEntry
		if err := rows.Scan(&e.FieldName, &e.Taxonomy, &e.Label, &e.Description, &e.Count, &e.CompaniesUsing); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *FieldStore) SaveClassifications(ctx context.Context, classifications []models.FieldClassification) error {
	sql := `INSERT INTO field_categories
			(field_name, label, taxonomy, statement_type, temporal_nature, accounting_concepts, is_critical, special_handling)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (field_name) DO UPDATE SET
			label = EXCLUDED.label,
			taxonomy = EXCLUDED.taxonomy,
			statement_type = EXCLUDED.statement_type,
			temporal_nature = EXCLUDED.temporal_nature,
			accounting_concepts = EXCLUDED.accounting_concepts,
			is_critical = EXCLUDED.is_critical,
			special_handling = EXCLUDED.special_handling`

	_, err := execBatch(ctx, s.pool, sql, len(classifications), func(i int) []any {
		c := classifications[i]
		return []any{c.FieldName, c.Label, c.Taxonomy, string(c.StatementType), string(c.TemporalNature),
			nonNil(c.AccountingConcepts), c.IsCritical, nonNil(c.SpecialHandling)}
	})
	if err != nil {
		return fmt.Errorf("failed to save field classifications: %w", err)
	}
	return nil
}

func (s *FieldStore) GetClassifications(ctx context.Context) ([]models.FieldClassification, error) {
	rows, err := s.pool.Query(ctx, `SELECT field_name, label, taxonomy, statement_type, temporal_nature,
			accounting_concepts, is_critical, special_handling
		FROM field_categories ORDER BY field_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get field classifications: %w", err)
	}
	defer rows.Close()

	var out []models.FieldClassification
	for rows.Next() {
		var c models.FieldClassification
		var statement, nature string
		if err := rows.Scan(&c.FieldName, &c.Label, &c.Taxonomy, &statement, &nature,
			&c.AccountingConcepts, &c.IsCritical, &c.SpecialHandling); err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		c.StatementType = models.StatementType(statement)
		c.TemporalNature = models.TemporalNature(nature)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *FieldStore) SavePriorities(ctx context.Context, priorities []models.FieldPriority) error {
	sql := `INSERT INTO field_priorities
			(field_name, taxonomy, priority_score, availability_pct, tier, is_critical, is_deprecated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (field_name) DO UPDATE SET
			taxonomy = EXCLUDED.taxonomy,
			priority_score = EXCLUDED.priority_score,
			availability_pct = EXCLUDED.availability_pct,
			tier = EXCLUDED.tier,
			is_critical = EXCLUDED.is_critical,
			is_deprecated = EXCLUDED.is_deprecated`

	_, err := execBatch(ctx, s.pool, sql, len(priorities), func(i int) []any {
		p := priorities[i]
		return []any{p.FieldName, p.Taxonomy, p.PriorityScore, p.AvailabilityPct, string(p.Tier), p.IsCritical, p.IsDeprecated}
	})
	if err != nil {
		return fmt.Errorf("failed to save field priorities: %w", err)
	}
	return nil
}

func (s *FieldStore) GetPriorities(ctx context.Context) ([]models.FieldPriority, error) {
	rows, err := s.pool.Query(ctx, `SELECT field_name, taxonomy, priority_score, availability_pct, tier, is_critical, is_deprecated
		FROM field_priorities ORDER BY priority_score DESC, field_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get field priorities: %w", err)
	}
	defer rows.Close()

	var out []models.FieldPriority
	for rows.Next() {
		var p models.FieldPriority
		var tier string
		if err := rows.Scan(&p.FieldName, &p.Taxonomy, &p.PriorityScore, &p.AvailabilityPct, &tier, &p.IsCritical, &p.IsDeprecated); err != nil {
			return nil, fmt.Errorf("failed to scan priority: %w", err)
		}
		p.Tier = models.Tier(tier)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Compile-time check
var _ interfaces.FieldStore = (*FieldStore)(nil)
