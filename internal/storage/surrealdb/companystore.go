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

// CompanyStore implements interfaces.CompanyStore using SurrealDB.
type CompanyStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewCompanyStore creates a new CompanyStore.
func NewCompanyStore(db *surrealdb.DB, logger *common.Logger) *CompanyStore {
	return &CompanyStore{db: db, logger: logger}
}

func (s *CompanyStore) SaveCompany(ctx context.Context, company *models.Company) error {
	rid := surrealmodels.NewRecordID(tableCompanies, tickerToID(company.Ticker))
	if err := upsert[models.Company](ctx, s.db, rid, company); err != nil {
		return fmt.Errorf("failed to save company %s: %w", company.Ticker, err)
	}
	return nil
}

func (s *CompanyStore) GetCompany(ctx context.Context, ticker string) (*models.Company, error) {
	company, err := surrealdb.Select[models.Company](ctx, s.db, surrealmodels.NewRecordID(tableCompanies, tickerToID(ticker)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil || company.Ticker == "" {
		return nil, models.ErrNotFound
	}
	return company, nil
}

func (s *CompanyStore) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	rows, err := queryRows[models.Company](ctx, s.db, "SELECT * FROM companies ORDER BY ticker ASC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	companies := make([]*models.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, &rows[i])
	}
	return companies, nil
}

func (s *CompanyStore) SaveFiscalYear(ctx context.Context, meta *models.FiscalYearMetadata) error {
	rid := surrealmodels.NewRecordID(tableFiscalYear, tickerToID(meta.Ticker))
	if err := upsert[models.FiscalYearMetadata](ctx, s.db, rid, meta); err != nil {
		return fmt.Errorf("failed to save fiscal year metadata %s: %w", meta.Ticker, err)
	}
	return nil
}

func (s *CompanyStore) GetFiscalYear(ctx context.Context, ticker string) (*models.FiscalYearMetadata, error) {
	meta, err := surrealdb.Select[models.FiscalYearMetadata](ctx, s.db, surrealmodels.NewRecordID(tableFiscalYear, tickerToID(ticker)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fiscal year metadata: %w", err)
	}
	if meta == nil || meta.Ticker == "" {
		return nil, models.ErrNotFound
	}
	return meta, nil
}

// upsert replaces one record, retrying transient failures.
func upsert[T any](ctx context.Context, db *surrealdb.DB, rid surrealmodels.RecordID, data any) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": rid, "data": data}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]T](ctx, db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("upsert failed after retries: %w", lastErr)
}

// Compile-time check
var _ interfaces.CompanyStore = (*CompanyStore)(nil)
