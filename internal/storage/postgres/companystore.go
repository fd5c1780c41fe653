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

// CompanyStore implements interfaces.CompanyStore on Postgres.
type CompanyStore struct {
	pool   *pgxpool.Pool
	logger *common.Logger
}

// NewCompanyStore creates a new CompanyStore.
func NewCompanyStore(pool *pgxpool.Pool, logger *common.Logger) *CompanyStore {
	return &CompanyStore{pool: pool, logger: logger}
}

const companyColumns = "ticker, cik, entity_name, sector, industry, sic_code, fye_month, enriched_at"

func (s *CompanyStore) SaveCompany(ctx context.Context, c *models.Company) error {
	sql := `INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker) DO UPDATE SET
			cik = EXCLUDED.cik,
			entity_name = EXCLUDED.entity_name,
			sector = EXCLUDED.sector,
			industry = EXCLUDED.industry,
			sic_code = EXCLUDED.sic_code,
			fye_month = EXCLUDED.fye_month,
			enriched_at = EXCLUDED.enriched_at`

	var enrichedAt *time.Time
	if !c.EnrichedAt.IsZero() {
		enrichedAt = &c.EnrichedAt
	}
	if _, err := s.pool.Exec(ctx, sql, c.Ticker, c.CIK, c.EntityName, c.Sector, c.Industry, c.SICCode, c.FYEMonth, enrichedAt); err != nil {
		return fmt.Errorf("failed to save company %s: %w", c.Ticker, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*models.Company, error) {
	var c models.Company
	var enrichedAt *time.Time
	if err := row.Scan(&c.Ticker, &c.CIK, &c.EntityName, &c.Sector, &c.Industry, &c.SICCode, &c.FYEMonth, &enrichedAt); err != nil {
		return nil, err
	}
	if enrichedAt != nil {
		c.EnrichedAt = enrichedAt.UTC()
	}
	return &c, nil
}

func (s *CompanyStore) GetCompany(ctx context.Context, ticker string) (*models.Company, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+companyColumns+" FROM companies WHERE ticker = $1", ticker)
	c, err := scanCompany(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *CompanyStore) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *CompanyStore) SaveFiscalYear(ctx context.Context, m *models.FiscalYearMetadata) error {
	sql := `INSERT INTO fiscal_year_metadata
			(ticker, fiscal_year_end_month, confidence, sample_size, dominant_month_pct, filing_forms_found, recent_filing_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker) DO UPDATE SET
			fiscal_year_end_month = EXCLUDED.fiscal_year_end_month,
			confidence = EXCLUDED.confidence,
			sample_size = EXCLUDED.sample_size,
			dominant_month_pct = EXCLUDED.dominant_month_pct,
			filing_forms_found = EXCLUDED.filing_forms_found,
			recent_filing_date = EXCLUDED.recent_filing_date,
			notes = EXCLUDED.notes`

	forms := m.FilingFormsFound
	if forms == nil {
		forms = []string{}
	}
	if _, err := s.pool.Exec(ctx, sql, m.Ticker, m.FiscalYearEndMonth, m.Confidence, m.SampleSize,
		m.DominantMonthPct, forms, m.RecentFilingDate, m.Notes); err != nil {
		return fmt.Errorf("failed to save fiscal year metadata %s: %w", m.Ticker, err)
	}
	return nil
}

func (s *CompanyStore) GetFiscalYear(ctx context.Context, ticker string) (*models.FiscalYearMetadata, error) {
	sql := `SELECT ticker, fiscal_year_end_month, confidence, sample_size, dominant_month_pct,
			filing_forms_found, recent_filing_date, notes
		FROM fiscal_year_metadata WHERE ticker = $1`

	var m models.FiscalYearMetadata
	err := s.pool.QueryRow(ctx, sql, ticker).Scan(&m.Ticker, &m.FiscalYearEndMonth, &m.Confidence, &m.SampleSize,
		&m.DominantMonthPct, &m.FilingFormsFound, &m.RecentFilingDate, &m.Notes)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// Compile-time check
var _ interfaces.CompanyStore = (*CompanyStore)(nil)
