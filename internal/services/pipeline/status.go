package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// CompanyStatus is what the store holds for one ticker after earlier runs.
type CompanyStatus struct {
	Company    *models.Company            `json:"company,omitempty"`
	FiscalYear *models.FiscalYearMetadata `json:"fiscal_year,omitempty"`
	Facts      int                        `json:"facts"`
	Events     []models.FilingEvent       `json:"events,omitempty"`
}

// CompanyStatus reads the stored profile, fiscal year, fact count and filing events for
// ticker. Returns ErrNotFound when nothing has been stored for it.
func (s *Service) CompanyStatus(ctx context.Context, ticker string) (*CompanyStatus, error) {
	status := &CompanyStatus{}

	company, err := s.storage.CompanyStore().GetCompany(ctx, ticker)
	switch {
	case err == nil:
		status.Company = company
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("failed to get company %s: %w", ticker, err)
	}

	meta, err := s.storage.CompanyStore().GetFiscalYear(ctx, ticker)
	switch {
	case err == nil:
		status.FiscalYear = meta
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("failed to get fiscal year for %s: %w", ticker, err)
	}

	if status.Facts, err = s.storage.FactStore().CountFacts(ctx, ticker); err != nil {
		return nil, fmt.Errorf("failed to count facts for %s: %w", ticker, err)
	}
	if status.Events, err = s.storage.EventStore().ListEvents(ctx, ticker); err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", ticker, err)
	}

	if status.Company == nil && status.Facts == 0 && len(status.Events) == 0 {
		return nil, fmt.Errorf("company %s: %w", ticker, models.ErrNotFound)
	}
	return status, nil
}

// StoredPriorities returns the top priorities saved by the last analysis, highest first.
// top <= 0 returns all of them.
func (s *Service) StoredPriorities(ctx context.Context, top int) ([]models.FieldPriority, error) {
	priorities, err := s.storage.FieldStore().GetPriorities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get field priorities: %w", err)
	}
	if top > 0 && top < len(priorities) {
		priorities = priorities[:top]
	}
	return priorities, nil
}
