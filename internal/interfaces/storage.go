// Package interfaces defines service contracts for pitfacts
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	CompanyStore() CompanyStore
	FieldStore() FieldStore
	FactStore() FactStore
	EventStore() EventStore
	TTMStore() TTMStore

	// Backend returns the configured backend name (surrealdb, postgres).
	Backend() string

	// Lifecycle
	Close() error
}

// CompanyStore persists enriched company profiles and fiscal-year metadata.
// Both are insert-or-replace keyed by ticker.
type CompanyStore interface {
	SaveCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, ticker string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]*models.Company, error)

	SaveFiscalYear(ctx context.Context, meta *models.FiscalYearMetadata) error
	GetFiscalYear(ctx context.Context, ticker string) (*models.FiscalYearMetadata, error)
}

// FieldStore persists the wholesale-recomputed field analysis tables.
// Every Save replaces rows with the same field name.
type FieldStore interface {
	SaveCatalog(ctx context.Context, entries []models.FieldCatalogEntry) error
	GetCatalog(ctx context.Context) ([]models.FieldCatalogEntry, error)

	SaveClassifications(ctx context.Context, classifications []models.FieldClassification) error
	GetClassifications(ctx context.Context) ([]models.FieldClassification, error)

	// SavePriorities stores priorities; GetPriorities returns them ordered by score descending.
	SavePriorities(ctx context.Context, priorities []models.FieldPriority) error
	GetPriorities(ctx context.Context) ([]models.FieldPriority, error)
}

// FactStore persists normalized facts with insert-or-ignore semantics.
type FactStore interface {
	// InsertFacts stores facts whose unique key is not yet present and returns how many were new.
	InsertFacts(ctx context.Context, facts []models.NormalizedFact) (int, error)

	CountFacts(ctx context.Context, ticker string) (int, error)

	// ListFacts returns a ticker's facts ordered by filing date then period end.
	// An empty field returns every field.
	ListFacts(ctx context.Context, ticker, field string) ([]models.NormalizedFact, error)

	// GetFactAsOf returns the latest fact for field filed on or before asOf.
	// Returns models.ErrNotFound when nothing was known at that date.
	GetFactAsOf(ctx context.Context, ticker, field string, asOf time.Time) (*models.NormalizedFact, error)
}

// EventStore persists filing events with insert-or-ignore semantics.
type EventStore interface {
	InsertEvents(ctx context.Context, events []models.FilingEvent) (int, error)

	// ListEvents returns a ticker's events ordered by filing date ascending.
	ListEvents(ctx context.Context, ticker string) ([]models.FilingEvent, error)

	// GetEventAsOf returns the most recent event filed on or before asOf, or models.ErrNotFound.
	GetEventAsOf(ctx context.Context, ticker string, asOf time.Time) (*models.FilingEvent, error)
}

// TTMStore persists TTM records with insert-or-replace semantics.
type TTMStore interface {
	SaveTTM(ctx context.Context, records []models.TTMRecord) error

	// ListTTM returns a ticker's records for metric ordered by as-of date ascending.
	ListTTM(ctx context.Context, ticker, metric string) ([]models.TTMRecord, error)

	// GetTTMAsOf returns the latest record with as_of_date on or before asOf, or models.ErrNotFound.
	GetTTMAsOf(ctx context.Context, ticker, metric string, asOf time.Time) (*models.TTMRecord, error)
}
