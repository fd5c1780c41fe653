// Package interfaces defines service contracts for pitfacts
package interfaces

import (
	"context"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// FieldClassifier assigns classification metadata to an XBRL field.
// Implementations must be deterministic and never fail.
type FieldClassifier interface {
	Classify(fieldName, label, description string) models.FieldClassification

	// IsCritical reports whether the raw field name is a canonical critical field
	IsCritical(fieldName string) bool
}

// Enricher stamps sector and industry onto a ticker.
// Unknown tickers yield empty strings, never an error.
type Enricher interface {
	Lookup(ticker string) (sector, industry string)
}

// PipelineService runs batch ingestion over a ticker universe
type PipelineService interface {
	// Run processes tickers end to end and returns counts for the run
	Run(ctx context.Context, tickers []string) (*models.RunSummary, error)

	// AnalyzeFields rebuilds the catalog, classifications and priorities without storing facts
	AnalyzeFields(ctx context.Context, tickers []string) (*models.FieldAnalysis, error)
}

// ReportService writes stored series to files under the configured output directory
type ReportService interface {
	// ExportFacts writes a ticker's facts as CSV; an empty field exports every field
	ExportFacts(ctx context.Context, ticker, field string) (string, error)

	ExportTTM(ctx context.Context, ticker string) (string, error)
	ChartTTM(ctx context.Context, ticker string) (string, error)
}
