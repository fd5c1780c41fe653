// Package interfaces defines service contracts for pitfacts
package interfaces

import (
	"context"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// SECClient provides access to the SEC EDGAR JSON API
type SECClient interface {
	// GetCompanyFacts retrieves the XBRL companyfacts payload for a CIK
	GetCompanyFacts(ctx context.Context, cik string) (*models.CompanyFacts, error)

	// GetSubmissions retrieves filer metadata (SIC code, fiscal year end) for a CIK
	GetSubmissions(ctx context.Context, cik string) (*models.Submission, error)

	// GetCompanyTickers returns the ticker to zero-padded CIK map
	GetCompanyTickers(ctx context.Context) (map[string]string, error)
}
