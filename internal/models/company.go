package models

import "time"

// Sector values assigned through SIC enrichment.
const (
	SectorTechnology     = "Technology"
	SectorFinance        = "Finance"
	SectorRetail         = "Retail"
	SectorHealthcare     = "Healthcare"
	SectorEnergy         = "Energy"
	SectorMining         = "Mining/Materials"
	SectorIndustrial     = "Industrial"
	SectorTelecom        = "Telecom"
	SectorUtilities      = "Utilities"
	SectorRealEstate     = "Real Estate"
	SectorTransportation = "Transportation"
	SectorUnknown        = "Unknown"
)

// Company is the reference record for one ticker.
type Company struct {
	Ticker     string    `json:"ticker"`
	CIK        string    `json:"cik"`
	EntityName string    `json:"entity_name"`
	Sector     string    `json:"sector"`
	Industry   string    `json:"industry"`
	SICCode    string    `json:"sic_code"`
	FYEMonth   string    `json:"fye_month"`
	EnrichedAt time.Time `json:"enriched_at"`
}

// Submission is the subset of the SEC submissions endpoint used for enrichment.
type Submission struct {
	CIK            CIK      `json:"cik"`
	Name           string   `json:"name"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sicDescription"`
	Tickers        []string `json:"tickers"`
	FiscalYearEnd  string   `json:"fiscalYearEnd"`
}

// Confidence levels for fiscal-year-end detection.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
	ConfidenceNone   = "None"
)

// FiscalYearMetadata is the detected fiscal-year-end month for a company.
type FiscalYearMetadata struct {
	Ticker             string     `json:"ticker"`
	FiscalYearEndMonth string     `json:"fiscal_year_end_month"`
	Confidence         string     `json:"confidence"`
	SampleSize         int        `json:"sample_size"`
	DominantMonthPct   float64    `json:"dominant_month_pct"`
	FilingFormsFound   []string   `json:"filing_forms_found"`
	RecentFilingDate   *time.Time `json:"recent_filing_date,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}
