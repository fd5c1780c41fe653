package models

import "time"

// StatementType names the financial statement a field belongs to.
type StatementType string

const (
	StatementCashFlow           StatementType = "Cash Flow Statement"
	StatementIncome             StatementType = "Income Statement"
	StatementEquity             StatementType = "Balance Sheet - Equity"
	StatementAssets             StatementType = "Balance Sheet - Assets"
	StatementLiabilities        StatementType = "Balance Sheet - Liabilities"
	StatementBalanceSheet       StatementType = "Balance Sheet"
	StatementDocumentEntityInfo StatementType = "Document & Entity Information"
	StatementOther              StatementType = "Other/Footnotes"
)

// TemporalNature is whether a value is measured as of a date or over a date range.
type TemporalNature string

const (
	PointInTime TemporalNature = "Point-in-Time"
	Period      TemporalNature = "Period"
)

// Valid reports whether n is one of the two defined natures.
func (n TemporalNature) Valid() bool {
	return n == PointInTime || n == Period
}

// FieldClassification is the deterministic classification of one XBRL field name.
type FieldClassification struct {
	FieldName          string         `json:"field_name"`
	Label              string         `json:"label"`
	Taxonomy           string         `json:"taxonomy"`
	StatementType      StatementType  `json:"statement_type"`
	TemporalNature     TemporalNature `json:"temporal_nature"`
	AccountingConcepts []string       `json:"accounting_concepts"`
	IsCritical         bool           `json:"is_critical"`
	SpecialHandling    []string       `json:"special_handling"`
}

// HasConcept reports whether the classification carries the concept tag.
func (c FieldClassification) HasConcept(concept string) bool {
	for _, x := range c.AccountingConcepts {
		if x == concept {
			return true
		}
	}
	return false
}

// Tier buckets a field by the share of companies reporting it.
type Tier string

const (
	TierUniversal  Tier = "universal"
	TierVeryCommon Tier = "very_common"
	TierCommon     Tier = "common"
	TierModerate   Tier = "moderate"
	TierRare       Tier = "rare"
	TierVeryRare   Tier = "very_rare"
)

// Tiers lists every tier from most to least available.
var Tiers = []Tier{TierUniversal, TierVeryCommon, TierCommon, TierModerate, TierRare, TierVeryRare}

// TierFor maps an availability percentage (0-100) to its tier.
func TierFor(pct float64) Tier {
	switch {
	case pct >= 90:
		return TierUniversal
	case pct >= 70:
		return TierVeryCommon
	case pct >= 50:
		return TierCommon
	case pct >= 30:
		return TierModerate
	case pct >= 10:
		return TierRare
	default:
		return TierVeryRare
	}
}

// FieldPriority ranks a field for canonical-concept selection.
type FieldPriority struct {
	FieldName       string  `json:"field_name"`
	Taxonomy        string  `json:"taxonomy"`
	PriorityScore   float64 `json:"priority_score"`
	AvailabilityPct float64 `json:"availability_pct"`
	Tier            Tier    `json:"tier"`
	IsCritical      bool    `json:"is_critical"`
	IsDeprecated    bool    `json:"is_deprecated"`
}

// FieldCatalogEntry records how widely a field is reported across the company universe.
type FieldCatalogEntry struct {
	FieldName      string   `json:"field_name"`
	Taxonomy       string   `json:"taxonomy"`
	Label          string   `json:"label"`
	Description    string   `json:"description"`
	Count          int      `json:"count"`
	CompaniesUsing []string `json:"companies_using"`
}

// DeprecatedField is a catalog field whose label or description marks it deprecated.
type DeprecatedField struct {
	FieldName       string     `json:"field_name"`
	Label           string     `json:"label"`
	DeprecatedSince *time.Time `json:"deprecated_since,omitempty"`
}

// FieldAvailability is the per-field outcome of availability analysis.
type FieldAvailability struct {
	FieldName          string         `json:"field_name"`
	Count              int            `json:"count"`
	AvailabilityPct    float64        `json:"availability_pct"`
	Tier               Tier           `json:"tier"`
	SectorDistribution map[string]int `json:"sector_distribution"`
	IsSectorSpecific   bool           `json:"is_sector_specific"`
	DominantSector     string         `json:"dominant_sector,omitempty"`
}

// AvailabilityReport summarises availability across the catalog.
type AvailabilityReport struct {
	TotalCompanies       int                          `json:"total_companies"`
	TotalFields          int                          `json:"total_fields"`
	TierCounts           map[Tier]int                 `json:"tier_counts"`
	SectorSpecificFields int                          `json:"sector_specific_fields"`
	Fields               map[string]FieldAvailability `json:"fields"`
}

// ConsolidationRule names the canonical field among a group of synonymous concepts.
type ConsolidationRule struct {
	Concept             string   `json:"concept"`
	PrimaryField        string   `json:"primary_field"`
	PrimaryAvailability float64  `json:"primary_availability"`
	Alternatives        []string `json:"alternatives"`
}

// TaxonomyMapping pairs a US-GAAP field with its IFRS counterpart when both are reported.
type TaxonomyMapping struct {
	USGAAPField string `json:"us_gaap_field"`
	IFRSField   string `json:"ifrs_field"`
	Confidence  string `json:"mapping_confidence"`
	Note        string `json:"note"`
}

// FieldAnalysis is the outcome of the catalog phase of a run.
type FieldAnalysis struct {
	RunID            string                `json:"run_id"`
	Companies        int                   `json:"companies"`
	Catalog          []FieldCatalogEntry   `json:"catalog"`
	Classifications  []FieldClassification `json:"classifications"`
	Priorities       []FieldPriority       `json:"priorities"`
	Deprecated       []DeprecatedField     `json:"deprecated"`
	Availability     AvailabilityReport    `json:"availability"`
	Consolidation    []ConsolidationRule   `json:"consolidation"`
	TaxonomyMappings []TaxonomyMapping     `json:"gaap_ifrs_mappings"`
}
