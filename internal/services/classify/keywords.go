// Package classify assigns statement type, temporal nature, concepts and handling tags to XBRL fields.
package classify

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ConceptRule tags a field with Name when any keyword appears in its text.
type ConceptRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// SpecialRule tags a field with Name when any keyword appears in its text,
// or any name keyword appears in the lower-cased field name alone.
type SpecialRule struct {
	Name         string   `yaml:"name"`
	Keywords     []string `yaml:"keywords"`
	NameKeywords []string `yaml:"name_keywords,omitempty"`
}

// KeywordTables holds every keyword list the classifier consults.
// Tables are treated as immutable once passed to New.
type KeywordTables struct {
	CashFlow         []string `yaml:"cash_flow"`
	Income           []string `yaml:"income"`
	IncomeExclusions []string `yaml:"income_exclusions"`
	Equity           []string `yaml:"equity"`
	BalanceSheet     []string `yaml:"balance_sheet"`
	AssetMarkers     []string `yaml:"asset_markers"`
	LiabilityMarkers []string `yaml:"liability_markers"`
	EntityMarkers    []string `yaml:"entity_markers"`
	EntityPrefix     string   `yaml:"entity_prefix"`

	PointInTimeTerms []string `yaml:"point_in_time_terms"`
	PeriodTerms      []string `yaml:"period_terms"`
	SnapshotTerms    []string `yaml:"snapshot_terms"`

	Concepts         []ConceptRule `yaml:"concepts"`
	CriticalPatterns []string      `yaml:"critical_patterns"`
	SpecialHandling  []SpecialRule `yaml:"special_handling"`
}

// DefaultKeywordTables returns the built-in US-GAAP/IFRS keyword set.
func DefaultKeywordTables() KeywordTables {
	return KeywordTables{
		CashFlow: []string{
			"cash flow", "operating activities", "investing activities", "financing activities",
			"proceeds from", "payments for", "purchase of", "sale of", "issuance", "repayment",
		},
		Income: []string{
			"revenue", "sales", "income", "earnings", "profit", "loss", "expense", "cost",
			"margin", "ebitda", "ebit", "operating", "gross", "tax expense", "interest expense",
			"depreciation", "amortization",
		},
		IncomeExclusions: []string{"deferred", "payable", "receivable", "asset", "liability"},
		Equity: []string{
			"common stock", "preferred stock", "treasury stock", "additional paid",
			"dividends", "shares issued", "shares outstanding",
		},
		BalanceSheet: []string{
			"assets", "liabilities", "equity", "stockholders", "shareholders", "payable",
			"receivable", "inventory", "property", "plant", "equipment", "goodwill",
			"intangible", "investment", "debt", "capital", "retained", "accumulated",
			"deferred", "prepaid", "accrued",
		},
		AssetMarkers:     []string{"asset"},
		LiabilityMarkers: []string{"liability", "payable"},
		EntityMarkers:    []string{"entity", "document"},
		EntityPrefix:     "Entity",

		PointInTimeTerms: []string{"asset", "liability", "equity", "stock", "debt"},
		PeriodTerms: []string{
			"during", "for the period", "revenue", "expense", "income", "loss", "flow",
			"proceeds", "payments", "increase", "decrease", "change",
		},
		SnapshotTerms: []string{"shares", "stock", "balance", "carrying", "fair value"},

		Concepts: []ConceptRule{
			{Name: "Revenue", Keywords: []string{"revenue", "sales", "contract with customer"}},
			{Name: "Expense", Keywords: []string{"expense", "cost of", "depreciation", "amortization"}},
			{Name: "Asset", Keywords: []string{"asset", "receivable", "inventory", "property", "equipment", "investment", "goodwill", "intangible"}},
			{Name: "Liability", Keywords: []string{"liability", "payable", "debt", "obligation", "deferred revenue"}},
			{Name: "Equity", Keywords: []string{"equity", "stock", "capital", "retained earnings", "dividend"}},
			{Name: "Cash", Keywords: []string{"cash"}},
			{Name: "Tax", Keywords: []string{"tax"}},
			{Name: "Share-Based Compensation", Keywords: []string{"share-based", "stock option", "restricted stock"}},
			{Name: "Earnings Per Share", Keywords: []string{"earnings per share", "eps"}},
		},
		CriticalPatterns: []string{
			"Revenue", "Sales", "NetIncome", "EarningsPerShare",
			"TotalAssets", "TotalLiabilities", "StockholdersEquity",
			"CashAndCashEquivalents", "OperatingCashFlow", "FreeCashFlow",
			"GrossProfit", "OperatingIncome",
			"AccountsReceivable", "Inventory", "AccountsPayable", "Debt", "CommonStock",
			"SharesOutstanding", "SharesIssued",
		},
		SpecialHandling: []SpecialRule{
			{Name: "Per-Share Metric", Keywords: []string{"per share"}, NameKeywords: []string{"pershare"}},
			{Name: "Ratio/Rate", Keywords: []string{"ratio", "rate"}},
			{Name: "Fair Value", Keywords: []string{"fair value"}},
			{Name: "Accumulated/Cumulative", Keywords: []string{"accumulated", "cumulative"}},
			{Name: "Deferred", Keywords: []string{"deferred"}},
			{Name: "Foreign Currency", Keywords: []string{"foreign", "currency", "exchange"}},
			{Name: "Share-Based Compensation", Keywords: []string{"share-based", "stock option"}},
			{Name: "Discontinued Operations", Keywords: []string{"discontinued"}},
		},
	}
}

// LoadKeywordTables reads a YAML file over the defaults.
// Keys present in the file replace the corresponding default list wholesale.
func LoadKeywordTables(path string) (KeywordTables, error) {
	tables := DefaultKeywordTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return KeywordTables{}, fmt.Errorf("failed to read keyword tables %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return KeywordTables{}, fmt.Errorf("failed to parse keyword tables %s: %w", path, err)
	}
	if err := tables.Validate(); err != nil {
		return KeywordTables{}, fmt.Errorf("invalid keyword tables %s: %w", path, err)
	}
	return tables, nil
}

// Validate rejects tables the classifier cannot run with.
func (t KeywordTables) Validate() error {
	lists := map[string][]string{
		"cash_flow":           t.CashFlow,
		"income":              t.Income,
		"equity":              t.Equity,
		"balance_sheet":       t.BalanceSheet,
		"asset_markers":       t.AssetMarkers,
		"liability_markers":   t.LiabilityMarkers,
		"point_in_time_terms": t.PointInTimeTerms,
		"period_terms":        t.PeriodTerms,
		"critical_patterns":   t.CriticalPatterns,
	}
	for name, list := range lists {
		if len(list) == 0 {
			return fmt.Errorf("keyword list %q is empty", name)
		}
		for i, kw := range list {
			if kw == "" {
				return fmt.Errorf("keyword list %q has an empty entry at %d", name, i)
			}
		}
	}
	for _, c := range t.Concepts {
		if c.Name == "" || len(c.Keywords) == 0 {
			return fmt.Errorf("concept rule %q needs a name and keywords", c.Name)
		}
	}
	for _, s := range t.SpecialHandling {
		if s.Name == "" || len(s.Keywords)+len(s.NameKeywords) == 0 {
			return fmt.Errorf("special handling rule %q needs a name and keywords", s.Name)
		}
	}
	for _, p := range t.CriticalPatterns {
		if _, err := regexp.Compile("(?i)" + p); err != nil {
			return fmt.Errorf("critical pattern %q: %w", p, err)
		}
	}
	return nil
}
