package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// Default tags used when no rule matches.
const (
	ConceptOther    = "Other"
	HandlingDefault = "Standard"
)

// Classifier is a keyword-table driven field classifier. It is safe for concurrent use.
type Classifier struct {
	tables   KeywordTables
	critical []*regexp.Regexp
}

// New builds a Classifier, validating and lower-casing the tables.
func New(tables KeywordTables) (*Classifier, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}

	c := &Classifier{tables: lowerTables(tables)}
	for _, p := range tables.CriticalPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("critical pattern %q: %w", p, err)
		}
		c.critical = append(c.critical, re)
	}
	return c, nil
}

// MustNew is New for tables known to be valid, such as DefaultKeywordTables.
func MustNew(tables KeywordTables) *Classifier {
	c, err := New(tables)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the classification of one field. It never fails; unmatched
// input falls through to Other/Footnotes, Period, [Other], not critical, [Standard].
func (c *Classifier) Classify(fieldName, label, description string) models.FieldClassification {
	fieldLower := strings.ToLower(fieldName)
	text := strings.ToLower(fieldName + " " + label + " " + description)

	return models.FieldClassification{
		FieldName:          fieldName,
		Label:              label,
		StatementType:      c.statementType(fieldName, text),
		TemporalNature:     c.temporalNature(fieldLower, text),
		AccountingConcepts: c.concepts(text),
		IsCritical:         c.IsCritical(fieldName),
		SpecialHandling:    c.specialHandling(fieldLower, text),
	}
}

// IsCritical reports whether the raw field name matches a critical pattern.
func (c *Classifier) IsCritical(fieldName string) bool {
	for _, re := range c.critical {
		if re.MatchString(fieldName) {
			return true
		}
	}
	return false
}

func (c *Classifier) statementType(fieldName, text string) models.StatementType {
	t := &c.tables

	if containsAny(text, t.CashFlow) {
		return models.StatementCashFlow
	}
	// Income keywords lose to balance-sheet disambiguators ("deferred income", "interest receivable")
	if containsAny(text, t.Income) && !containsAny(text, t.IncomeExclusions) {
		return models.StatementIncome
	}

	if containsAny(text, t.Equity) {
		return models.StatementEquity
	}
	if containsAny(text, t.BalanceSheet) {
		switch {
		case containsAny(text, t.AssetMarkers):
			return models.StatementAssets
		case containsAny(text, t.LiabilityMarkers):
			return models.StatementLiabilities
		default:
			return models.StatementBalanceSheet
		}
	}

	if containsAny(text, t.EntityMarkers) || (t.EntityPrefix != "" && strings.HasPrefix(fieldName, t.EntityPrefix)) {
		return models.StatementDocumentEntityInfo
	}
	return models.StatementOther
}

func (c *Classifier) temporalNature(fieldLower, text string) models.TemporalNature {
	t := &c.tables
	hasPeriod := containsAny(text, t.PeriodTerms)

	if containsAny(text, t.PointInTimeTerms) && !hasPeriod {
		return models.PointInTime
	}
	if hasPeriod {
		return models.Period
	}
	if containsAny(fieldLower, t.SnapshotTerms) {
		return models.PointInTime
	}
	return models.Period
}

func (c *Classifier) concepts(text string) []string {
	var out []string
	for _, rule := range c.tables.Concepts {
		if containsAny(text, rule.Keywords) {
			out = append(out, rule.Name)
		}
	}
	if len(out) == 0 {
		return []string{ConceptOther}
	}
	return out
}

func (c *Classifier) specialHandling(fieldLower, text string) []string {
	var out []string
	for _, rule := range c.tables.SpecialHandling {
		if containsAny(text, rule.Keywords) || containsAny(fieldLower, rule.NameKeywords) {
			out = append(out, rule.Name)
		}
	}
	if len(out) == 0 {
		return []string{HandlingDefault}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// lowerTables returns a copy of t with every keyword lower-cased.
// The entity prefix and critical patterns keep their case; both match the raw field name.
func lowerTables(t KeywordTables) KeywordTables {
	out := t
	out.CashFlow = lowerAll(t.CashFlow)
	out.Income = lowerAll(t.Income)
	out.IncomeExclusions = lowerAll(t.IncomeExclusions)
	out.Equity = lowerAll(t.Equity)
	out.BalanceSheet = lowerAll(t.BalanceSheet)
	out.AssetMarkers = lowerAll(t.AssetMarkers)
	out.LiabilityMarkers = lowerAll(t.LiabilityMarkers)
	out.EntityMarkers = lowerAll(t.EntityMarkers)
	out.PointInTimeTerms = lowerAll(t.PointInTimeTerms)
	out.PeriodTerms = lowerAll(t.PeriodTerms)
	out.SnapshotTerms = lowerAll(t.SnapshotTerms)

	out.Concepts = make([]ConceptRule, len(t.Concepts))
	for i, r := range t.Concepts {
		out.Concepts[i] = ConceptRule{Name: r.Name, Keywords: lowerAll(r.Keywords)}
	}
	out.SpecialHandling = make([]SpecialRule, len(t.SpecialHandling))
	for i, r := range t.SpecialHandling {
		out.SpecialHandling[i] = SpecialRule{Name: r.Name, Keywords: lowerAll(r.Keywords), NameKeywords: lowerAll(r.NameKeywords)}
	}
	out.CriticalPatterns = append([]string(nil), t.CriticalPatterns...)
	return out
}

func lowerAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
