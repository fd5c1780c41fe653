// Package ttm derives trailing-twelve-month metric series from a filing timeline.
package ttm

import (
	"fmt"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// Concept names a TTM metric family.
type Concept string

const (
	Revenue   Concept = "Revenue"
	NetIncome Concept = "NetIncome"
)

// Concepts lists every supported concept in calculation order.
var Concepts = []Concept{Revenue, NetIncome}

// conceptFields are the qualified source concepts for each metric, in lookup order.
// A later field overwrites an earlier one for the same (end, fp, form) key.
var conceptFields = map[Concept][]string{
	Revenue: {
		"us-gaap:Revenues",
		"us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax",
		"ifrs-full:Revenue",
	},
	NetIncome: {
		"us-gaap:NetIncomeLoss",
		"us-gaap:ProfitLoss",
		"ifrs-full:ProfitLoss",
	},
}

// MetricName returns the stored metric name, e.g. "Revenue_TTM".
func (c Concept) MetricName() string {
	switch c {
	case Revenue:
		return models.MetricRevenueTTM
	case NetIncome:
		return models.MetricNetIncomeTTM
	default:
		return string(c) + "_TTM"
	}
}

// Fields returns the source concepts consulted for c.
func (c Concept) Fields() []string {
	return append([]string(nil), conceptFields[c]...)
}

// ParseConcept accepts "Revenue", "NetIncome" or their metric names.
func ParseConcept(s string) (Concept, error) {
	for _, c := range Concepts {
		if s == string(c) || s == c.MetricName() {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown TTM concept: %s", s)
}

type valueKey struct {
	end  string
	fp   string
	form string
}

// valueIndex maps (end, fp, form) to a value and remembers first-insertion order
// for the form-agnostic fallback lookup.
type valueIndex struct {
	values map[valueKey]float64
	order  []valueKey
}

func newValueIndex(byConcept map[string][]models.RawFact, fields []string) *valueIndex {
	idx := &valueIndex{values: make(map[valueKey]float64)}
	for _, field := range fields {
		for _, f := range byConcept[field] {
			if f.Value == nil || f.End == "" {
				continue
			}
			k := valueKey{end: f.End, fp: f.FiscalPeriod, form: f.Form}
			if _, ok := idx.values[k]; !ok {
				idx.order = append(idx.order, k)
			}
			idx.values[k] = *f.Value
		}
	}
	return idx
}

// lookup prefers an exact form match, then the first inserted key with the same end and fp.
func (idx *valueIndex) lookup(end, fp, form string) (float64, bool) {
	if v, ok := idx.values[valueKey{end: end, fp: fp, form: form}]; ok {
		return v, true
	}
	for _, k := range idx.order {
		if k.end == end && k.fp == fp {
			return idx.values[k], true
		}
	}
	return 0, false
}

// Calculate walks timeline in filing-date order and emits a record each time an
// annual filing (10-K, 20-F, 40-F) establishes a full-year value for its period end.
//
// Quarterly filings do not roll the TTM forward; a 10-Q leaves the current value
// unchanged and emits nothing. Between annual filings the series therefore stalls.
func Calculate(ticker string, timeline []models.FilingEvent, byConcept map[string][]models.RawFact, concept Concept) []models.TTMRecord {
	fields, ok := conceptFields[concept]
	if !ok {
		return nil
	}
	idx := newValueIndex(byConcept, fields)

	var out []models.TTMRecord
	for _, ev := range timeline {
		if !models.IsAnnualForm(ev.Form) {
			continue
		}
		v, ok := idx.lookup(models.FormatDate(ev.PeriodEnd), "FY", ev.Form)
		if !ok {
			continue
		}
		out = append(out, models.TTMRecord{
			Ticker:       ticker,
			MetricName:   concept.MetricName(),
			AsOfDate:     ev.FilingDate,
			PeriodEnd:    ev.PeriodEnd,
			TTMValue:     v,
			SourceFiling: ev.Form,
		})
	}
	return out
}
