// Package fiscal infers a company's fiscal-year-end month from its annual filings.
package fiscal

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// MonthUnknown is reported when no annual balance-sheet values are available.
const MonthUnknown = "Unknown"

// sourceFields are balance-sheet totals reported at every fiscal year end; the first present wins.
var sourceFields = [][2]string{
	{"us-gaap", "Assets"},
	{"ifrs-full", "Assets"},
	{"us-gaap", "StockholdersEquity"},
	{"ifrs-full", "Equity"},
	{"us-gaap", "LiabilitiesAndStockholdersEquity"},
}

const (
	highConfidenceShare = 0.8
	minSamples          = 3
)

// DetectYearEnd takes the modal month of annual-filing period ends for the first
// available source field. Confidence is High above an 80% modal share, Medium otherwise,
// and Low with fewer than three samples.
func DetectYearEnd(ticker string, cf *models.CompanyFacts) *models.FiscalYearMetadata {
	meta := &models.FiscalYearMetadata{
		Ticker:             ticker,
		FiscalYearEndMonth: MonthUnknown,
		Confidence:         models.ConfidenceNone,
	}

	values, source := sourceValues(cf)
	if len(values) == 0 {
		meta.Notes = "No balance-sheet totals found"
		return meta
	}

	var (
		ends      []time.Time
		formsSeen = make(map[string]bool)
	)
	for _, v := range values {
		if !models.IsAnnualOrAmendedForm(v.Form) {
			continue
		}
		formsSeen[v.Form] = true
		end, err := models.ParseDate(v.End)
		if err != nil {
			continue
		}
		ends = append(ends, end)
	}
	for f := range formsSeen {
		meta.FilingFormsFound = append(meta.FilingFormsFound, f)
	}
	sort.Strings(meta.FilingFormsFound)

	if len(ends) == 0 {
		meta.Notes = "No annual filings found in " + source
		return meta
	}

	month, count := modalMonth(ends)
	total := len(ends)
	share := float64(count) / float64(total)

	meta.FiscalYearEndMonth = month
	meta.SampleSize = total
	meta.DominantMonthPct = decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()

	switch {
	case total < minSamples:
		meta.Confidence = models.ConfidenceLow
	case share > highConfidenceShare:
		meta.Confidence = models.ConfidenceHigh
	default:
		meta.Confidence = models.ConfidenceMedium
	}

	latest := ends[0]
	for _, e := range ends[1:] {
		if e.After(latest) {
			latest = e
		}
	}
	meta.RecentFilingDate = &latest

	if varyingDays(ends, month) {
		meta.Notes = "Period end day varies within " + month + "; 52/53-week fiscal calendar likely"
	}
	return meta
}

// sourceValues returns the USD values (falling back to shares) of the first source field present.
func sourceValues(cf *models.CompanyFacts) ([]models.FactValue, string) {
	for _, sf := range sourceFields {
		ff, ok := cf.Field(sf[0], sf[1])
		if !ok {
			continue
		}
		values := ff.Units["USD"]
		if len(values) == 0 {
			values = ff.Units["shares"]
		}
		if len(values) > 0 {
			return values, sf[0] + ":" + sf[1]
		}
	}
	return nil, ""
}

// modalMonth returns the most frequent month name; ties go to the month seen first.
func modalMonth(ends []time.Time) (string, int) {
	counts := make(map[time.Month]int)
	var order []time.Month
	for _, e := range ends {
		m := e.Month()
		if counts[m] == 0 {
			order = append(order, m)
		}
		counts[m]++
	}

	best := order[0]
	for _, m := range order[1:] {
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best.String(), counts[best]
}

func varyingDays(ends []time.Time, month string) bool {
	day := 0
	for _, e := range ends {
		if e.Month().String() != month {
			continue
		}
		if day == 0 {
			day = e.Day()
			continue
		}
		if e.Day() != day {
			return true
		}
	}
	return false
}
