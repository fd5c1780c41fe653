// Package timeline reconstructs a company's chronological filing events from raw facts.
package timeline

import (
	"sort"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// Anchors are concepts reported in virtually every 10-K/10-Q/20-F/40-F. Scanning only
// these recovers filing metadata without walking the whole taxonomy.
var Anchors = []string{
	"us-gaap:Assets",
	"us-gaap:StockholdersEquity",
	"us-gaap:NetIncomeLoss",
	"ifrs-full:Assets",
	"ifrs-full:Equity",
	"ifrs-full:ProfitLoss",
}

// Stats counts records the builder passed over.
type Stats struct {
	AnchorsFound     int
	MissingFiled     int
	MissingAccession int
	BadDates         int
	Duplicates       int
}

// Build returns the ticker's filing events ordered by filing date ascending, with one
// event per accession number. byConcept is keyed by qualified concept as produced by
// models.GroupByConcept. A company with no anchor concept yields an empty timeline.
func Build(ticker string, byConcept map[string][]models.RawFact) []models.FilingEvent {
	events, _ := BuildWithStats(ticker, byConcept)
	return events
}

// BuildWithStats is Build plus counts of skipped records.
func BuildWithStats(ticker string, byConcept map[string][]models.RawFact) ([]models.FilingEvent, Stats) {
	var stats Stats
	seen := make(map[string]bool)
	events := []models.FilingEvent{}

	for _, anchor := range Anchors {
		facts, ok := byConcept[anchor]
		if !ok {
			continue
		}
		stats.AnchorsFound++

		for _, f := range facts {
			if f.FilingDate == "" {
				stats.MissingFiled++
				continue
			}
			if f.AccessionNumber == "" {
				stats.MissingAccession++
				continue
			}
			// first anchor record seen for a filing describes it
			if seen[f.AccessionNumber] {
				stats.Duplicates++
				continue
			}

			filed, err := models.ParseDate(f.FilingDate)
			if err != nil {
				stats.BadDates++
				continue
			}
			end, err := models.ParseDate(f.End)
			if err != nil {
				stats.BadDates++
				continue
			}

			seen[f.AccessionNumber] = true
			events = append(events, models.FilingEvent{
				Ticker:          ticker,
				FilingDate:      filed,
				PeriodEnd:       end,
				Form:            f.Form,
				FiscalYear:      f.FiscalYear,
				FiscalPeriod:    f.FiscalPeriod,
				AccessionNumber: f.AccessionNumber,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].FilingDate.Before(events[j].FilingDate)
	})
	return events, stats
}
