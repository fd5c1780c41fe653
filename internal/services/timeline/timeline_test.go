package timeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/pitfacts/internal/models"
)

func raw(concept, end, filed, form, fp, accn string) models.RawFact {
	tax, field, _ := strings.Cut(concept, ":")
	v := 1.0
	return models.RawFact{
		Taxonomy:        tax,
		FieldName:       field,
		Unit:            "USD",
		Value:           &v,
		End:             end,
		FilingDate:      filed,
		Form:            form,
		FiscalPeriod:    fp,
		AccessionNumber: accn,
	}
}

func TestBuild_DedupByAccession(t *testing.T) {
	facts := []models.RawFact{
		raw("us-gaap:Assets", "2023-12-31", "2024-02-01", "10-K", "FY", "0001-23-456"),
		raw("us-gaap:NetIncomeLoss", "2023-12-31", "2024-02-01", "10-K", "FY", "0001-23-456"),
	}

	events := Build("ACME", models.GroupByConcept(facts))

	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, "ACME", e.Ticker)
	assert.Equal(t, "0001-23-456", e.AccessionNumber)
	assert.Equal(t, "2024-02-01", models.FormatDate(e.FilingDate))
	assert.Equal(t, "2023-12-31", models.FormatDate(e.PeriodEnd))
	assert.Equal(t, "10-K", e.Form)
}

func TestBuild_FirstSeenWins(t *testing.T) {
	// the same filing reports the prior-year comparative first
	facts := []models.RawFact{
		raw("us-gaap:Assets", "2022-12-31", "2024-02-01", "10-K", "FY", "A-1"),
		raw("us-gaap:Assets", "2023-12-31", "2024-02-01", "10-K", "FY", "A-1"),
	}

	events, stats := BuildWithStats("ACME", models.GroupByConcept(facts))

	require.Len(t, events, 1)
	assert.Equal(t, "2022-12-31", models.FormatDate(events[0].PeriodEnd))
	assert.Equal(t, 1, stats.Duplicates)
}

func TestBuild_SortedByFilingDate(t *testing.T) {
	facts := []models.RawFact{
		raw("us-gaap:Assets", "2023-09-30", "2023-11-03", "10-Q", "Q3", "A-3"),
		raw("us-gaap:Assets", "2023-03-31", "2023-05-05", "10-Q", "Q1", "A-1"),
		raw("us-gaap:StockholdersEquity", "2023-06-30", "2023-08-04", "10-Q", "Q2", "A-2"),
		raw("us-gaap:NetIncomeLoss", "2023-12-31", "2024-02-01", "10-K", "FY", "A-4"),
		raw("us-gaap:NetIncomeLoss", "2023-09-30", "2023-11-03", "10-Q", "Q3", "A-3"),
	}

	events := Build("ACME", models.GroupByConcept(facts))

	require.Len(t, events, 4)
	for i := 0; i+1 < len(events); i++ {
		assert.False(t, events[i+1].FilingDate.Before(events[i].FilingDate), "timeline must be monotonic")
	}
	seen := map[string]bool{}
	for _, e := range events {
		assert.False(t, seen[e.AccessionNumber], "duplicate accession %s", e.AccessionNumber)
		seen[e.AccessionNumber] = true
	}
	assert.Equal(t, "A-1", events[0].AccessionNumber)
	assert.Equal(t, "A-4", events[3].AccessionNumber)
}

func TestBuild_SkipsIncompleteRecords(t *testing.T) {
	facts := []models.RawFact{
		raw("us-gaap:Assets", "2023-12-31", "", "10-K", "FY", "A-1"),
		raw("us-gaap:Assets", "2023-12-31", "2024-02-01", "10-K", "FY", ""),
		raw("us-gaap:Assets", "2023-12-31", "02/01/2024", "10-K", "FY", "A-2"),
		raw("us-gaap:Assets", "2023-12-31", "2024-02-01", "10-K", "FY", "A-3"),
	}

	events, stats := BuildWithStats("ACME", models.GroupByConcept(facts))

	require.Len(t, events, 1)
	assert.Equal(t, "A-3", events[0].AccessionNumber)
	assert.Equal(t, 1, stats.MissingFiled)
	assert.Equal(t, 1, stats.MissingAccession)
	assert.Equal(t, 1, stats.BadDates)
}

func TestBuild_NoAnchors(t *testing.T) {
	facts := []models.RawFact{
		raw("us-gaap:Goodwill", "2023-12-31", "2024-02-01", "10-K", "FY", "A-1"),
		raw("dei:EntityCommonStockSharesOutstanding", "2024-01-15", "2024-02-01", "10-K", "", "A-1"),
	}

	events, stats := BuildWithStats("SHELL", models.GroupByConcept(facts))

	assert.Empty(t, events)
	assert.NotNil(t, events)
	assert.Equal(t, 0, stats.AnchorsFound)
}

func TestBuild_IFRSAnchors(t *testing.T) {
	facts := []models.RawFact{
		raw("ifrs-full:Equity", "2023-12-31", "2024-03-20", "20-F", "FY", "B-1"),
		raw("ifrs-full:ProfitLoss", "2022-12-31", "2023-03-22", "20-F", "FY", "B-0"),
	}

	events := Build("VALE", models.GroupByConcept(facts))

	require.Len(t, events, 2)
	assert.Equal(t, "B-0", events[0].AccessionNumber)
	assert.Equal(t, "20-F", events[1].Form)
}
