package surrealdb

import (
	"context"
	"testing"

	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactStore_InsertIgnore(t *testing.T) {
	db := testDB(t)
	store := NewFactStore(db, testLogger())
	ctx := context.Background()

	facts := []models.NormalizedFact{
		testFact("AAPL", "Assets", "2022-09-24", "2022-10-28", "FY", "0000320193-22-000108", 352755e6),
		testFact("AAPL", "Assets", "2023-09-30", "2023-11-03", "FY", "0000320193-23-000106", 352583e6),
	}

	n, err := store.InsertFacts(ctx, facts)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Same natural key with a different value is ignored
	dup := facts[1]
	dup.Value = fval(1)
	n, err = store.InsertFacts(ctx, []models.NormalizedFact{facts[0], dup})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := store.CountFacts(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := store.ListFacts(ctx, "AAPL", "Assets")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 352583e6, *list[1].Value)
}

func TestFactStore_AmendmentIsSeparateFact(t *testing.T) {
	db := testDB(t)
	store := NewFactStore(db, testLogger())
	ctx := context.Background()

	original := testFact("AAPL", "Assets", "2023-09-30", "2023-11-03", "FY", "0000320193-23-000106", 100)
	amended := testFact("AAPL", "Assets", "2023-09-30", "2024-02-01", "FY", "0000320193-24-000010", 110)
	amended.Form = "10-K/A"
	amended.IsAmended = true

	n, err := store.InsertFacts(ctx, []models.NormalizedFact{original, amended})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	before, err := store.GetFactAsOf(ctx, "AAPL", "Assets", date("2023-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, *before.Value)
	assert.False(t, before.IsAmended)

	after, err := store.GetFactAsOf(ctx, "AAPL", "Assets", date("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 110.0, *after.Value)
	assert.True(t, after.IsAmended)

	_, err = store.GetFactAsOf(ctx, "AAPL", "Assets", date("2023-11-02"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFactStore_ListAllFields(t *testing.T) {
	db := testDB(t)
	store := NewFactStore(db, testLogger())
	ctx := context.Background()

	_, err := store.InsertFacts(ctx, []models.NormalizedFact{
		testFact("MSFT", "Liabilities", "2023-06-30", "2023-07-27", "FY", "a", 1),
		testFact("MSFT", "Assets", "2023-06-30", "2023-07-27", "FY", "a", 2),
		testFact("AAPL", "Assets", "2023-09-30", "2023-11-03", "FY", "b", 3),
	})
	require.NoError(t, err)

	list, err := store.ListFacts(ctx, "MSFT", "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := store.InsertFacts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEventStore_InsertAndAsOf(t *testing.T) {
	db := testDB(t)
	store := NewEventStore(db, testLogger())
	ctx := context.Background()

	events := []models.FilingEvent{
		{Ticker: "AAPL", FilingDate: date("2023-08-04"), PeriodEnd: date("2023-07-01"), Form: "10-Q", FiscalYear: ival(2023), FiscalPeriod: "Q3", AccessionNumber: "0000320193-23-000077"},
		{Ticker: "AAPL", FilingDate: date("2023-11-03"), PeriodEnd: date("2023-09-30"), Form: "10-K", FiscalYear: ival(2023), FiscalPeriod: "FY", AccessionNumber: "0000320193-23-000106"},
	}

	n, err := store.InsertEvents(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.InsertEvents(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	list, err := store.ListEvents(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "10-Q", list[0].Form)

	got, err := store.GetEventAsOf(ctx, "AAPL", date("2023-10-01"))
	require.NoError(t, err)
	assert.Equal(t, "0000320193-23-000077", got.AccessionNumber)

	_, err = store.GetEventAsOf(ctx, "AAPL", date("2020-01-01"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTTMStore_ReplaceAndAsOf(t *testing.T) {
	db := testDB(t)
	store := NewTTMStore(db, testLogger())
	ctx := context.Background()

	rec := models.TTMRecord{
		Ticker:       "AAPL",
		MetricName:   models.MetricRevenueTTM,
		AsOfDate:     date("2023-11-03"),
		PeriodEnd:    date("2023-09-30"),
		TTMValue:     383285e6,
		SourceFiling: "10-K",
	}
	require.NoError(t, store.SaveTTM(ctx, []models.TTMRecord{rec}))

	rec.TTMValue = 383000e6
	require.NoError(t, store.SaveTTM(ctx, []models.TTMRecord{rec}))

	list, err := store.ListTTM(ctx, "AAPL", models.MetricRevenueTTM)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 383000e6, list[0].TTMValue)

	got, err := store.GetTTMAsOf(ctx, "AAPL", models.MetricRevenueTTM, date("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "10-K", got.SourceFiling)

	_, err = store.GetTTMAsOf(ctx, "AAPL", models.MetricNetIncomeTTM, date("2024-01-01"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}
