package data

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/bobmcallan/pitfacts/internal/services/report"
)

var universe = []string{"AAPL", "MSFT", "GOOGL", "NOPE"}

func TestPipeline_EndToEnd(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			mgr := testManager(t, backend)
			srv := newSECServer(t)
			svc := newPipeline(t, mgr, srv.client())
			ctx := context.Background()

			summary, err := svc.Run(ctx, universe)
			require.NoError(t, err)

			assert.Equal(t, 4, summary.CompaniesRequested)
			assert.Equal(t, 2, summary.CompaniesProcessed)
			assert.Equal(t, map[string]string{
				"GOOGL": models.SkipFetchFailed,
				"NOPE":  models.SkipNoCIK,
			}, summary.CompaniesSkipped)
			assert.Equal(t, 3, summary.FieldsCataloged)
			assert.Equal(t, 11, summary.FactsNormalized)
			assert.Equal(t, 11, summary.FactsInserted)
			assert.Equal(t, 0, summary.FactsDropped)
			assert.Equal(t, 5, summary.EventsInserted)
			assert.Equal(t, 4, summary.TTMRecords)
			assert.Empty(t, summary.NoTimeline)

			n, err := mgr.FactStore().CountFacts(ctx, "AAPL")
			require.NoError(t, err)
			assert.Equal(t, 9, n)

			events, err := mgr.EventStore().ListEvents(ctx, "AAPL")
			require.NoError(t, err)
			require.Len(t, events, 4)
			forms := make([]string, len(events))
			for i, e := range events {
				forms[i] = e.Form
			}
			assert.Equal(t, []string{"10-K", "10-K", "10-K/A", "10-Q"}, forms)
			assert.Equal(t, "2023-09-30", models.FormatDate(events[1].PeriodEnd))

			aapl, err := mgr.CompanyStore().GetCompany(ctx, "AAPL")
			require.NoError(t, err)
			assert.Equal(t, models.SectorTechnology, aapl.Sector)
			assert.Equal(t, "Electronic Computers", aapl.Industry)
			assert.Equal(t, "September", aapl.FYEMonth)

			msftFY, err := mgr.CompanyStore().GetFiscalYear(ctx, "MSFT")
			require.NoError(t, err)
			assert.Equal(t, "June", msftFY.FiscalYearEndMonth)
			assert.Equal(t, models.ConfidenceLow, msftFY.Confidence)

			priorities, err := mgr.FieldStore().GetPriorities(ctx)
			require.NoError(t, err)
			require.Len(t, priorities, 3)
			assert.Equal(t, "Revenues", priorities[0].FieldName)
			assert.Equal(t, 180.0, priorities[0].PriorityScore)

			// Second run over unchanged filings stores nothing new
			again, err := svc.Run(ctx, universe)
			require.NoError(t, err)
			assert.Equal(t, 0, again.FactsInserted)
			assert.Equal(t, 0, again.EventsInserted)
			assert.Equal(t, 1, srv.Hits("/files/company_tickers.json"))
			assert.Equal(t, 1, srv.Hits("/submissions/CIK0000320193.json"))

			n, err = mgr.FactStore().CountFacts(ctx, "AAPL")
			require.NoError(t, err)
			assert.Equal(t, 9, n)
		})
	}
}

func TestPipeline_PointInTime(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			mgr := testManager(t, backend)
			srv := newSECServer(t)
			ctx := context.Background()

			_, err := newPipeline(t, mgr, srv.client()).Run(ctx, []string{"AAPL"})
			require.NoError(t, err)

			facts := mgr.FactStore()

			// Before the first filing nothing was known
			_, err = facts.GetFactAsOf(ctx, "AAPL", "Assets", day(t, "2022-10-27"))
			assert.ErrorIs(t, err, models.ErrNotFound)

			assets, err := facts.GetFactAsOf(ctx, "AAPL", "Assets", day(t, "2023-01-01"))
			require.NoError(t, err)
			assert.Equal(t, 352755000000.0, *assets.Value)
			assert.Equal(t, "2022-10-28", models.FormatDate(assets.FilingDate))

			// Same filing date: the later period end wins
			assets, err = facts.GetFactAsOf(ctx, "AAPL", "Assets", day(t, "2023-12-01"))
			require.NoError(t, err)
			assert.Equal(t, 352583000000.0, *assets.Value)
			assert.Equal(t, "2023-09-30", models.FormatDate(assets.PeriodEnd))

			// The amendment only becomes visible once filed
			ni, err := facts.GetFactAsOf(ctx, "AAPL", "NetIncomeLoss", day(t, "2023-12-01"))
			require.NoError(t, err)
			assert.Equal(t, 96995000000.0, *ni.Value)
			assert.False(t, ni.IsAmended)

			ni, err = facts.GetFactAsOf(ctx, "AAPL", "NetIncomeLoss", day(t, "2024-02-01"))
			require.NoError(t, err)
			assert.Equal(t, 97000000000.0, *ni.Value)
			assert.True(t, ni.IsAmended)
			assert.Equal(t, models.Period, ni.TemporalType)
			require.NotNil(t, ni.PeriodStart)
			assert.Equal(t, "2022-09-25", models.FormatDate(*ni.PeriodStart))

			event, err := mgr.EventStore().GetEventAsOf(ctx, "AAPL", day(t, "2024-01-31"))
			require.NoError(t, err)
			assert.Equal(t, "10-K/A", event.Form)

			// TTM only moves on annual filings
			ttmStore := mgr.TTMStore()
			rev, err := ttmStore.GetTTMAsOf(ctx, "AAPL", models.MetricRevenueTTM, day(t, "2023-06-01"))
			require.NoError(t, err)
			assert.Equal(t, 394328000000.0, rev.TTMValue)

			rev, err = ttmStore.GetTTMAsOf(ctx, "AAPL", models.MetricRevenueTTM, day(t, "2024-06-01"))
			require.NoError(t, err)
			assert.Equal(t, 383285000000.0, rev.TTMValue)
			assert.Equal(t, "2023-11-03", models.FormatDate(rev.AsOfDate))

			netIncome, err := ttmStore.ListTTM(ctx, "AAPL", models.MetricNetIncomeTTM)
			require.NoError(t, err)
			require.Len(t, netIncome, 1)
			assert.Equal(t, 96995000000.0, netIncome[0].TTMValue)
		})
	}
}

func TestPipeline_Reports(t *testing.T) {
	mgr := testManager(t, common.BackendSurrealDB)
	srv := newSECServer(t)
	ctx := context.Background()

	_, err := newPipeline(t, mgr, srv.client()).Run(ctx, []string{"AAPL"})
	require.NoError(t, err)

	svc := report.NewService(mgr.FactStore(), mgr.TTMStore(), t.TempDir(), common.NewSilentLogger())

	path, err := svc.ExportFacts(ctx, "AAPL", "")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0000320193-24-000003")

	path, err = svc.ChartTTM(ctx, "AAPL")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}
