package pipeline

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/bobmcallan/pitfacts/internal/services/fiscal"
	"github.com/bobmcallan/pitfacts/internal/services/normalize"
	"github.com/bobmcallan/pitfacts/internal/services/timeline"
	"github.com/bobmcallan/pitfacts/internal/services/ttm"
)

// companyResult carries one company's counts back to the summary.
type companyResult struct {
	normalized int
	inserted   int
	dropped    int
	events     int
	ttm        int
	noTimeline bool
}

// process normalizes and stores every company in parallel. The priority table is
// read-only and the classifier cache is safe for concurrent use.
func (s *Service) process(ctx context.Context, logger *common.Logger, companies []*company, priorities normalize.PriorityLookup, summary *models.RunSummary) error {
	normalizer := normalize.NewNormalizer(s.classifier, priorities, s.directory, logger)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, c := range companies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, reason := s.processCompany(gctx, logger.WithTicker(c.ticker), normalizer, c)
			if err := gctx.Err(); err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			summary.FactsNormalized += res.normalized
			summary.FactsInserted += res.inserted
			summary.FactsDropped += res.dropped
			summary.EventsInserted += res.events
			summary.TTMRecords += res.ttm
			if res.noTimeline {
				summary.NoTimeline = append(summary.NoTimeline, c.ticker)
			}
			if reason != "" {
				summary.CompaniesSkipped[c.ticker] = reason
				return nil
			}
			summary.CompaniesProcessed++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	sort.Strings(summary.NoTimeline)
	return nil
}

// processCompany returns the company's counts and a skip reason, empty on success.
func (s *Service) processCompany(ctx context.Context, logger *common.Logger, normalizer *normalize.Normalizer, c *company) (companyResult, string) {
	var out companyResult

	res, err := normalizer.Normalize(c.ticker, c.facts)
	if err != nil {
		logger.Warn().Err(err).Msg("Normalization rejected company")
		return out, models.SkipIdentity
	}
	out.normalized = len(res.Facts)
	out.dropped = res.Dropped

	out.inserted, err = s.storage.FactStore().InsertFacts(ctx, res.Facts)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to store facts")
		return out, models.SkipStoreFailed
	}

	events, stats := timeline.BuildWithStats(c.ticker, res.ByConcept)
	if skipped := stats.MissingFiled + stats.MissingAccession + stats.BadDates; skipped > 0 {
		logger.Debug().
			Int("missing_filed", stats.MissingFiled).
			Int("missing_accession", stats.MissingAccession).
			Int("bad_dates", stats.BadDates).
			Msg("Anchor records skipped while building timeline")
	}
	if len(events) == 0 {
		logger.Warn().Msg("No anchor concepts, timeline and TTM skipped")
		out.noTimeline = true
	} else {
		out.events, err = s.storage.EventStore().InsertEvents(ctx, events)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to store filing events")
			return out, models.SkipStoreFailed
		}

		var records []models.TTMRecord
		for _, concept := range ttm.Concepts {
			records = append(records, ttm.Calculate(c.ticker, events, res.ByConcept, concept)...)
		}
		if len(records) > 0 {
			if err := s.storage.TTMStore().SaveTTM(ctx, records); err != nil {
				logger.Error().Err(err).Msg("Failed to store TTM records")
				return out, models.SkipStoreFailed
			}
		}
		out.ttm = len(records)
	}

	meta := fiscal.DetectYearEnd(c.ticker, c.facts)
	if err := s.storage.CompanyStore().SaveFiscalYear(ctx, meta); err != nil {
		logger.Warn().Err(err).Msg("Failed to store fiscal year metadata")
	}

	profile := c.profile
	if meta.FiscalYearEndMonth != fiscal.MonthUnknown {
		profile.FYEMonth = meta.FiscalYearEndMonth
	}
	if err := s.storage.CompanyStore().SaveCompany(ctx, &profile); err != nil {
		logger.Warn().Err(err).Msg("Failed to store company profile")
	}

	logger.Info().
		Int("facts", out.normalized).
		Int("inserted", out.inserted).
		Int("dropped", out.dropped).
		Int("events", len(events)).
		Int("anchors", stats.AnchorsFound).
		Int("ttm", out.ttm).
		Str("fye", meta.FiscalYearEndMonth).
		Msg("Company processed")

	return out, ""
}
