// Package pipeline runs batch ingestion: fetch, catalog, normalize, timeline, TTM and store.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/bobmcallan/pitfacts/internal/services/classify"
	"github.com/bobmcallan/pitfacts/internal/services/enrich"
	"github.com/bobmcallan/pitfacts/internal/services/fields"
)

// Service implements PipelineService
type Service struct {
	storage     interfaces.StorageManager
	sec         interfaces.SECClient
	classifier  *classify.Cache
	sic         *enrich.SICMapper
	directory   *enrich.Directory
	concurrency int
	logger      *common.Logger

	mu         sync.Mutex
	cikMap     map[string]string
	cikMapAsOf time.Time
}

// NewService creates a new pipeline service
func NewService(
	storage interfaces.StorageManager,
	sec interfaces.SECClient,
	classifier *classify.Cache,
	sic *enrich.SICMapper,
	concurrency int,
	logger *common.Logger,
) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		storage:     storage,
		sec:         sec,
		classifier:  classifier,
		sic:         sic,
		directory:   enrich.NewDirectory(),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Directory exposes the enrichment index built during fetch.
func (s *Service) Directory() *enrich.Directory {
	return s.directory
}

// LoadClassifications seeds the classifier cache from the stored field table, so fields
// keep the classification earlier runs gave them. It returns the number loaded.
func (s *Service) LoadClassifications(ctx context.Context) (int, error) {
	stored, err := s.storage.FieldStore().GetClassifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load field classifications: %w", err)
	}
	s.classifier.Seed(stored)
	return len(stored), nil
}

// Reclassify drops every memoized classification; the next analysis classifies all
// fields again from the keyword tables and replaces the stored table.
func (s *Service) Reclassify() {
	s.classifier.Reset()
}

// company is one ticker that survived fetch and identity validation.
type company struct {
	ticker  string
	cik     string
	facts   *models.CompanyFacts
	profile models.Company
}

// Run processes tickers end to end. Per-company failures are recorded in the summary;
// only ticker-map, field-table or context errors abort the run.
func (s *Service) Run(ctx context.Context, tickers []string) (*models.RunSummary, error) {
	summary := newSummary(tickers)
	logger := s.logger.WithRun(summary.RunID)
	logger.Info().Int("tickers", summary.CompaniesRequested).Int("concurrency", s.concurrency).Msg("Pipeline run started")

	companies, err := s.fetch(ctx, logger, common.NormalizeTickers(tickers), summary)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyze(ctx, logger, summary.RunID, companies)
	if err != nil {
		return nil, err
	}
	summary.FieldsCataloged = len(analysis.Catalog)

	if err := s.process(ctx, logger, companies, fields.NewPriorityTable(analysis.Priorities), summary); err != nil {
		return nil, err
	}

	summary.FinishedAt = time.Now().UTC()
	logger.Info().
		Int("processed", summary.CompaniesProcessed).
		Int("skipped", len(summary.CompaniesSkipped)).
		Int("facts_inserted", summary.FactsInserted).
		Int("facts_dropped", summary.FactsDropped).
		Int("events_inserted", summary.EventsInserted).
		Int("ttm_records", summary.TTMRecords).
		Dur("duration", summary.Duration()).
		Msg("Pipeline run complete")

	return summary, nil
}

// AnalyzeFields fetches tickers and rebuilds the field tables without storing facts.
func (s *Service) AnalyzeFields(ctx context.Context, tickers []string) (*models.FieldAnalysis, error) {
	summary := newSummary(tickers)
	logger := s.logger.WithRun(summary.RunID)

	companies, err := s.fetch(ctx, logger, common.NormalizeTickers(tickers), summary)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, logger, summary.RunID, companies)
}

func newSummary(tickers []string) *models.RunSummary {
	return &models.RunSummary{
		RunID:              uuid.NewString(),
		StartedAt:          time.Now().UTC(),
		CompaniesRequested: len(common.NormalizeTickers(tickers)),
		CompaniesSkipped:   make(map[string]string),
	}
}

// tickerMap returns the cached ticker to CIK map, refreshing it once stale.
func (s *Service) tickerMap(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cikMap != nil && common.IsFresh(s.cikMapAsOf, common.FreshnessTickerMap) {
		return s.cikMap, nil
	}
	m, err := s.sec.GetCompanyTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load SEC ticker map: %w", err)
	}
	s.cikMap = m
	s.cikMapAsOf = time.Now()
	return m, nil
}

// fetch resolves CIKs, downloads companyfacts and enriches each company in parallel.
// The returned slice keeps the input ticker order.
func (s *Service) fetch(ctx context.Context, logger *common.Logger, tickers []string, summary *models.RunSummary) ([]*company, error) {
	cikMap, err := s.tickerMap(ctx)
	if err != nil {
		return nil, err
	}

	slots := make([]*company, len(tickers))
	var mu sync.Mutex
	skip := func(ticker, reason string) {
		mu.Lock()
		summary.CompaniesSkipped[ticker] = reason
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log := logger.WithTicker(ticker)

			cik, ok := cikMap[ticker]
			if !ok {
				log.Warn().Msg("Ticker not in SEC CIK map, skipping")
				skip(ticker, models.SkipNoCIK)
				return nil
			}

			cf, err := s.sec.GetCompanyFacts(gctx, cik)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Str("cik", cik).Msg("Failed to fetch company facts")
				skip(ticker, models.SkipFetchFailed)
				return nil
			}
			if err := cf.Validate(); err != nil {
				log.Warn().Err(err).Str("cik", cik).Msg("Company facts missing identity, skipping")
				skip(ticker, models.SkipIdentity)
				return nil
			}

			slots[i] = &company{
				ticker:  ticker,
				cik:     cik,
				facts:   cf,
				profile: s.enrichCompany(gctx, log, ticker, cik, cf),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	companies := make([]*company, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			companies = append(companies, c)
		}
	}
	logger.Info().Int("fetched", len(companies)).Int("skipped", len(summary.CompaniesSkipped)).Msg("Fetch phase complete")
	return companies, nil
}

// enrichCompany resolves sector and industry from the stored profile when fresh,
// otherwise from the submissions endpoint. When submissions cannot be fetched a stale
// stored profile is reused; with none the company stays out of the directory and its
// facts carry empty sector and industry.
func (s *Service) enrichCompany(ctx context.Context, logger *common.Logger, ticker, cik string, cf *models.CompanyFacts) models.Company {
	stored, err := s.storage.CompanyStore().GetCompany(ctx, ticker)
	if err != nil {
		stored = nil
	}
	if stored != nil && common.IsFresh(stored.EnrichedAt, common.FreshnessCompanyMetadata) {
		s.directory.Put(*stored)
		return *stored
	}

	sub, err := s.sec.GetSubmissions(ctx, cik)
	if err != nil {
		if stored != nil && !stored.EnrichedAt.IsZero() {
			logger.Warn().Err(err).Time("enriched_at", stored.EnrichedAt).Msg("Failed to fetch submissions, reusing stale profile")
			s.directory.Put(*stored)
			return *stored
		}
		logger.Warn().Err(err).Msg("Failed to fetch submissions, company not enriched")
		return models.Company{Ticker: ticker, CIK: cik, EntityName: cf.EntityName}
	}

	profile := s.sic.Company(ticker, sub)
	profile.EnrichedAt = time.Now().UTC()
	if profile.CIK == "" {
		profile.CIK = cik
	}
	if profile.EntityName == "" {
		profile.EntityName = cf.EntityName
	}
	s.directory.Put(profile)
	return profile
}
