package pipeline

import (
	"context"
	"fmt"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/bobmcallan/pitfacts/internal/services/fields"
)

// analyze merges the fetched companies into the stored catalog, classifies and ranks
// each field over the whole universe, and replaces the stored field tables. Companies
// catalogued by earlier runs keep counting towards availability.
func (s *Service) analyze(ctx context.Context, logger *common.Logger, runID string, companies []*company) (*models.FieldAnalysis, error) {
	fieldStore := s.storage.FieldStore()
	stored, err := fieldStore.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load field catalog: %w", err)
	}
	s.seedDirectory(ctx, logger)

	catalog := fields.NewCatalog()
	catalog.Seed(stored)
	for _, c := range companies {
		catalog.Add(c.ticker, c.facts)
	}
	entries := catalog.Entries()
	universe := catalog.UniverseSize()

	deprecated := fields.DetectDeprecated(entries)

	classifications := make([]models.FieldClassification, 0, len(entries))
	for _, e := range entries {
		fc := s.classifier.Classify(e.FieldName, e.Label, e.Description)
		fc.Taxonomy = e.Taxonomy
		classifications = append(classifications, fc)
	}

	priorities := fields.NewRanker(s.classifier).Rank(entries, universe, fields.DeprecatedSet(deprecated))

	analysis := &models.FieldAnalysis{
		RunID:            runID,
		Companies:        universe,
		Catalog:          entries,
		Classifications:  classifications,
		Priorities:       priorities,
		Deprecated:       deprecated,
		Availability:     fields.AnalyzeAvailability(entries, universe, s.directory.Sector),
		Consolidation:    fields.Consolidate(catalog, priorities),
		TaxonomyMappings: fields.TaxonomyMappings(catalog),
	}

	if err := fieldStore.SaveCatalog(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to save field catalog: %w", err)
	}
	if err := fieldStore.SaveClassifications(ctx, classifications); err != nil {
		return nil, fmt.Errorf("failed to save field classifications: %w", err)
	}
	if err := fieldStore.SavePriorities(ctx, priorities); err != nil {
		return nil, fmt.Errorf("failed to save field priorities: %w", err)
	}

	logger.Info().
		Int("companies", universe).
		Int("fields", len(entries)).
		Int("deprecated", len(deprecated)).
		Int("universal", analysis.Availability.TierCounts[models.TierUniversal]).
		Int("sector_specific", analysis.Availability.SectorSpecificFields).
		Int("consolidation_rules", len(analysis.Consolidation)).
		Int("gaap_ifrs_mappings", len(analysis.TaxonomyMappings)).
		Msg("Field analysis complete")

	return analysis, nil
}

// seedDirectory adds stored profiles for companies not fetched in this run, so the
// sector distribution covers the whole catalogued universe.
func (s *Service) seedDirectory(ctx context.Context, logger *common.Logger) {
	stored, err := s.storage.CompanyStore().ListCompanies(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to list stored companies, sector distribution limited to this run")
		return
	}
	for _, c := range stored {
		if c.Sector == "" {
			continue
		}
		if _, ok := s.directory.Get(c.Ticker); !ok {
			s.directory.Put(*c)
		}
	}
}
