// Package normalize turns a raw companyfacts payload into point-in-time correct fact records.
package normalize

import (
	"fmt"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/bobmcallan/pitfacts/internal/services/temporal"
)

// PriorityLookup returns the run's priority score for a field name.
type PriorityLookup interface {
	Score(field string) float64
}

// Result is one company's normalization output.
type Result struct {
	Ticker     string
	CIK        string
	EntityName string
	Sector     string
	Industry   string

	Facts []models.NormalizedFact

	// ByConcept holds every valid raw fact keyed by qualified concept, for timeline and TTM.
	ByConcept map[string][]models.RawFact

	// Dropped counts values rejected by RawFact validation or carrying an unparseable end or filing date.
	Dropped int
}

// Normalizer combines classification, temporal normalization, priority and enrichment.
// It holds no per-company state and may be shared across goroutines when its
// collaborators are.
type Normalizer struct {
	classifier interfaces.FieldClassifier
	priorities PriorityLookup
	enricher   interfaces.Enricher
	logger     *common.Logger
}

// NewNormalizer creates a Normalizer. priorities and enricher may be nil.
func NewNormalizer(classifier interfaces.FieldClassifier, priorities PriorityLookup, enricher interfaces.Enricher, logger *common.Logger) *Normalizer {
	return &Normalizer{
		classifier: classifier,
		priorities: priorities,
		enricher:   enricher,
		logger:     logger,
	}
}

// Normalize validates the payload identity and emits one NormalizedFact per reported value.
// A payload missing cik, entityName or facts returns an identity error (see models.IsIdentityError).
func (n *Normalizer) Normalize(ticker string, cf *models.CompanyFacts) (*Result, error) {
	if err := cf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}

	res := &Result{
		Ticker:     ticker,
		CIK:        cf.CIK.Padded(),
		EntityName: cf.EntityName,
	}
	if n.enricher != nil {
		res.Sector, res.Industry = n.enricher.Lookup(ticker)
	}

	raw, dropped := cf.Flatten()
	res.Dropped = dropped
	res.ByConcept = models.GroupByConcept(raw)
	res.Facts = make([]models.NormalizedFact, 0, len(raw))

	for _, rf := range raw {
		fc := n.classifier.Classify(rf.FieldName, rf.Label, rf.Description)

		start, end := temporal.Normalize(rf.Start, rf.End, fc.TemporalNature, rf.FiscalPeriod)
		if end == nil {
			res.Dropped++
			continue
		}
		filed, err := models.ParseDate(rf.FilingDate)
		if err != nil {
			res.Dropped++
			continue
		}

		res.Facts = append(res.Facts, models.NormalizedFact{
			Ticker:        ticker,
			CIK:           res.CIK,
			EntityName:    res.EntityName,
			Sector:        res.Sector,
			Industry:      res.Industry,
			FieldName:     rf.FieldName,
			FieldLabel:    rf.Label,
			StatementType: fc.StatementType,
			TemporalType:  fc.TemporalNature,
			PeriodStart:   start,
			PeriodEnd:     *end,
			Value:         rf.Value,
			Unit:          rf.Unit,
			FilingDate:    filed,
			FiscalYear:    rf.FiscalYear,
			FiscalPeriod:  rf.FiscalPeriod,
			Form:          rf.Form,
			IsAmended:     rf.IsAmended(),
			FieldPriority: n.priority(rf.FieldName),
			Taxonomy:      rf.Taxonomy,
			AccountNumber: rf.AccessionNumber,
			Frame:         rf.Frame,
		})
	}

	n.logger.Debug().
		Str("ticker", ticker).
		Str("entity", res.EntityName).
		Int("fields", cf.FieldCount()).
		Int("facts", len(res.Facts)).
		Int("dropped", res.Dropped).
		Msg("Normalized company facts")

	return res, nil
}

func (n *Normalizer) priority(field string) float64 {
	if n.priorities == nil {
		return 0
	}
	return n.priorities.Score(field)
}
