package fields

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
)

// Score weights.
var (
	criticalBonus   = decimal.NewFromInt(50)
	universalBonus  = decimal.NewFromInt(25)
	veryCommonBonus = decimal.NewFromInt(15)
	deprecatedMalus = decimal.NewFromInt(100)
	usGAAPBonus     = decimal.NewFromInt(5)
)

const preferredTaxonomy = "us-gaap"

// Ranker scores catalog fields by availability, criticality and taxonomy.
type Ranker struct {
	classifier interfaces.FieldClassifier
}

// NewRanker returns a Ranker that takes the critical flag from classifier.
func NewRanker(classifier interfaces.FieldClassifier) *Ranker {
	return &Ranker{classifier: classifier}
}

// Rank scores every entry and returns priorities ordered by score descending, then field name.
//
//	score = availability_pct + 50*critical + tier_bonus - 100*deprecated + 5*us-gaap
//
// availability_pct is rounded to one decimal before it is summed, and so is the score.
func (r *Ranker) Rank(entries []models.FieldCatalogEntry, universeSize int, deprecated map[string]bool) []models.FieldPriority {
	out := make([]models.FieldPriority, 0, len(entries))
	for _, e := range entries {
		exact := percent(e.Count, universeSize)
		pct := exact.Round(1)
		tier := models.TierFor(exact.InexactFloat64())
		critical := r.classifier.IsCritical(e.FieldName)
		dep := deprecated[e.FieldName]

		score := pct
		if critical {
			score = score.Add(criticalBonus)
		}
		switch tier {
		case models.TierUniversal:
			score = score.Add(universalBonus)
		case models.TierVeryCommon:
			score = score.Add(veryCommonBonus)
		}
		if dep {
			score = score.Sub(deprecatedMalus)
		}
		if e.Taxonomy == preferredTaxonomy {
			score = score.Add(usGAAPBonus)
		}

		out = append(out, models.FieldPriority{
			FieldName:       e.FieldName,
			Taxonomy:        e.Taxonomy,
			PriorityScore:   round1(score),
			AvailabilityPct: pct.InexactFloat64(),
			Tier:            tier,
			IsCritical:      critical,
			IsDeprecated:    dep,
		})
	}

	SortPriorities(out)
	return out
}

// SortPriorities orders priorities by score descending with field name as tie-break.
func SortPriorities(p []models.FieldPriority) {
	sort.SliceStable(p, func(i, j int) bool {
		if p[i].PriorityScore != p[j].PriorityScore {
			return p[i].PriorityScore > p[j].PriorityScore
		}
		return p[i].FieldName < p[j].FieldName
	})
}

// PriorityTable is a read-only field name to score lookup shared across a run.
type PriorityTable map[string]float64

// NewPriorityTable indexes priorities by field name.
func NewPriorityTable(priorities []models.FieldPriority) PriorityTable {
	t := make(PriorityTable, len(priorities))
	for _, p := range priorities {
		t[p.FieldName] = p.PriorityScore
	}
	return t
}

// Score returns the field's priority, or 0 for fields outside the catalog.
func (t PriorityTable) Score(field string) float64 {
	return t[field]
}
