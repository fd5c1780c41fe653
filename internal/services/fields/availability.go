package fields

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/pitfacts/internal/models"
)

const (
	sectorSpecificShare   = 0.8
	sectorSpecificMinimum = 3
)

// SectorFunc maps a ticker to its sector; unknown tickers may return "".
type SectorFunc func(ticker string) string

// AnalyzeAvailability computes per-field availability across universeSize companies.
// Tiers use the exact percentage; reported percentages are rounded to one decimal.
func AnalyzeAvailability(entries []models.FieldCatalogEntry, universeSize int, sectorOf SectorFunc) models.AvailabilityReport {
	report := models.AvailabilityReport{
		TotalCompanies: universeSize,
		TotalFields:    len(entries),
		TierCounts:     make(map[models.Tier]int, len(models.Tiers)),
		Fields:         make(map[string]models.FieldAvailability, len(entries)),
	}
	for _, tier := range models.Tiers {
		report.TierCounts[tier] = 0
	}

	for _, e := range entries {
		exact := percent(e.Count, universeSize)
		fa := models.FieldAvailability{
			FieldName:          e.FieldName,
			Count:              e.Count,
			AvailabilityPct:    round1(exact),
			Tier:               models.TierFor(exact.InexactFloat64()),
			SectorDistribution: make(map[string]int),
		}

		for _, ticker := range e.CompaniesUsing {
			sector := ""
			if sectorOf != nil {
				sector = sectorOf(ticker)
			}
			if sector == "" {
				sector = models.SectorUnknown
			}
			fa.SectorDistribution[sector]++
		}

		if dominant, n := dominantSector(fa.SectorDistribution); e.Count >= sectorSpecificMinimum &&
			float64(n)/float64(e.Count) > sectorSpecificShare {
			fa.IsSectorSpecific = true
			fa.DominantSector = dominant
			report.SectorSpecificFields++
		}

		report.TierCounts[fa.Tier]++
		report.Fields[e.FieldName] = fa
	}
	return report
}

// dominantSector returns the most common sector, breaking ties by name.
func dominantSector(dist map[string]int) (string, int) {
	best, bestN := "", 0
	for sector, n := range dist {
		if n > bestN || (n == bestN && sector < best) {
			best, bestN = sector, n
		}
	}
	return best, bestN
}

func percent(count, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total)))
}

func round1(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}
