package fields

import (
	"sort"
	"strings"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// similarGroup lists synonymous concepts that filers use interchangeably.
type similarGroup struct {
	concept string
	members []string
}

var similarGroups = []similarGroup{
	{"Revenue", []string{
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"RevenueFromContractWithCustomerIncludingAssessedTax",
	}},
	{"NetIncome", []string{
		"NetIncomeLoss",
		"NetIncomeLossAvailableToCommonStockholdersBasic",
		"NetIncomeLossAttributableToParent",
	}},
	{"Assets", []string{"AssetsCurrent", "AssetsNoncurrent"}},
	{"Cash", []string{
		"CashAndCashEquivalentsAtCarryingValue",
		"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents",
	}},
	{"Debt", []string{"LongTermDebt", "LongTermDebtNoncurrent", "LongTermDebtCurrent", "DebtInstrumentCarryingAmount"}},
	{"SharesOutstanding", []string{
		"CommonStockSharesOutstanding",
		"EntityCommonStockSharesOutstanding",
		"WeightedAverageNumberOfSharesOutstandingBasic",
	}},
}

// Consolidate picks a primary field for each synonym group with at least two members
// in the catalog. The primary is the highest-priority member; alternatives follow in
// priority order. Groups come back in their fixed declaration order.
func Consolidate(c *Catalog, priorities []models.FieldPriority) []models.ConsolidationRule {
	byName := make(map[string]models.FieldPriority, len(priorities))
	for _, p := range priorities {
		byName[p.FieldName] = p
	}

	var rules []models.ConsolidationRule
	for _, g := range similarGroups {
		var present []models.FieldPriority
		for _, m := range g.members {
			if _, ok := c.Get(m); !ok {
				continue
			}
			p, ok := byName[m]
			if !ok {
				p = models.FieldPriority{FieldName: m}
			}
			present = append(present, p)
		}
		if len(present) < 2 {
			continue
		}

		SortPriorities(present)
		rule := models.ConsolidationRule{
			Concept:             g.concept,
			PrimaryField:        present[0].FieldName,
			PrimaryAvailability: present[0].AvailabilityPct,
		}
		for _, p := range present[1:] {
			rule.Alternatives = append(rule.Alternatives, p.FieldName)
		}
		rules = append(rules, rule)
	}
	return rules
}

var gaapToIFRS = map[string]string{
	"Assets":             "Assets",
	"Liabilities":        "Liabilities",
	"StockholdersEquity": "Equity",
	"Revenues":           "Revenue",
	"NetIncomeLoss":      "ProfitLoss",
}

var ifrsToGAAP = func() map[string]string {
	m := make(map[string]string, len(gaapToIFRS))
	for g, i := range gaapToIFRS {
		m[i] = g
	}
	return m
}()

// IFRSEquivalent maps a qualified concept ("us-gaap:Revenues") to its counterpart in
// the other taxonomy ("ifrs-full:Revenue"). ok is false when no pairing is known.
func IFRSEquivalent(concept string) (string, bool) {
	if name, ok := strings.CutPrefix(concept, "us-gaap:"); ok {
		if v, ok := gaapToIFRS[name]; ok {
			return "ifrs-full:" + v, true
		}
	}
	if name, ok := strings.CutPrefix(concept, "ifrs-full:"); ok {
		if v, ok := ifrsToGAAP[name]; ok {
			return "us-gaap:" + v, true
		}
	}
	return "", false
}

// KnownEquivalents lists the GAAP concepts with an IFRS pairing, sorted.
func KnownEquivalents() []string {
	out := make([]string, 0, len(gaapToIFRS))
	for g := range gaapToIFRS {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// TaxonomyMappings lists the known GAAP/IFRS pairs where the catalog has companies
// reporting each side, ordered by GAAP field name.
func TaxonomyMappings(c *Catalog) []models.TaxonomyMapping {
	var out []models.TaxonomyMapping
	for _, name := range KnownEquivalents() {
		gaap := "us-gaap:" + name
		ifrs, _ := IFRSEquivalent(gaap)
		if !c.HasConcept(gaap) || !c.HasConcept(ifrs) {
			continue
		}
		out = append(out, models.TaxonomyMapping{
			USGAAPField: name,
			IFRSField:   strings.TrimPrefix(ifrs, "ifrs-full:"),
			Confidence:  "high",
			Note:        "Standard equivalent",
		})
	}
	return out
}
