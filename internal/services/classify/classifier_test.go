package classify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/pitfacts/internal/models"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultKeywordTables())
	require.NoError(t, err)
	return c
}

func TestClassify_Assets(t *testing.T) {
	c := newTestClassifier(t)

	fc := c.Classify("Assets", "Assets", "Sum of the carrying amounts as of the balance sheet date of all assets that are recognized.")

	assert.Equal(t, "Assets", fc.FieldName)
	assert.Equal(t, models.StatementAssets, fc.StatementType)
	assert.Equal(t, models.PointInTime, fc.TemporalNature)
	assert.Equal(t, []string{"Asset"}, fc.AccountingConcepts)
	assert.Equal(t, []string{HandlingDefault}, fc.SpecialHandling)
}

func TestClassify_Revenues(t *testing.T) {
	c := newTestClassifier(t)

	fc := c.Classify("Revenues", "Revenues", "Amount of revenue recognized.")

	assert.Equal(t, models.StatementIncome, fc.StatementType)
	assert.Equal(t, models.Period, fc.TemporalNature)
	assert.Equal(t, []string{"Revenue"}, fc.AccountingConcepts)
	assert.True(t, fc.IsCritical)
}

func TestClassify_StatementTypes(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		field string
		label string
		want  models.StatementType
	}{
		{"NetCashProvidedByUsedInOperatingActivities", "Net Cash Provided by (Used in) Operating Activities", models.StatementCashFlow},
		{"EarningsPerShareBasic", "Earnings Per Share, Basic", models.StatementIncome},
		{"DeferredTaxLiability", "Deferred Tax Liability", models.StatementLiabilities},
		{"InterestPayableCurrent", "Interest Payable, Current", models.StatementLiabilities},
		// income keyword loses to the receivable disambiguator and falls through to the balance sheet
		{"IncomeTaxesReceivable", "Income Taxes Receivable", models.StatementBalanceSheet},
		{"TreasuryStockValue", "Treasury Stock, Value", models.StatementEquity},
		{"EntityRegistrantName", "Entity Registrant Name", models.StatementDocumentEntityInfo},
		{"DocumentType", "Document Type", models.StatementDocumentEntityInfo},
		{"XyzFoo", "", models.StatementOther},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.field, tt.label, "").StatementType)
		})
	}
}

func TestClassify_TemporalNature(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name  string
		field string
		label string
		want  models.TemporalNature
	}{
		{"balance sheet term", "LongTermDebtNoncurrent", "Long-Term Debt, Excluding Current Maturities", models.PointInTime},
		{"period term overrides stock", "StockIssuedDuringPeriodValueNewIssues", "Stock Issued During Period, Value, New Issues", models.Period},
		{"snapshot term in name", "SharesHeldInEmployeeTrust", "Shares Held in Employee Trust", models.PointInTime},
		{"cash flow", "NetCashProvidedByUsedInOperatingActivities", "Net Cash Provided by (Used in) Operating Activities", models.Period},
		{"default", "XyzFoo", "", models.Period},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := c.Classify(tt.field, tt.label, "")
			assert.Equal(t, tt.want, fc.TemporalNature)
			assert.True(t, fc.TemporalNature.Valid())
		})
	}
}

func TestClassify_MultipleConcepts(t *testing.T) {
	c := newTestClassifier(t)

	fc := c.Classify("DeferredTaxLiability", "Deferred Tax Liability", "")

	assert.Equal(t, []string{"Liability", "Tax"}, fc.AccountingConcepts)
	assert.Equal(t, []string{"Deferred"}, fc.SpecialHandling)
	assert.True(t, fc.HasConcept("Tax"))
}

func TestClassify_PerShare(t *testing.T) {
	c := newTestClassifier(t)

	fc := c.Classify("EarningsPerShareBasic", "Earnings Per Share, Basic", "")

	assert.Equal(t, []string{"Earnings Per Share"}, fc.AccountingConcepts)
	assert.Equal(t, []string{"Per-Share Metric"}, fc.SpecialHandling)
	assert.True(t, fc.IsCritical)
}

func TestClassify_Defaults(t *testing.T) {
	c := newTestClassifier(t)

	fc := c.Classify("XyzFoo", "", "")

	assert.Equal(t, models.StatementOther, fc.StatementType)
	assert.Equal(t, models.Period, fc.TemporalNature)
	assert.Equal(t, []string{ConceptOther}, fc.AccountingConcepts)
	assert.False(t, fc.IsCritical)
	assert.Equal(t, []string{HandlingDefault}, fc.SpecialHandling)
}

func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier(t)

	inputs := [][3]string{
		{"Assets", "Assets", ""},
		{"Revenues", "Revenues", "Amount of revenue recognized."},
		{"DeferredTaxLiability", "Deferred Tax Liability", ""},
		{"XyzFoo", "", ""},
	}
	for _, in := range inputs {
		first := c.Classify(in[0], in[1], in[2])
		second := c.Classify(in[0], in[1], in[2])
		assert.Equal(t, first, second, in[0])
	}
}

func TestIsCritical(t *testing.T) {
	c := newTestClassifier(t)

	assert.True(t, c.IsCritical("NetIncomeLoss"))
	assert.True(t, c.IsCritical("netincomeloss"))
	assert.True(t, c.IsCritical("LongTermDebtNoncurrent"))
	assert.True(t, c.IsCritical("RevenueFromContractWithCustomerExcludingAssessedTax"))
	assert.False(t, c.IsCritical("Assets"))
	assert.False(t, c.IsCritical("Goodwill"))
}

func TestNew_InjectedTables(t *testing.T) {
	tables := DefaultKeywordTables()
	tables.CashFlow = []string{"WIDGET FLOW"}

	c, err := New(tables)
	require.NoError(t, err)

	fc := c.Classify("Foo", "Widget Flow Thing", "")
	assert.Equal(t, models.StatementCashFlow, fc.StatementType)

	// the caller's tables are not mutated by lower-casing
	assert.Equal(t, []string{"WIDGET FLOW"}, tables.CashFlow)
}

func TestKeywordTables_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultKeywordTables().Validate())
	})

	t.Run("empty group", func(t *testing.T) {
		tables := DefaultKeywordTables()
		tables.Income = nil
		_, err := New(tables)
		assert.ErrorContains(t, err, "income")
	})

	t.Run("empty keyword", func(t *testing.T) {
		tables := DefaultKeywordTables()
		tables.Equity = []string{"common stock", ""}
		assert.Error(t, tables.Validate())
	})

	t.Run("bad critical pattern", func(t *testing.T) {
		tables := DefaultKeywordTables()
		tables.CriticalPatterns = []string{"Revenue", "("}
		assert.Error(t, tables.Validate())
	})

	t.Run("nameless concept", func(t *testing.T) {
		tables := DefaultKeywordTables()
		tables.Concepts = append(tables.Concepts, ConceptRule{Keywords: []string{"x"}})
		assert.Error(t, tables.Validate())
	})
}

func TestLoadKeywordTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cash_flow:\n  - widget\n"), 0644))

	tables, err := LoadKeywordTables(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"widget"}, tables.CashFlow)
	assert.Equal(t, DefaultKeywordTables().Income, tables.Income)

	t.Run("empty path returns defaults", func(t *testing.T) {
		tables, err := LoadKeywordTables("")
		require.NoError(t, err)
		assert.Equal(t, DefaultKeywordTables(), tables)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadKeywordTables(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid tables", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("income: []\n"), 0644))
		_, err := LoadKeywordTables(bad)
		assert.Error(t, err)
	})
}

type countingClassifier struct {
	mu    sync.Mutex
	calls int
	inner *Classifier
}

func (c *countingClassifier) Classify(name, label, desc string) models.FieldClassification {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Classify(name, label, desc)
}

func (c *countingClassifier) IsCritical(name string) bool { return c.inner.IsCritical(name) }

func TestCache_Memoizes(t *testing.T) {
	counter := &countingClassifier{inner: newTestClassifier(t)}
	cache := NewCache(counter)

	first := cache.Classify("Assets", "Assets", "")
	second := cache.Classify("Assets", "A different label", "")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, counter.calls)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache(newTestClassifier(t))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Classify("Revenues", "Revenues", "")
			cache.Classify("Assets", "Assets", "")
		}()
	}
	wg.Wait()

	snap := cache.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "Assets", snap[0].FieldName)
	assert.Equal(t, "Revenues", snap[1].FieldName)
}

func TestCache_Seed(t *testing.T) {
	counter := &countingClassifier{inner: newTestClassifier(t)}
	cache := NewCache(counter)

	cache.Seed([]models.FieldClassification{
		{FieldName: "Custom", StatementType: models.StatementIncome, TemporalNature: models.Period},
		{FieldName: "Broken"},
	})

	fc := cache.Classify("Custom", "", "")
	assert.Equal(t, models.StatementIncome, fc.StatementType)
	assert.Equal(t, 0, counter.calls)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_Reset(t *testing.T) {
	counter := &countingClassifier{inner: newTestClassifier(t)}
	cache := NewCache(counter)

	cache.Seed([]models.FieldClassification{
		{FieldName: "Revenues", StatementType: models.StatementOther, TemporalNature: models.Period},
	})
	cache.Reset()
	assert.Equal(t, 0, cache.Len())

	fc := cache.Classify("Revenues", "Revenues", "Amount of revenue recognized during the period.")
	assert.Equal(t, models.StatementIncome, fc.StatementType)
	assert.Equal(t, 1, counter.calls)
}
