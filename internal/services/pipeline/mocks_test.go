package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
)

// --- mock SEC client ---

type mockSECClient struct {
	mu          sync.Mutex
	tickers     map[string]string
	tickersErr  error
	facts       map[string]string // cik -> companyfacts JSON
	submissions map[string]*models.Submission
	calls       map[string]int
}

func (m *mockSECClient) count(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func (m *mockSECClient) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockSECClient) GetCompanyFacts(_ context.Context, cik string) (*models.CompanyFacts, error) {
	m.count("companyfacts")
	body, ok := m.facts[cik]
	if !ok {
		return nil, fmt.Errorf("SEC API error: not found (status: 404)")
	}
	var cf models.CompanyFacts
	if err := json.Unmarshal([]byte(body), &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

func (m *mockSECClient) GetSubmissions(_ context.Context, cik string) (*models.Submission, error) {
	m.count("submissions")
	sub, ok := m.submissions[cik]
	if !ok {
		return nil, fmt.Errorf("SEC API error: not found (status: 404)")
	}
	return sub, nil
}

func (m *mockSECClient) GetCompanyTickers(_ context.Context) (map[string]string, error) {
	m.count("tickers")
	if m.tickersErr != nil {
		return nil, m.tickersErr
	}
	return m.tickers, nil
}

// --- mock storage ---

type mockStorageManager struct {
	mu         sync.Mutex
	companies  map[string]models.Company
	fiscal     map[string]models.FiscalYearMetadata
	catalog    map[string]models.FieldCatalogEntry
	classes    map[string]models.FieldClassification
	priorities map[string]models.FieldPriority
	facts      map[string]models.NormalizedFact
	events     map[string]models.FilingEvent
	ttm        map[string]models.TTMRecord
	failFacts  string // ticker whose InsertFacts fails
}

func newMockStorage() *mockStorageManager {
	return &mockStorageManager{
		companies:  make(map[string]models.Company),
		fiscal:     make(map[string]models.FiscalYearMetadata),
		catalog:    make(map[string]models.FieldCatalogEntry),
		classes:    make(map[string]models.FieldClassification),
		priorities: make(map[string]models.FieldPriority),
		facts:      make(map[string]models.NormalizedFact),
		events:     make(map[string]models.FilingEvent),
		ttm:        make(map[string]models.TTMRecord),
	}
}

func (m *mockStorageManager) CompanyStore() interfaces.CompanyStore { return m }
func (m *mockStorageManager) FieldStore() interfaces.FieldStore     { return m }
func (m *mockStorageManager) FactStore() interfaces.FactStore       { return m }
func (m *mockStorageManager) EventStore() interfaces.EventStore     { return m }
func (m *mockStorageManager) TTMStore() interfaces.TTMStore         { return m }
func (m *mockStorageManager) Backend() string                       { return "mock" }
func (m *mockStorageManager) Close() error                          { return nil }

func (m *mockStorageManager) SaveCompany(_ context.Context, c *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.Ticker] = *c
	return nil
}

func (m *mockStorageManager) GetCompany(_ context.Context, ticker string) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[ticker]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (m *mockStorageManager) ListCompanies(_ context.Context) ([]*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Company
	for _, c := range m.companies {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (m *mockStorageManager) SaveFiscalYear(_ context.Context, meta *models.FiscalYearMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fiscal[meta.Ticker] = *meta
	return nil
}

func (m *mockStorageManager) GetFiscalYear(_ context.Context, ticker string) (*models.FiscalYearMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.fiscal[ticker]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &meta, nil
}

func (m *mockStorageManager) SaveCatalog(_ context.Context, entries []models.FieldCatalogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.catalog[e.FieldName] = e
	}
	return nil
}

func (m *mockStorageManager) GetCatalog(_ context.Context) ([]models.FieldCatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FieldCatalogEntry
	for _, e := range m.catalog {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockStorageManager) SaveClassifications(_ context.Context, cs []models.FieldClassification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cs {
		m.classes[c.FieldName] = c
	}
	return nil
}

func (m *mockStorageManager) GetClassifications(_ context.Context) ([]models.FieldClassification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FieldClassification
	for _, c := range m.classes {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockStorageManager) SavePriorities(_ context.Context, ps []models.FieldPriority) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range ps {
		m.priorities[p.FieldName] = p
	}
	return nil
}

func (m *mockStorageManager) GetPriorities(_ context.Context) ([]models.FieldPriority, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FieldPriority
	for _, p := range m.priorities {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].FieldName < out[j].FieldName
	})
	return out, nil
}

func (m *mockStorageManager) InsertFacts(_ context.Context, facts []models.NormalizedFact) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, f := range facts {
		if f.Ticker == m.failFacts {
			return 0, fmt.Errorf("disk full")
		}
		if _, ok := m.facts[f.UniqueKey()]; ok {
			continue
		}
		m.facts[f.UniqueKey()] = f
		n++
	}
	return n, nil
}

func (m *mockStorageManager) CountFacts(_ context.Context, ticker string) (int, error) {
	facts, _ := m.ListFacts(context.Background(), ticker, "")
	return len(facts), nil
}

func (m *mockStorageManager) ListFacts(_ context.Context, ticker, field string) ([]models.NormalizedFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.NormalizedFact
	for _, f := range m.facts {
		if f.Ticker == ticker && (field == "" || f.FieldName == field) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FilingDate.Equal(out[j].FilingDate) {
			return out[i].FilingDate.Before(out[j].FilingDate)
		}
		return out[i].PeriodEnd.Before(out[j].PeriodEnd)
	})
	return out, nil
}

func (m *mockStorageManager) GetFactAsOf(ctx context.Context, ticker, field string, asOf time.Time) (*models.NormalizedFact, error) {
	facts, _ := m.ListFacts(ctx, ticker, field)
	for i := len(facts) - 1; i >= 0; i-- {
		if !facts[i].FilingDate.After(asOf) {
			return &facts[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockStorageManager) InsertEvents(_ context.Context, events []models.FilingEvent) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range events {
		if _, ok := m.events[e.UniqueKey()]; ok {
			continue
		}
		m.events[e.UniqueKey()] = e
		n++
	}
	return n, nil
}

func (m *mockStorageManager) ListEvents(_ context.Context, ticker string) ([]models.FilingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FilingEvent
	for _, e := range m.events {
		if e.Ticker == ticker {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilingDate.Before(out[j].FilingDate) })
	return out, nil
}

func (m *mockStorageManager) GetEventAsOf(ctx context.Context, ticker string, asOf time.Time) (*models.FilingEvent, error) {
	events, _ := m.ListEvents(ctx, ticker)
	for i := len(events) - 1; i >= 0; i-- {
		if !events[i].FilingDate.After(asOf) {
			return &events[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockStorageManager) SaveTTM(_ context.Context, records []models.TTMRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.ttm[r.UniqueKey()] = r
	}
	return nil
}

func (m *mockStorageManager) ListTTM(_ context.Context, ticker, metric string) ([]models.TTMRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TTMRecord
	for _, r := range m.ttm {
		if r.Ticker == ticker && r.MetricName == metric {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AsOfDate.Before(out[j].AsOfDate) })
	return out, nil
}

func (m *mockStorageManager) GetTTMAsOf(ctx context.Context, ticker, metric string, asOf time.Time) (*models.TTMRecord, error) {
	records, _ := m.ListTTM(ctx, ticker, metric)
	for i := len(records) - 1; i >= 0; i-- {
		if !records[i].AsOfDate.After(asOf) {
			return &records[i], nil
		}
	}
	return nil, models.ErrNotFound
}

var _ interfaces.StorageManager = (*mockStorageManager)(nil)
var _ interfaces.SECClient = (*mockSECClient)(nil)
