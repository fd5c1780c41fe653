// Package fields builds the cross-company field catalog and derives
// availability, deprecation, priority and consolidation metadata from it.
package fields

import (
	"slices"
	"sort"
	"sync"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// Catalog accumulates every field reported across a company universe.
// A field is keyed by name; the first taxonomy, label and description seen are kept.
type Catalog struct {
	mu        sync.Mutex
	entries   map[string]*models.FieldCatalogEntry
	concepts  map[string]map[string]bool // "taxonomy:field" -> reporting tickers
	companies map[string]bool
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries:   make(map[string]*models.FieldCatalogEntry),
		concepts:  make(map[string]map[string]bool),
		companies: make(map[string]bool),
	}
}

// Seed loads the entries stored by earlier runs into an empty catalog. Every company
// they name joins the universe until it is added again with a fresh payload.
func (c *Catalog) Seed(entries []models.FieldCatalogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entries {
		if e.FieldName == "" || len(e.CompaniesUsing) == 0 {
			continue
		}
		entry := &models.FieldCatalogEntry{
			FieldName:   e.FieldName,
			Taxonomy:    e.Taxonomy,
			Label:       e.Label,
			Description: e.Description,
		}
		for _, ticker := range e.CompaniesUsing {
			if slices.Contains(entry.CompaniesUsing, ticker) {
				continue
			}
			entry.CompaniesUsing = append(entry.CompaniesUsing, ticker)
			c.companies[ticker] = true
			c.markConcept(e.Taxonomy, e.FieldName, ticker)
		}
		entry.Count = len(entry.CompaniesUsing)
		c.entries[e.FieldName] = entry
	}
}

// Add records every field in a company's payload. A company counts once per field
// no matter how many taxonomies or units report it. Adding a ticker that is already
// present replaces its earlier contribution.
func (c *Catalog) Add(ticker string, cf *models.CompanyFacts) {
	if cf == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.companies[ticker] {
		c.removeCompany(ticker)
	}
	c.companies[ticker] = true

	taxonomies := make([]string, 0, len(cf.Facts))
	for tax := range cf.Facts {
		taxonomies = append(taxonomies, tax)
	}
	sort.Strings(taxonomies)

	for _, tax := range taxonomies {
		for name, ff := range cf.Facts[tax] {
			entry, ok := c.entries[name]
			if !ok {
				entry = &models.FieldCatalogEntry{
					FieldName:   name,
					Taxonomy:    tax,
					Label:       ff.Label,
					Description: ff.Description,
				}
				c.entries[name] = entry
			}
			c.markConcept(tax, name, ticker)
			if n := len(entry.CompaniesUsing); n > 0 && entry.CompaniesUsing[n-1] == ticker {
				continue
			}
			entry.CompaniesUsing = append(entry.CompaniesUsing, ticker)
			entry.Count++
		}
	}
}

func (c *Catalog) markConcept(taxonomy, field, ticker string) {
	key := taxonomy + ":" + field
	users, ok := c.concepts[key]
	if !ok {
		users = make(map[string]bool)
		c.concepts[key] = users
	}
	users[ticker] = true
}

// removeCompany drops ticker from every entry, deleting entries nobody reports any more.
func (c *Catalog) removeCompany(ticker string) {
	for name, e := range c.entries {
		i := slices.Index(e.CompaniesUsing, ticker)
		if i < 0 {
			continue
		}
		e.CompaniesUsing = slices.Delete(e.CompaniesUsing, i, i+1)
		e.Count--
		if e.Count == 0 {
			delete(c.entries, name)
		}
	}
	for key, users := range c.concepts {
		delete(users, ticker)
		if len(users) == 0 {
			delete(c.concepts, key)
		}
	}
	delete(c.companies, ticker)
}

// HasConcept reports whether any company reports the qualified concept ("ifrs-full:Revenue").
func (c *Catalog) HasConcept(concept string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.concepts[concept]) > 0
}

// Entries returns a copy of the catalog ordered by field name, with sorted company lists.
func (c *Catalog) Entries() []models.FieldCatalogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.FieldCatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		cp := *e
		cp.CompaniesUsing = append([]string(nil), e.CompaniesUsing...)
		sort.Strings(cp.CompaniesUsing)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out
}

// Get returns one entry by field name.
func (c *Catalog) Get(name string) (models.FieldCatalogEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok {
		return models.FieldCatalogEntry{}, false
	}
	return *e, true
}

// Len returns the number of distinct fields.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// UniverseSize returns the number of companies added.
func (c *Catalog) UniverseSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.companies)
}

// Tickers returns the companies added, sorted.
func (c *Catalog) Tickers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.companies))
	for t := range c.companies {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
