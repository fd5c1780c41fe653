package enrich

import (
	"sync"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// Directory is an in-memory ticker to company index used to stamp facts.
type Directory struct {
	mu        sync.RWMutex
	companies map[string]models.Company
}

// NewDirectory returns a Directory seeded with companies.
func NewDirectory(companies ...*models.Company) *Directory {
	d := &Directory{companies: make(map[string]models.Company)}
	for _, c := range companies {
		if c != nil {
			d.Put(*c)
		}
	}
	return d
}

// Put adds or replaces a company.
func (d *Directory) Put(c models.Company) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.companies[c.Ticker] = c
}

// Get returns the company for ticker.
func (d *Directory) Get(ticker string) (models.Company, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.companies[ticker]
	return c, ok
}

// Lookup implements interfaces.Enricher. Unknown tickers return empty strings.
func (d *Directory) Lookup(ticker string) (string, string) {
	c, ok := d.Get(ticker)
	if !ok {
		return "", ""
	}
	return c.Sector, c.Industry
}

// Sector returns only the sector; it matches fields.SectorFunc.
func (d *Directory) Sector(ticker string) string {
	s, _ := d.Lookup(ticker)
	return s
}

// Len returns the number of companies indexed.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.companies)
}
