package classify

import (
	"sort"
	"sync"

	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
)

// Cache memoizes classifications by field name across companies.
// The first label and description seen for a name decide its classification.
type Cache struct {
	inner interfaces.FieldClassifier
	mu    sync.RWMutex
	byKey map[string]models.FieldClassification
}

// NewCache wraps a classifier with a concurrency-safe memo.
func NewCache(inner interfaces.FieldClassifier) *Cache {
	return &Cache{inner: inner, byKey: make(map[string]models.FieldClassification)}
}

// Classify returns the cached classification for fieldName, computing it on first use.
func (c *Cache) Classify(fieldName, label, description string) models.FieldClassification {
	c.mu.RLock()
	fc, ok := c.byKey[fieldName]
	c.mu.RUnlock()
	if ok {
		return fc
	}

	fc = c.inner.Classify(fieldName, label, description)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byKey[fieldName]; ok {
		return existing
	}
	c.byKey[fieldName] = fc
	return fc
}

// IsCritical delegates to the wrapped classifier.
func (c *Cache) IsCritical(fieldName string) bool {
	return c.inner.IsCritical(fieldName)
}

// Seed preloads classifications, typically from a previous run's stored table.
func (c *Cache) Seed(classifications []models.FieldClassification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fc := range classifications {
		if fc.FieldName == "" || !fc.TemporalNature.Valid() {
			continue
		}
		c.byKey[fc.FieldName] = fc
	}
}

// Reset forgets every memoized classification.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]models.FieldClassification)
}

// Len returns the number of memoized fields.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}

// Snapshot returns every memoized classification ordered by field name.
func (c *Cache) Snapshot() []models.FieldClassification {
	c.mu.RLock()
	out := make([]models.FieldClassification, 0, len(c.byKey))
	for _, fc := range c.byKey {
		out = append(out, fc)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out
}
