package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CIK is a SEC Central Index Key. The API serves it as a number; config files often hold strings.
type CIK string

// UnmarshalJSON accepts both numeric and string CIKs.
func (c *CIK) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*c = CIK(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into CIK", string(data))
	}
	*c = CIK(strings.TrimSpace(s))
	return nil
}

// Padded returns the 10-digit zero-padded form used in SEC URLs.
func (c CIK) Padded() string {
	s := strings.TrimLeft(string(c), "0")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fmt.Sprintf("%010d", n)
	}
	return fmt.Sprintf("%010s", string(c))
}

// String returns the CIK without padding changes.
func (c CIK) String() string {
	return string(c)
}

// CompanyFacts is the SEC companyfacts payload:
// {cik, entityName, facts: {taxonomy: {field: {label, description, units: {unit: [value]}}}}}
type CompanyFacts struct {
	CIK        CIK                              `json:"cik"`
	EntityName string                           `json:"entityName"`
	Facts      map[string]map[string]FieldFacts `json:"facts"`
}

// FieldFacts holds every reported value of one concept, grouped by unit.
type FieldFacts struct {
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Units       map[string][]FactValue `json:"units"`
}

// FactValue is one reported value as served by the SEC API.
type FactValue struct {
	Start string   `json:"start,omitempty"`
	End   string   `json:"end"`
	Val   *float64 `json:"val"`
	Accn  string   `json:"accn"`
	FY    *int     `json:"fy"`
	FP    string   `json:"fp"`
	Form  string   `json:"form"`
	Filed string   `json:"filed"`
	Frame string   `json:"frame,omitempty"`
}

// Validate checks the identity fields every downstream step relies on.
func (cf *CompanyFacts) Validate() error {
	if cf == nil || strings.TrimSpace(string(cf.CIK)) == "" || cf.CIK == "0" {
		return ErrMissingCIK
	}
	if strings.TrimSpace(cf.EntityName) == "" {
		return ErrMissingEntityName
	}
	if len(cf.Facts) == 0 {
		return ErrMissingFacts
	}
	return nil
}

// Field returns the facts for taxonomy:field and whether they exist.
func (cf *CompanyFacts) Field(taxonomy, field string) (FieldFacts, bool) {
	if cf == nil {
		return FieldFacts{}, false
	}
	fields, ok := cf.Facts[taxonomy]
	if !ok {
		return FieldFacts{}, false
	}
	ff, ok := fields[field]
	return ff, ok
}

// FieldCount returns the number of distinct concepts across all taxonomies.
func (cf *CompanyFacts) FieldCount() int {
	n := 0
	for _, fields := range cf.Facts {
		n += len(fields)
	}
	return n
}

// Flatten expands the payload into RawFacts in a deterministic order:
// taxonomy, field and unit keys ascending, values in source order.
// Values failing RawFact validation are dropped and counted.
func (cf *CompanyFacts) Flatten() ([]RawFact, int) {
	var out []RawFact
	dropped := 0
	for _, taxonomy := range sortedKeys(cf.Facts) {
		fields := cf.Facts[taxonomy]
		for _, name := range sortedKeys(fields) {
			facts, d := FlattenField(taxonomy, name, fields[name])
			out = append(out, facts...)
			dropped += d
		}
	}
	return out, dropped
}

// FlattenField expands one concept across all of its units.
func FlattenField(taxonomy, name string, ff FieldFacts) ([]RawFact, int) {
	var out []RawFact
	dropped := 0
	for _, unit := range sortedKeys(ff.Units) {
		for _, v := range ff.Units[unit] {
			rf, err := NewRawFact(taxonomy, name, ff.Label, ff.Description, unit, v)
			if err != nil {
				dropped++
				continue
			}
			out = append(out, rf)
		}
	}
	return out, dropped
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
