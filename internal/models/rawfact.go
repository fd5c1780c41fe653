package models

import (
	"fmt"
	"strings"
)

// RawFact is one provider-supplied value, flattened out of the companyfacts tree.
// Dates stay as raw strings; the temporal normalizer decides how to interpret them.
type RawFact struct {
	FieldName       string
	Taxonomy        string
	Label           string
	Description     string
	Unit            string
	Value           *float64
	Start           string
	End             string
	FiscalYear      *int
	FiscalPeriod    string
	FilingDate      string
	Form            string
	AccessionNumber string
	Frame           string
}

// NewRawFact builds a RawFact, rejecting values with no concept, unit or period end.
func NewRawFact(taxonomy, field, label, description, unit string, v FactValue) (RawFact, error) {
	if strings.TrimSpace(field) == "" || strings.TrimSpace(taxonomy) == "" {
		return RawFact{}, fmt.Errorf("raw fact missing concept name")
	}
	if strings.TrimSpace(unit) == "" {
		return RawFact{}, fmt.Errorf("raw fact %s:%s missing unit", taxonomy, field)
	}
	if strings.TrimSpace(v.End) == "" {
		return RawFact{}, fmt.Errorf("raw fact %s:%s missing period end", taxonomy, field)
	}
	return RawFact{
		FieldName:       field,
		Taxonomy:        taxonomy,
		Label:           label,
		Description:     description,
		Unit:            unit,
		Value:           v.Val,
		Start:           v.Start,
		End:             v.End,
		FiscalYear:      v.FY,
		FiscalPeriod:    v.FP,
		FilingDate:      v.Filed,
		Form:            v.Form,
		AccessionNumber: v.Accn,
		Frame:           v.Frame,
	}, nil
}

// Concept returns the qualified "taxonomy:field" name.
func (r RawFact) Concept() string {
	return r.Taxonomy + ":" + r.FieldName
}

// IsAmended reports whether the fact came from an amended filing (10-K/A, 10-Q/A, ...).
func (r RawFact) IsAmended() bool {
	return strings.Contains(r.Form, "/A")
}

// GroupByConcept indexes facts by their qualified concept, preserving input order per concept.
func GroupByConcept(facts []RawFact) map[string][]RawFact {
	out := make(map[string][]RawFact)
	for _, f := range facts {
		c := f.Concept()
		out[c] = append(out[c], f)
	}
	return out
}
