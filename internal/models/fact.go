package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// factNamespace seeds deterministic record ids for facts, events and TTM rows.
var factNamespace = uuid.MustParse("6f1c2e3a-9b7d-4c1e-8a55-0d3f2b6c9e41")

// NormalizedFact is the persisted unit: one reported value, classified and placed in time.
// Facts are never mutated once stored; an amendment arrives as a new fact with a later filing date.
type NormalizedFact struct {
	Ticker        string         `json:"ticker"`
	CIK           string         `json:"cik"`
	EntityName    string         `json:"entity_name"`
	Sector        string         `json:"sector"`
	Industry      string         `json:"industry"`
	FieldName     string         `json:"field_name"`
	FieldLabel    string         `json:"field_label"`
	StatementType StatementType  `json:"statement_type"`
	TemporalType  TemporalNature `json:"temporal_type"`
	PeriodStart   *time.Time     `json:"period_start"`
	PeriodEnd     time.Time      `json:"period_end"`
	Value         *float64       `json:"value"`
	Unit          string         `json:"unit"`
	FilingDate    time.Time      `json:"filing_date"`
	FiscalYear    *int           `json:"fiscal_year"`
	FiscalPeriod  string         `json:"fiscal_period"`
	Form          string         `json:"form"`
	IsAmended     bool           `json:"is_amended"`
	FieldPriority float64        `json:"field_priority"`
	Taxonomy      string         `json:"taxonomy"`
	AccountNumber string         `json:"account_number"`
	Frame         string         `json:"frame"`
}

// UniqueKey is the natural key (ticker, field, period_end, fiscal_period, unit, account_number).
func (f NormalizedFact) UniqueKey() string {
	return strings.Join([]string{
		f.Ticker, f.FieldName, FormatDate(f.PeriodEnd), f.FiscalPeriod, f.Unit, f.AccountNumber,
	}, "|")
}

// RecordID returns a stable id derived from the natural key.
func (f NormalizedFact) RecordID() string {
	return KeyID(f.UniqueKey())
}

// KeyID maps a natural key to a deterministic UUIDv5 string.
func KeyID(key string) string {
	return uuid.NewSHA1(factNamespace, []byte(key)).String()
}
