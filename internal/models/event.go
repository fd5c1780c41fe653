package models

import (
	"strings"
	"time"
)

// Form types that carry a full fiscal year.
var annualForms = map[string]bool{"10-K": true, "20-F": true, "40-F": true}

// IsAnnualForm reports whether form is an original (non-amended) annual report.
func IsAnnualForm(form string) bool {
	return annualForms[form]
}

// IsAnnualOrAmendedForm also accepts 10-K/A, 20-F/A and 40-F/A.
func IsAnnualOrAmendedForm(form string) bool {
	return annualForms[strings.TrimSuffix(form, "/A")]
}

// FilingEvent is one SEC submission as seen through its reported facts.
type FilingEvent struct {
	Ticker          string    `json:"ticker"`
	FilingDate      time.Time `json:"filing_date"`
	PeriodEnd       time.Time `json:"period_end"`
	Form            string    `json:"form"`
	FiscalYear      *int      `json:"fiscal_year"`
	FiscalPeriod    string    `json:"fiscal_period"`
	AccessionNumber string    `json:"accession_number"`
}

// UniqueKey is (ticker, filing_date, period_end, form, accession).
func (e FilingEvent) UniqueKey() string {
	return strings.Join([]string{
		e.Ticker, FormatDate(e.FilingDate), FormatDate(e.PeriodEnd), e.Form, e.AccessionNumber,
	}, "|")
}

// RecordID returns a stable id derived from the natural key.
func (e FilingEvent) RecordID() string {
	return KeyID(e.UniqueKey())
}
