package models

import (
	"strings"
	"time"
)

// TTM metric names.
const (
	MetricRevenueTTM   = "Revenue_TTM"
	MetricNetIncomeTTM = "NetIncome_TTM"
)

// TTMRecord is the trailing-twelve-month value known as of a filing date.
type TTMRecord struct {
	Ticker       string    `json:"ticker"`
	MetricName   string    `json:"metric_name"`
	AsOfDate     time.Time `json:"as_of_date"`
	PeriodEnd    time.Time `json:"period_end"`
	TTMValue     float64   `json:"ttm_value"`
	SourceFiling string    `json:"source_filing"`
}

// UniqueKey is (ticker, metric_name, as_of_date).
func (r TTMRecord) UniqueKey() string {
	return strings.Join([]string{r.Ticker, r.MetricName, FormatDate(r.AsOfDate)}, "|")
}

// RecordID returns a stable id derived from the natural key.
func (r TTMRecord) RecordID() string {
	return KeyID(r.UniqueKey())
}
