package models

import "time"

// Skip reasons recorded in a RunSummary.
const (
	SkipNoCIK       = "not_in_cik_map"
	SkipFetchFailed = "fetch_failed"
	SkipIdentity    = "missing_identity"
	SkipStoreFailed = "store_failed"
)

// RunSummary reports the outcome of one pipeline run.
type RunSummary struct {
	RunID              string            `json:"run_id"`
	StartedAt          time.Time         `json:"started_at"`
	FinishedAt         time.Time         `json:"finished_at"`
	CompaniesRequested int               `json:"companies_requested"`
	CompaniesProcessed int               `json:"companies_processed"`
	CompaniesSkipped   map[string]string `json:"companies_skipped"`
	FieldsCataloged    int               `json:"fields_cataloged"`
	FactsNormalized    int               `json:"facts_normalized"`
	FactsInserted      int               `json:"facts_inserted"`
	FactsDropped       int               `json:"facts_dropped"`
	EventsInserted     int               `json:"events_inserted"`
	TTMRecords         int               `json:"ttm_records"`
	NoTimeline         []string          `json:"no_timeline,omitempty"`
}

// Duration returns the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
