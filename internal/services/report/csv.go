package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// factRow is the CSV shape of a NormalizedFact. Dates are ISO strings and absent
// values are empty cells.
type factRow struct {
	Ticker        string `csv:"ticker"`
	CIK           string `csv:"cik"`
	EntityName    string `csv:"entity_name"`
	Sector        string `csv:"sector"`
	Industry      string `csv:"industry"`
	FieldName     string `csv:"field_name"`
	FieldLabel    string `csv:"field_label"`
	StatementType string `csv:"statement_type"`
	TemporalType  string `csv:"temporal_type"`
	PeriodStart   string `csv:"period_start"`
	PeriodEnd     string `csv:"period_end"`
	Value         string `csv:"value"`
	Unit          string `csv:"unit"`
	UnitType      string `csv:"unit_type"`
	FilingDate    string `csv:"filing_date"`
	FiscalYear    string `csv:"fiscal_year"`
	FiscalPeriod  string `csv:"fiscal_period"`
	Form          string `csv:"form"`
	IsAmended     bool   `csv:"is_amended"`
	FieldPriority string `csv:"field_priority"`
	Taxonomy      string `csv:"taxonomy"`
	AccountNumber string `csv:"account_number"`
	Frame         string `csv:"frame"`
}

type ttmRow struct {
	Ticker       string `csv:"ticker"`
	MetricName   string `csv:"metric_name"`
	AsOfDate     string `csv:"as_of_date"`
	PeriodEnd    string `csv:"period_end"`
	TTMValue     string `csv:"ttm_value"`
	SourceFiling string `csv:"source_filing"`
}

// WriteFactsCSV writes facts with a header row.
func WriteFactsCSV(w io.Writer, facts []models.NormalizedFact) error {
	rows := make([]*factRow, 0, len(facts))
	for _, f := range facts {
		row := &factRow{
			Ticker:        f.Ticker,
			CIK:           f.CIK,
			EntityName:    f.EntityName,
			Sector:        f.Sector,
			Industry:      f.Industry,
			FieldName:     f.FieldName,
			FieldLabel:    f.FieldLabel,
			StatementType: string(f.StatementType),
			TemporalType:  string(f.TemporalType),
			PeriodStart:   models.FormatDatePtr(f.PeriodStart),
			PeriodEnd:     models.FormatDate(f.PeriodEnd),
			Unit:          f.Unit,
			UnitType:      string(models.ClassifyUnit(f.Unit)),
			FilingDate:    models.FormatDate(f.FilingDate),
			FiscalPeriod:  f.FiscalPeriod,
			Form:          f.Form,
			IsAmended:     f.IsAmended,
			FieldPriority: formatFloat(f.FieldPriority),
			Taxonomy:      f.Taxonomy,
			AccountNumber: f.AccountNumber,
			Frame:         f.Frame,
		}
		if f.Value != nil {
			row.Value = formatFloat(*f.Value)
		}
		if f.FiscalYear != nil {
			row.FiscalYear = strconv.Itoa(*f.FiscalYear)
		}
		rows = append(rows, row)
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write facts csv: %w", err)
	}
	return nil
}

// WriteTTMCSV writes TTM records with a header row.
func WriteTTMCSV(w io.Writer, records []models.TTMRecord) error {
	rows := make([]*ttmRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, &ttmRow{
			Ticker:       r.Ticker,
			MetricName:   r.MetricName,
			AsOfDate:     models.FormatDate(r.AsOfDate),
			PeriodEnd:    models.FormatDate(r.PeriodEnd),
			TTMValue:     formatFloat(r.TTMValue),
			SourceFiling: r.SourceFiling,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write ttm csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
