// Package temporal turns raw XBRL period bounds into point-in-time correct dates.
package temporal

import (
	"time"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// Fixed offsets used to infer a missing period start. They ignore leap years and
// 52/53-week fiscal calendars.
const (
	AnnualSpan    = 365 * 24 * time.Hour
	QuarterlySpan = 90 * 24 * time.Hour
)

// Normalize returns (period_start, period_end) for a raw fact.
//
// Point-in-time facts never carry a start. Period facts keep a supplied start and
// otherwise infer one from the fiscal period: FY is end-365d, Q1..Q4 is end-90d, and
// anything else is left nil. A malformed start counts as absent. A malformed end
// returns (nil, nil) and the caller decides whether to drop the record.
func Normalize(rawStart, rawEnd string, nature models.TemporalNature, fiscalPeriod string) (*time.Time, *time.Time) {
	end, err := models.ParseDate(rawEnd)
	if err != nil {
		return nil, nil
	}

	if nature == models.PointInTime {
		return nil, &end
	}

	if start := models.ParseDatePtr(rawStart); start != nil {
		return start, &end
	}

	span, ok := inferredSpan(fiscalPeriod)
	if !ok {
		return nil, &end
	}
	start := end.Add(-span)
	return &start, &end
}

func inferredSpan(fiscalPeriod string) (time.Duration, bool) {
	switch fiscalPeriod {
	case "FY":
		return AnnualSpan, true
	case "Q1", "Q2", "Q3", "Q4":
		return QuarterlySpan, true
	default:
		return 0, false
	}
}
