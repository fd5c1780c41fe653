package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/pitfacts/internal/models"
)

var seriesColors = []string{
	"2563eb", // blue-600
	"16a34a", // green-600
	"dc2626", // red-600
	"9333ea", // purple-600
}

// RenderTTMChart renders TTM values over as-of date as a PNG line chart, one line per metric.
// Metrics with fewer than two records are left out; at least one must remain.
func RenderTTMChart(title string, records []models.TTMRecord) ([]byte, error) {
	byMetric := make(map[string][]models.TTMRecord)
	for _, r := range records {
		byMetric[r.MetricName] = append(byMetric[r.MetricName], r)
	}
	metrics := make([]string, 0, len(byMetric))
	for m, rs := range byMetric {
		if len(rs) >= 2 {
			metrics = append(metrics, m)
		}
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("need at least 2 TTM records for one metric, got %d records", len(records))
	}
	sort.Strings(metrics)

	series := make([]chart.Series, 0, len(metrics))
	for i, m := range metrics {
		rs := byMetric[m]
		sort.Slice(rs, func(a, b int) bool { return rs[a].AsOfDate.Before(rs[b].AsOfDate) })

		xValues := make([]time.Time, len(rs))
		yValues := make([]float64, len(rs))
		for j, r := range rs {
			xValues[j] = r.AsOfDate
			yValues[j] = r.TTMValue
		}
		series = append(series, chart.TimeSeries{
			Name: m,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(seriesColors[i%len(seriesColors)]),
				StrokeWidth: 2.5,
			},
			XValues: xValues,
			YValues: yValues,
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.1fB", f/1e9)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
