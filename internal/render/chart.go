package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"Instagraph/internal/model"
)

// RenderChart renders a PNG line chart of the adjusted close over date, with the
// y axis pinned to the derived scale bounds. Returns raw PNG bytes.
func RenderChart(r *Report) ([]byte, error) {
	if err := r.check(2); err != nil {
		return nil, fmt.Errorf("need at least 2 data points: %w", err)
	}

	series := chart.TimeSeries{
		Name: "Adj Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("1f4e79"),
			StrokeWidth: 2,
		},
		XValues: r.Dataset.Dates(),
		YValues: r.Dataset.AdjCloses(),
	}

	priceFormat := r.Stats.PriceFormat
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s | %s", r.Quote, summaryTitle),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 2006")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: r.Stats.ScaleMin, Max: r.Stats.ScaleMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return model.DisplayPrice(f, priceFormat)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName returns the output base name for a quote at a point in time.
func FileName(quote string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", quote, at.Format("20060102"), ext)
}
