// Package chart renders the sentiment distribution as a PNG pie chart.
package chart

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/carfeed/internal/models"
)

var sentimentColors = map[string]drawing.Color{
	models.SentimentPositive: drawing.ColorFromHex("00C49F"),
	models.SentimentNeutral:  drawing.ColorFromHex("FFBB28"),
	models.SentimentNegative: drawing.ColorFromHex("FF8042"),
}

// RenderSentimentPie renders the snapshot as a PNG pie chart with one slice
// per non-zero sentiment. Returns raw PNG bytes.
func RenderSentimentPie(stats *models.StatsSnapshot) ([]byte, error) {
	if stats == nil || stats.TotalCount == 0 {
		return nil, fmt.Errorf("no sentiment data to chart")
	}

	slices := []struct {
		label string
		key   string
		count int
		pct   float64
	}{
		{"Positive", models.SentimentPositive, stats.PositiveCount, stats.PositivePercentage},
		{"Neutral", models.SentimentNeutral, stats.NeutralCount, stats.NeutralPercentage},
		{"Negative", models.SentimentNegative, stats.NegativeCount, stats.NegativePercentage},
	}

	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if s.count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.0f%%", s.label, s.pct),
			Value: float64(s.count),
			Style: chart.Style{
				FillColor:   sentimentColors[s.key],
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}

	pie := chart.PieChart{
		Title:  "Sentiment Distribution",
		Width:  480,
		Height: 480,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render sentiment chart: %w", err)
	}
	return buf.Bytes(), nil
}
