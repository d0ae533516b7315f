package chart

import (
	"fmt"
	"time"

	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Chart spec builder. Pure: the same series and summary always produce the
// same spec. The figure is two stacked panels sharing the x axis: the
// percentile indicator on top with its 80/20 reference bands, price and SMA
// below.
// -----------------------------------------------------------------------------

const (
	colorPercentile = "#1f77b4"
	colorClose      = "#2c3e50"
	colorSma        = "#ff7f0e"
	colorDeviation  = "#9467bd"
	colorHotLine    = "red"
	colorMidLine    = "gray"
	colorColdLine   = "green"
	colorHotBand    = "rgba(255,0,0,0.15)"
	colorColdBand   = "rgba(0,128,0,0.08)"
)

// -----------------------------------------------------------------------------

// BuildChartSpec assembles the Plotly figure description for a computed
// series. An empty series still yields a valid spec (empty traces, no
// annotation) so the renderer never needs a special case.
func BuildChartSpec(series models.MDeviationSeries, summary models.MDeviationSummary, hasSummary bool) models.MChartSpec {
	dates := make([]string, len(series.Points))
	percentiles := make([]*float64, len(series.Points))
	closes := make([]*float64, len(series.Points))
	smas := make([]*float64, len(series.Points))
	deviations := make([]*float64, len(series.Points))

	for i, p := range series.Points {
		dates[i] = time.Unix(p.Timestamp, 0).UTC().Format("2006-01-02")
		percentiles[i] = p.Percentile
		smas[i] = p.Sma
		deviations[i] = p.DeviationPct
		c := p.Close
		closes[i] = &c
	}

	spec := models.MChartSpec{
		Traces: []models.MChartTrace{
			{
				X:     dates,
				Y:     percentiles,
				Mode:  "lines",
				Name:  fmt.Sprintf("%s deviation percentile (rolling %dd)", series.Symbol, series.PercentileWindow),
				Line:  &models.MLine{Color: colorPercentile, Width: 2},
				YAxis: "y",
			},
			{
				X:     dates,
				Y:     closes,
				Mode:  "lines",
				Name:  fmt.Sprintf("%s close", series.Symbol),
				Line:  &models.MLine{Color: colorClose, Width: 1.5},
				YAxis: "y2",
			},
			{
				X:     dates,
				Y:     smas,
				Mode:  "lines",
				Name:  fmt.Sprintf("SMA %d", series.SmaWindow),
				Line:  &models.MLine{Color: colorSma, Width: 1.5, Dash: "dash"},
				YAxis: "y2",
			},
			{
				X:       dates,
				Y:       deviations,
				Mode:    "lines",
				Name:    "Deviation %",
				Line:    &models.MLine{Color: colorDeviation, Width: 1, Dash: "dot"},
				YAxis:   "y3",
				Visible: "legendonly",
			},
		},
		Layout: models.MChartLayout{
			Title:      models.MChartTitle{Text: chartTitle(series, summary, hasSummary)},
			Template:   "plotly_white",
			HoverMode:  "x unified",
			ShowLegend: true,
			XAxis: &models.MChartAxis{
				Type:        "date",
				Anchor:      "y2",
				RangeSlider: &models.MRangeSlider{Visible: true},
			},
			YAxis: &models.MChartAxis{
				Title:  "Percentile (0-100)",
				Range:  []float64{-5, 105},
				Domain: []float64{0.55, 1.0},
			},
			YAxis2: &models.MChartAxis{
				Title:  "Price ($)",
				Domain: []float64{0.0, 0.42},
			},
			YAxis3: &models.MChartAxis{
				Title:      "Deviation (%)",
				Overlaying: "y2",
				Side:       "right",
			},
			Shapes: referenceShapes(),
		},
	}

	if hasSummary {
		spec.Layout.Annotations = []models.MAnnotation{latestAnnotation(summary)}
	}

	return spec
}

// -----------------------------------------------------------------------------

func chartTitle(series models.MDeviationSeries, summary models.MDeviationSummary, hasSummary bool) string {
	base := fmt.Sprintf("%s Price vs %d-Day SMA Deviation Percentile", series.Symbol, series.SmaWindow)
	if !hasSummary {
		return base
	}
	return fmt.Sprintf("%s  |  Latest: %s | Close: $%.2f | SMA: $%.2f | Reading: %.1f",
		base, summary.Date, summary.Close, summary.Sma, summary.Percentile)
}

// -----------------------------------------------------------------------------

// referenceShapes draws the 80/50/20 guide lines and the shaded overheated
// and opportunity bands on the percentile panel.
func referenceShapes() []models.MChartShape {
	return []models.MChartShape{
		{
			Type: "rect", XRef: "paper", YRef: "y",
			X0: 0, X1: 1, Y0: 80, Y1: 100,
			FillColor: colorHotBand, Layer: "below",
			Line: &models.MLine{Width: 0},
		},
		{
			Type: "rect", XRef: "paper", YRef: "y",
			X0: 0, X1: 1, Y0: 0, Y1: 20,
			FillColor: colorColdBand, Layer: "below",
			Line: &models.MLine{Width: 0},
		},
		{
			Type: "line", XRef: "paper", YRef: "y",
			X0: 0, X1: 1, Y0: 80, Y1: 80,
			Line: &models.MLine{Color: colorHotLine, Width: 2},
		},
		{
			Type: "line", XRef: "paper", YRef: "y",
			X0: 0, X1: 1, Y0: 50, Y1: 50,
			Line: &models.MLine{Color: colorMidLine, Width: 1, Dash: "dot"},
		},
		{
			Type: "line", XRef: "paper", YRef: "y",
			X0: 0, X1: 1, Y0: 20, Y1: 20,
			Line: &models.MLine{Color: colorColdLine, Width: 1, Dash: "dash"},
		},
	}
}

// -----------------------------------------------------------------------------

func latestAnnotation(summary models.MDeviationSummary) models.MAnnotation {
	return models.MAnnotation{
		X:         summary.Date,
		Y:         summary.Percentile,
		XRef:      "x",
		YRef:      "y",
		Text:      fmt.Sprintf("%.1f (%s)", summary.Percentile, summary.Status),
		ShowArrow: true,
		ArrowHead: 2,
		AX:        -40,
		AY:        -30,
		BgColor:   "rgba(255,255,255,0.8)",
	}
}
