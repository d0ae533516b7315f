package chart

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Standalone HTML renderer. The page carries the full figure spec inline and
// pulls Plotly from the CDN, so an exported file opens from disk with no
// server behind it.
// -----------------------------------------------------------------------------

const plotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

const chartPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
<style>
  body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; }
  #chart { width: 100vw; height: 96vh; }
</style>
</head>
<body>
<div id="chart"></div>
<script>
  var spec = {{.SpecJSON}};
  Plotly.newPlot("chart", spec.data, spec.layout, {responsive: true});
</script>
</body>
</html>
`

var chartPage = template.Must(template.New("chart").Parse(chartPageTemplate))

// -----------------------------------------------------------------------------

type pageData struct {
	Title     string
	PlotlyURL string
	SpecJSON  template.JS
}

// RenderHTML writes the self-contained chart page for spec to w.
func RenderHTML(w io.Writer, title string, spec models.MChartSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("chart spec marshal failed: %w", err)
	}

	return chartPage.Execute(w, pageData{
		Title:     title,
		PlotlyURL: plotlyCDN,
		SpecJSON:  template.JS(specJSON),
	})
}
