package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"deviation-dashboard/src/chart"
	"deviation-dashboard/src/helpers"
	"deviation-dashboard/src/service"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Deviation Dashboard</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 640px; margin: 48px auto; }
  label { display: block; margin-top: 12px; }
  input { padding: 6px; width: 200px; }
  button { margin-top: 16px; padding: 8px 20px; }
</style>
</head>
<body>
<h1>Trend Deviation Dashboard</h1>
<p>Rolling percentile of the close-to-SMA deviation. Readings above 80 are
overheated, below 20 are opportunities.</p>
<form action="/chart" method="get">
  <label>Symbol <input name="symbol" value="{{.Symbol}}"></label>
  <label>Chart start (YYYY-MM-DD) <input name="start" value="{{.Start}}"></label>
  <button type="submit">Render chart</button>
</form>
<p><a href="/api/summary?symbol={{.Symbol}}">Latest summary (JSON)</a></p>
</body>
</html>
`))

func (s *WebServer) getIndex(c *gin.Context) {
	s.countRequest("index")

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := indexPage.Execute(c.Writer, gin.H{
		"Symbol": s.Config.Fetcher.DefaultSymbol,
		"Start":  s.Config.Fetcher.DefaultStart,
	})
	if err != nil {
		s.Logger.Error("Index render failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (s *WebServer) getDeviation(c *gin.Context) {
	s.countRequest("deviation")

	req, err := s.parseRequest(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.Service.GetDeviation(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Series)
}

// -----------------------------------------------------------------------------

func (s *WebServer) getSummary(c *gin.Context) {
	s.countRequest("summary")

	req, err := s.parseRequest(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.Service.GetDeviation(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !result.HasSummary {
		s.respondError(c, helpers.NewDataUnavailable(req.Symbol,
			fmt.Errorf("no fully defined reading in range")))
		return
	}

	c.JSON(http.StatusOK, result.Summary)
}

// -----------------------------------------------------------------------------

func (s *WebServer) getChart(c *gin.Context) {
	s.countRequest("chart")

	req, err := s.parseRequest(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.Service.GetDeviation(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	spec := chart.BuildChartSpec(result.Series, result.Summary, result.HasSummary)

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := chart.RenderHTML(c.Writer, result.Series.Symbol+" deviation", spec); err != nil {
		s.Logger.Error("Chart render failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (s *WebServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"cached_series": s.Service.Cache.Len(),
	})
}

// -----------------------------------------------------------------------------

func (s *WebServer) getConfig(c *gin.Context) {
	s.countRequest("config")

	// Expose tuning knobs only, never connection strings.
	c.JSON(http.StatusOK, gin.H{
		"default_symbol":         s.Config.Fetcher.DefaultSymbol,
		"default_start":          s.Config.Fetcher.DefaultStart,
		"sma_window":             s.Config.Analysis.SmaWindow,
		"percentile_years":       s.Config.Analysis.PercentileYears,
		"trading_days_per_year":  s.Config.Analysis.TradingDaysPerYear,
		"percentile_window_days": s.Config.PercentileWindowDays(),
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// parseRequest maps query parameters onto a service request. Missing values
// stay zero and pick up the configured defaults downstream.
func (s *WebServer) parseRequest(c *gin.Context) (service.Request, error) {
	req := service.Request{
		Symbol: c.DefaultQuery("symbol", s.Config.Fetcher.DefaultSymbol),
	}

	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return req, helpers.NewValidationError("invalid start date %q, want YYYY-MM-DD", raw)
		}
		req.Start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return req, helpers.NewValidationError("invalid end date %q, want YYYY-MM-DD", raw)
		}
		req.End = t
	}

	if raw := c.Query("sma_window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, helpers.NewValidationError("invalid sma_window %q", raw)
		}
		req.SmaWindow = n
	}
	if raw := c.Query("percentile_years"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, helpers.NewValidationError("invalid percentile_years %q", raw)
		}
		req.PercentileWindow = n * s.Config.Analysis.TradingDaysPerYear
	}
	// percentile_window overrides percentile_years when both are given.
	if raw := c.Query("percentile_window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, helpers.NewValidationError("invalid percentile_window %q", raw)
		}
		req.PercentileWindow = n
	}

	return req, nil
}

// -----------------------------------------------------------------------------

func (s *WebServer) respondError(c *gin.Context, err error) {
	switch {
	case helpers.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case helpers.IsDataUnavailable(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.Logger.Error("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// -----------------------------------------------------------------------------

func (s *WebServer) countRequest(endpoint string) {
	if s.Service.Metrics != nil {
		s.Service.Metrics.RequestsTotal.WithLabelValues(endpoint).Inc()
	}
}
