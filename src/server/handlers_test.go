package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deviation-dashboard/src/cache"
	"deviation-dashboard/src/helpers"
	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
	"deviation-dashboard/src/service"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeFetcher struct {
	bars []models.MPriceBar
	err  error
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

func testServer(fetcher *fakeFetcher) *WebServer {
	cfg := &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     8000,
		LogLevel: "ERROR",
		Fetcher: models.MFetcherConfig{
			DefaultSymbol: "QQQ",
			DefaultStart:  "2010-01-01",
		},
		Analysis: models.MAnalysisConfig{
			SmaWindow:          200,
			PercentileYears:    5,
			TradingDaysPerYear: 252,
		},
	}
	log := logger.NewLogger("ERROR", "server-test")
	svc := service.NewDeviationService(cfg, fetcher, cache.NewMemoryCache(time.Hour, 8), nil, nil, log)
	return NewWebServer(cfg, svc, log)
}

func barsFixture() []models.MPriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.MPriceBar, 60)
	for i := range bars {
		bars[i] = models.MPriceBar{
			Symbol:    "QQQ",
			Timestamp: start.AddDate(0, 0, i).Unix(),
			Close:     100 + float64(i),
		}
	}
	return bars
}

func doGet(s *WebServer, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.engine.ServeHTTP(w, req)
	return w
}

const deviationQuery = "?symbol=QQQ&start=2024-02-01&end=2024-02-10&sma_window=3&percentile_window=2"

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func TestGetDeviation_OK(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	w := doGet(s, "/api/deviation"+deviationQuery)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var series models.MDeviationSeries
	if err := json.Unmarshal(w.Body.Bytes(), &series); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if series.Symbol != "QQQ" || len(series.Points) == 0 {
		t.Errorf("unexpected series: symbol=%s points=%d", series.Symbol, len(series.Points))
	}
}

func TestGetDeviation_BadDate(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	w := doGet(s, "/api/deviation?symbol=QQQ&start=02-01-2024")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "start date") {
		t.Errorf("error body %q does not name the bad field", w.Body.String())
	}
}

func TestGetDeviation_BadWindow(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	if w := doGet(s, "/api/deviation?symbol=QQQ&sma_window=abc"); w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", w.Code)
	}
	if w := doGet(s, "/api/deviation"+"?symbol=QQQ&sma_window=1"); w.Code != http.StatusBadRequest {
		t.Errorf("window of 1: status %d, want 400", w.Code)
	}
}

func TestGetDeviation_PercentileYearsParam(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	// 1 year x 252 trading days; not enough history, but the window metadata
	// must reflect the conversion.
	w := doGet(s, "/api/deviation?symbol=QQQ&start=2024-02-01&end=2024-02-10&sma_window=3&percentile_years=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var series models.MDeviationSeries
	if err := json.Unmarshal(w.Body.Bytes(), &series); err != nil {
		t.Fatal(err)
	}
	if series.PercentileWindow != 252 {
		t.Errorf("percentile window: got %d, want 252", series.PercentileWindow)
	}

	if w := doGet(s, "/api/deviation?symbol=QQQ&percentile_years=0"); w.Code != http.StatusBadRequest {
		t.Errorf("zero years: status %d, want 400", w.Code)
	}
}

func TestGetDeviation_UnknownSymbol(t *testing.T) {
	s := testServer(&fakeFetcher{err: helpers.NewDataUnavailable("NOPE", nil)})

	w := doGet(s, "/api/deviation?symbol=NOPE")
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestGetSummary_OK(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	w := doGet(s, "/api/summary"+deviationQuery)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var summary models.MDeviationSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if summary.Symbol != "QQQ" || summary.Status == "" {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestGetChart_RendersHTML(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	w := doGet(s, "/chart"+deviationQuery)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Plotly.newPlot") {
		t.Error("chart page missing the Plotly bootstrap")
	}
}

func TestGetIndex(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	w := doGet(s, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "QQQ") || !strings.Contains(body, "/chart") {
		t.Error("index page missing the default symbol or chart form")
	}
}

func TestGetHealth(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	w := doGet(s, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status %v", body["status"])
	}
}

func TestGetConfig_HidesSecrets(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})
	s.Config.Storage.DBConnectionString = "postgres://user:secret@db/prices"

	w := doGet(s, "/api/config")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "sma_window") {
		t.Error("config response missing analysis knobs")
	}
	if strings.Contains(body, "secret") {
		t.Error("config response leaks the connection string")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := testServer(&fakeFetcher{bars: barsFixture()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/deviation", nil)
	req.Header.Set("Origin", "http://127.0.0.1:3000")
	s.engine.ServeHTTP(w, req)

	if w.Code != 204 {
		t.Errorf("preflight status %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://127.0.0.1:3000" {
		t.Errorf("allow origin %q", got)
	}
}
