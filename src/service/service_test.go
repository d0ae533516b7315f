package service

import (
	"context"
	"testing"
	"time"

	"deviation-dashboard/src/cache"
	"deviation-dashboard/src/helpers"
	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

// fakeFetcher serves a fixed daily series and counts provider calls.
type fakeFetcher struct {
	bars  []models.MPriceBar
	err   error
	calls int
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

func dailyBars(symbol string, start time.Time, n int) []models.MPriceBar {
	bars := make([]models.MPriceBar, n)
	for i := range bars {
		bars[i] = models.MPriceBar{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i).Unix(),
			Close:     100 + float64(i),
		}
	}
	return bars
}

func testConfig() *models.MConfig {
	return &models.MConfig{
		Name:     "test",
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
}

func testService(fetcher *fakeFetcher, cfg *models.MConfig) *DeviationService {
	return NewDeviationService(
		cfg,
		fetcher,
		cache.NewMemoryCache(time.Hour, 8),
		nil, // no store
		nil, // no metrics
		logger.NewLogger("ERROR", "service-test"),
	)
}

// -----------------------------------------------------------------------------
// GetDeviation
// -----------------------------------------------------------------------------

func TestGetDeviation_ComputesAndTrims(t *testing.T) {
	seriesStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{bars: dailyBars("QQQ", seriesStart, 60)}
	svc := testService(fetcher, testConfig())

	req := Request{
		Symbol:           "QQQ",
		Start:            time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		SmaWindow:        3,
		PercentileWindow: 2,
	}

	result, err := svc.GetDeviation(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2024-02-01 .. 2024-02-10 inclusive is 10 calendar days of daily bars.
	if len(result.Series.Points) != 10 {
		t.Errorf("points in range: got %d, want 10", len(result.Series.Points))
	}
	for _, p := range result.Series.Points {
		if p.Timestamp < req.Start.Unix() || p.Timestamp > req.End.Unix() {
			t.Errorf("point %d outside the requested range", p.Timestamp)
		}
		// Warmup history precedes the range, so every visible point is defined.
		if p.Sma == nil || p.DeviationPct == nil || p.Percentile == nil {
			t.Errorf("point %d has undefined fields despite warmup", p.Timestamp)
		}
	}

	if !result.HasSummary {
		t.Error("expected a summary")
	}
	if result.Series.SmaWindow != 3 || result.Series.PercentileWindow != 2 {
		t.Errorf("window metadata: %+v", result.Series)
	}
}

func TestGetDeviation_SecondCallHitsCache(t *testing.T) {
	seriesStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{bars: dailyBars("QQQ", seriesStart, 60)}
	svc := testService(fetcher, testConfig())

	req := Request{
		Symbol:           "QQQ",
		Start:            time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		SmaWindow:        3,
		PercentileWindow: 2,
	}

	if _, err := svc.GetDeviation(context.Background(), req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.GetDeviation(context.Background(), req); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if fetcher.calls != 1 {
		t.Errorf("provider calls: got %d, want 1 (second request should hit the cache)", fetcher.calls)
	}
}

func TestGetDeviation_DefaultWindows(t *testing.T) {
	seriesStart := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{bars: dailyBars("QQQ", seriesStart, 10)}
	svc := testService(fetcher, testConfig())

	result, err := svc.GetDeviation(context.Background(), Request{
		Symbol: "QQQ",
		Start:  time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2015, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Series.SmaWindow != 200 {
		t.Errorf("default sma window: got %d, want 200", result.Series.SmaWindow)
	}
	if result.Series.PercentileWindow != 1260 {
		t.Errorf("default percentile window: got %d, want 1260", result.Series.PercentileWindow)
	}
	// 10 bars cannot fill a 200-day SMA: every point is undefined but present.
	if result.HasSummary {
		t.Error("summary should be absent without a full window")
	}
}

func TestGetDeviation_ValidationErrors(t *testing.T) {
	fetcher := &fakeFetcher{}
	cfg := testConfig()
	cfg.Fetcher.AllowedSymbols = []string{"QQQ", "SPY"}
	svc := testService(fetcher, cfg)

	cases := []struct {
		name string
		req  Request
	}{
		{"empty symbol", Request{Symbol: "   "}},
		{"disallowed symbol", Request{Symbol: "GME"}},
		{"start after end", Request{
			Symbol: "QQQ",
			Start:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
		{"sma window too small", Request{Symbol: "QQQ", SmaWindow: 1}},
		{"negative percentile window", Request{Symbol: "QQQ", PercentileWindow: -5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetDeviation(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !helpers.IsValidation(err) {
				t.Errorf("want ValidationError, got %T: %v", err, err)
			}
			if fetcher.calls != 0 {
				t.Errorf("provider was called on invalid input")
			}
		})
	}
}

func TestGetDeviation_SymbolNormalized(t *testing.T) {
	seriesStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{bars: dailyBars("QQQ", seriesStart, 60)}
	svc := testService(fetcher, testConfig())

	result, err := svc.GetDeviation(context.Background(), Request{
		Symbol:           " qqq ",
		Start:            time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		SmaWindow:        3,
		PercentileWindow: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Series.Symbol != "QQQ" {
		t.Errorf("symbol not normalized: %q", result.Series.Symbol)
	}
}

func TestGetDeviation_ProviderErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: helpers.NewDataUnavailable("QQQ", nil)}
	svc := testService(fetcher, testConfig())

	_, err := svc.GetDeviation(context.Background(), Request{
		Symbol:           "QQQ",
		Start:            time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		SmaWindow:        3,
		PercentileWindow: 2,
	})
	if !helpers.IsDataUnavailable(err) {
		t.Errorf("want DataUnavailableError, got %v", err)
	}
}
