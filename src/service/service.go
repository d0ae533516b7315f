package service

import (
	"context"
	"strings"
	"time"

	"deviation-dashboard/src/analysis"
	"deviation-dashboard/src/cache"
	"deviation-dashboard/src/helpers"
	"deviation-dashboard/src/interfaces"
	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/metrics"
	"deviation-dashboard/src/models"
	"deviation-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// DeviationService wires fetcher, cache, optional store and the deviation
// engine into one synchronous pass per user action: resolve bars (cache →
// store → provider), then compute the derived series fresh. Derived data is
// never cached; only fetched bars are.
// -----------------------------------------------------------------------------

type DeviationService struct {
	Config  *models.MConfig
	Fetcher interfaces.IDataFetcher
	Cache   interfaces.ISeriesCache
	Store   interfaces.IPriceStore // nil when storage is disabled
	Metrics *metrics.Metrics       // nil in tests
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

// Request describes one computation pass. Zero windows fall back to the
// configured defaults (200-day SMA, 5x252-day percentile window).
type Request struct {
	Symbol           string
	Start            time.Time
	End              time.Time
	SmaWindow        int
	PercentileWindow int
}

// Result is the computed series plus its summary, trimmed to the requested
// range (warmup history is fetched but not returned).
type Result struct {
	Series     models.MDeviationSeries
	Summary    models.MDeviationSummary
	HasSummary bool
}

// -----------------------------------------------------------------------------

func NewDeviationService(
	cfg *models.MConfig,
	fetcher interfaces.IDataFetcher,
	seriesCache interfaces.ISeriesCache,
	store interfaces.IPriceStore,
	m *metrics.Metrics,
	log *logger.Logger,
) *DeviationService {
	return &DeviationService{
		Config:  cfg,
		Fetcher: fetcher,
		Cache:   seriesCache,
		Store:   store,
		Metrics: m,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// GetDeviation runs one fetch -> compute pass.
func (s *DeviationService) GetDeviation(ctx context.Context, req Request) (*Result, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	bars, err := s.resolveBars(ctx, req)
	if err != nil {
		return nil, err
	}

	computeStart := time.Now()
	points := analysis.ComputeDeviation(bars, req.SmaWindow, req.PercentileWindow)
	points = analysis.TrimToRange(points, req.Start, req.End)
	if s.Metrics != nil {
		s.Metrics.ComputeDur.Observe(time.Since(computeStart).Seconds())
	}

	result := &Result{
		Series: models.MDeviationSeries{
			Symbol:           req.Symbol,
			SmaWindow:        req.SmaWindow,
			PercentileWindow: req.PercentileWindow,
			Points:           points,
		},
	}
	result.Summary, result.HasSummary = analysis.Summarize(req.Symbol, points)
	return result, nil
}

// -----------------------------------------------------------------------------

func (s *DeviationService) validate(req *Request) error {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		return helpers.NewValidationError("symbol cannot be empty")
	}
	if len(s.Config.Fetcher.AllowedSymbols) > 0 {
		allowed := false
		for _, sym := range s.Config.Fetcher.AllowedSymbols {
			if strings.EqualFold(sym, req.Symbol) {
				allowed = true
				break
			}
		}
		if !allowed {
			return helpers.NewValidationError("symbol %s is not in the allowed list", req.Symbol)
		}
	}

	if req.End.IsZero() {
		req.End = time.Now().UTC()
	}
	if req.Start.IsZero() {
		req.Start, _ = time.Parse("2006-01-02", s.Config.Fetcher.DefaultStart)
	}
	if !req.Start.Before(req.End) {
		return helpers.NewValidationError("start date must be before end date")
	}

	if req.SmaWindow == 0 {
		req.SmaWindow = s.Config.Analysis.SmaWindow
	}
	if req.PercentileWindow == 0 {
		req.PercentileWindow = s.Config.PercentileWindowDays()
	}
	if req.SmaWindow < 2 {
		return helpers.NewValidationError("sma window must be at least 2")
	}
	if req.PercentileWindow < 1 {
		return helpers.NewValidationError("percentile window must be at least 1")
	}
	return nil
}

// -----------------------------------------------------------------------------

// resolveBars finds the price series for the request: series cache first,
// then the persistent store, then the provider. The fetch start is pushed
// back by one SMA window plus one percentile window of trading days so the
// requested range opens with defined values.
func (s *DeviationService) resolveBars(ctx context.Context, req Request) ([]models.MPriceBar, error) {
	cal := utils.GetCalendar(req.Symbol)
	fetchStart := cal.WarmupStart(req.Start, req.SmaWindow+req.PercentileWindow)

	key := cache.Key(req.Symbol, fetchStart.Format("2006-01-02"), req.End.Format("2006-01-02"))

	if bars, ok := s.Cache.Get(key); ok {
		if s.Metrics != nil {
			s.Metrics.CacheHitsTotal.Inc()
		}
		return bars, nil
	}
	if s.Metrics != nil {
		s.Metrics.CacheMissTotal.Inc()
	}

	if bars := s.loadFromStore(req.Symbol, fetchStart, req.End); bars != nil {
		s.Cache.Set(key, bars)
		return bars, nil
	}

	fetchT := time.Now()
	bars, err := s.Fetcher.FetchDailyBars(ctx, req.Symbol, fetchStart, req.End)
	if s.Metrics != nil {
		s.Metrics.FetchDur.Observe(time.Since(fetchT).Seconds())
	}
	if err != nil {
		if s.Metrics != nil {
			if helpers.IsDataUnavailable(err) {
				s.Metrics.FetchesTotal.WithLabelValues("unavailable").Inc()
			} else {
				s.Metrics.FetchesTotal.WithLabelValues("error").Inc()
			}
		}
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.FetchesTotal.WithLabelValues("ok").Inc()
	}

	s.Cache.Set(key, bars)
	if s.Store != nil {
		if err := s.Store.SavePriceBars(bars); err != nil {
			// The store is a cache tier; a failed write only costs a refetch.
			s.Logger.Warning("Failed to persist %d bars for %s: %v", len(bars), req.Symbol, err)
		}
	}

	return bars, nil
}

// -----------------------------------------------------------------------------

// loadFromStore returns stored bars when they plausibly cover the range:
// first bar within a week of the wanted start, last bar within a week of the
// wanted end. Anything thinner falls through to a provider fetch.
func (s *DeviationService) loadFromStore(symbol string, start, end time.Time) []models.MPriceBar {
	if s.Store == nil {
		return nil
	}

	bars, err := s.Store.LoadPriceBars(symbol, start, end)
	if err != nil {
		s.Logger.Warning("Store read failed for %s: %v", symbol, err)
		return nil
	}
	if len(bars) < 2 {
		return nil
	}

	const slack = 7 * 24 * time.Hour
	if bars[0].Date().After(start.Add(slack)) {
		return nil
	}
	if bars[len(bars)-1].Date().Before(end.Add(-slack)) {
		return nil
	}

	if s.Metrics != nil {
		s.Metrics.StoreHitsTotal.Inc()
	}
	return bars
}
