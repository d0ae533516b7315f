package analysis

import (
	"math"
	"time"

	"deviation-dashboard/src/analysis/core"
	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Deviation engine: pure transformation from a price-bar sequence to the
// derived SMA / deviation / percentile series. No state, no side effects;
// identical input always yields identical output.
// -----------------------------------------------------------------------------

// ComputeDeviation derives one MDeviationPoint per input bar.
//
// bars must be sorted ascending by timestamp (the fetcher guarantees this).
// smaWindow is the SMA length in trading days (200 on the dashboard);
// percentileWindow is the rank window in trading days. The 5-year default is
// the fixed approximation 5 x 252 = 1260 trading days, matching the tool's
// original rolling window, not a calendar-distance measure.
//
// Fewer than 2 bars is degenerate, not an error: the result is empty.
// Points keep nil fields until their preconditions are met: SMA needs
// smaWindow bars, the percentile needs a full window of defined deviations,
// and a zero SMA or non-positive close leaves the point undefined rather than
// propagating Inf.
func ComputeDeviation(bars []models.MPriceBar, smaWindow, percentileWindow int) []models.MDeviationPoint {
	if len(bars) < 2 {
		return []models.MDeviationPoint{}
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		if b.Close > 0 {
			closes[i] = b.Close
		} else {
			closes[i] = math.NaN()
		}
	}

	sma := core.RollingMean(closes, smaWindow)
	deviation := core.DeviationPct(closes, sma)
	percentile := core.RollingPercentileRank(deviation, percentileWindow)

	points := make([]models.MDeviationPoint, len(bars))
	for i, b := range bars {
		points[i] = models.MDeviationPoint{
			Timestamp:    b.Timestamp,
			Close:        b.Close,
			Sma:          asPtr(sma[i]),
			DeviationPct: asPtr(deviation[i]),
			Percentile:   asPtr(percentile[i]),
		}
	}
	return points
}

// -----------------------------------------------------------------------------

// asPtr maps NaN to nil so undefined values serialize as absent fields.
func asPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// -----------------------------------------------------------------------------

// Summarize extracts the most recent fully-defined point as the textual
// summary shown beside the chart. Returns false when no point has a defined
// percentile yet.
func Summarize(symbol string, points []models.MDeviationPoint) (models.MDeviationSummary, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		if p.Sma == nil || p.DeviationPct == nil || p.Percentile == nil {
			continue
		}
		return models.MDeviationSummary{
			Symbol:       symbol,
			Date:         time.Unix(p.Timestamp, 0).UTC().Format("2006-01-02"),
			Close:        p.Close,
			Sma:          *p.Sma,
			DeviationPct: *p.DeviationPct,
			Percentile:   *p.Percentile,
			Status:       StatusFor(*p.Percentile),
		}, true
	}
	return models.MDeviationSummary{}, false
}

// -----------------------------------------------------------------------------

// StatusFor maps a percentile reading to the dashboard's 80/20 bands.
func StatusFor(percentile float64) string {
	switch {
	case percentile > 80:
		return models.StatusOverheated
	case percentile < 20:
		return models.StatusOpportunity
	default:
		return models.StatusNeutral
	}
}

// -----------------------------------------------------------------------------

// TrimToRange drops points outside [start, end]. The fetcher deliberately
// over-fetches warmup history so the visible range starts with defined
// values; this removes the warmup before rendering.
func TrimToRange(points []models.MDeviationPoint, start, end time.Time) []models.MDeviationPoint {
	lo, hi := start.Unix(), end.Unix()
	out := make([]models.MDeviationPoint, 0, len(points))
	for _, p := range points {
		if p.Timestamp >= lo && p.Timestamp <= hi {
			out = append(out, p)
		}
	}
	return out
}
