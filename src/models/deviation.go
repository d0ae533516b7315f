package models

// -----------------------------------------------------------------------------
// Derived series produced by the deviation engine. Pointer fields are nil
// where the value is undefined (not enough history, or the zero-SMA guard
// fired). The engine never emits Inf or NaN through these fields.
// -----------------------------------------------------------------------------

// MDeviationPoint is one derived point: close price, rolling SMA, percentage
// deviation of close from the SMA, and the trailing-window percentile rank of
// that deviation (0-100).
type MDeviationPoint struct {
	Timestamp    int64    `json:"timestamp"`
	Close        float64  `json:"close"`
	Sma          *float64 `json:"sma,omitempty"`
	DeviationPct *float64 `json:"deviation_pct,omitempty"`
	Percentile   *float64 `json:"percentile,omitempty"`
}

// -----------------------------------------------------------------------------

// MDeviationSeries bundles a computed series with the parameters that
// produced it. Recomputed wholesale whenever inputs change.
type MDeviationSeries struct {
	Symbol           string            `json:"symbol"`
	SmaWindow        int               `json:"sma_window"`
	PercentileWindow int               `json:"percentile_window"` // trading days
	Points           []MDeviationPoint `json:"points"`
}

// -----------------------------------------------------------------------------

// Status labels for the latest percentile reading, matching the dashboard's
// 80/20 bands.
const (
	StatusOverheated  = "overheated"  // percentile > 80
	StatusOpportunity = "opportunity" // percentile < 20
	StatusNeutral     = "neutral"
)

// MDeviationSummary is the textual summary shown next to the chart: the most
// recent fully-defined reading for a symbol.
type MDeviationSummary struct {
	Symbol       string  `json:"symbol"`
	Date         string  `json:"date"` // YYYY-MM-DD
	Close        float64 `json:"close"`
	Sma          float64 `json:"sma"`
	DeviationPct float64 `json:"deviation_pct"`
	Percentile   float64 `json:"percentile"`
	Status       string  `json:"status"`
}
