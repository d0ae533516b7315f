package core

import "math"

// -----------------------------------------------------------------------------

// RollingMean computes the trailing simple moving average over a fixed window.
// Output has the same length as the input; indices with fewer than window
// prior values are NaN (undefined, never zero-filled or forward-filled).
// A NaN input undefines only the windows containing it: once the bad value
// drops out of the window the average resumes.
func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(values) < window {
		return out
	}

	// Running sum over the current stretch of consecutive defined values.
	// A NaN resets the stretch; summing it would poison every later window.
	sum := 0.0
	run := 0
	for i, v := range values {
		if math.IsNaN(v) {
			sum = 0.0
			run = 0
			continue
		}
		sum += v
		run++
		if run > window {
			sum -= values[i-window]
		}
		if run >= window {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// DeviationPct computes (close - sma) / sma * 100 per index. The result is
// NaN where sma is NaN, and also where sma == 0: the guard keeps a degenerate
// average from producing Inf.
func DeviationPct(closes, sma []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		if i >= len(sma) || math.IsNaN(sma[i]) || sma[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (closes[i] - sma[i]) / sma[i] * 100
	}
	return out
}
