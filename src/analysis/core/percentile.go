package core

import "math"

// -----------------------------------------------------------------------------

// RollingPercentileRank ranks each value against its trailing window of
// window values (itself included), scaled to 0-100. The rank is inclusive:
// ties with the current value count toward the numerator, so a window of
// identical values ranks 100.
//
// An index is defined only when its full trailing window holds defined
// (non-NaN) values; everything else is NaN. With the deviation series this
// means the first defined rank appears one full percentile window after the
// first defined deviation.
func RollingPercentileRank(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(values) < window {
		return out
	}

	// validRun counts consecutive non-NaN values ending at i.
	validRun := 0
	for i, v := range values {
		if math.IsNaN(v) {
			validRun = 0
			continue
		}
		validRun++
		if validRun < window {
			continue
		}

		rank := 0
		for j := i - window + 1; j <= i; j++ {
			if values[j] <= v {
				rank++
			}
		}
		out[i] = float64(rank) / float64(window) * 100
	}
	return out
}

// -----------------------------------------------------------------------------

// PercentileRank ranks value against an arbitrary sample, inclusive of ties.
// Used for one-off summaries; returns NaN for an empty sample.
func PercentileRank(sample []float64, value float64) float64 {
	if len(sample) == 0 {
		return math.NaN()
	}
	rank := 0
	for _, v := range sample {
		if v <= value {
			rank++
		}
	}
	return float64(rank) / float64(len(sample)) * 100
}
