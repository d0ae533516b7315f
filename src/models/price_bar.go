package models

import "time"

// MPriceBar represents one daily bar of adjusted close data for a symbol.
// Sequences of bars are ordered by timestamp, one bar per trading day,
// and are never mutated after the fetch that produced them.
type MPriceBar struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"` // unix seconds, start of trading day
	Close     float64 `json:"close"`     // adjusted close
	Volume    float64 `json:"volume"`
	FetchedAt int64   `json:"fetched_at"`
}

// -----------------------------------------------------------------------------

// Date returns the bar's calendar date in UTC.
func (b MPriceBar) Date() time.Time {
	return time.Unix(b.Timestamp, 0).UTC()
}
