package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers trading-day questions for a symbol's venue using
// scmhub/calendar, with a Mon-Fri fallback when the MIC is unknown.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar maps a ticker suffix to an exchange calendar (ISO 10383 MIC).
// US listings (no suffix) use NYSE.
func GetCalendar(symbol string) *TradingCalendar {
	mic := "xnys"
	switch {
	case strings.HasSuffix(symbol, ".L"):
		mic = "xlon"
	case strings.HasSuffix(symbol, ".PA"):
		mic = "xpar"
	case strings.HasSuffix(symbol, ".DE"):
		mic = "xfra"
	case strings.HasSuffix(symbol, ".T"):
		mic = "xtks"
	case strings.HasSuffix(symbol, ".HK"):
		mic = "xhkg"
	case strings.HasSuffix(symbol, ".AX"):
		mic = "xasx"
	case strings.HasSuffix(symbol, ".TO"):
		mic = "xtse"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether the market is open on the given civil date.
// The year/month/day of the input is kept as-is; converting the instant into
// the exchange timezone would shift midnight-UTC dates onto the previous day.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	// Noon keeps DST transitions away from the day boundary.
	local := time.Date(y, m, d, 12, 0, 0, 0, loc)

	if tc.Fallback {
		return isWeekday(local)
	}
	// IsBusinessDay panics outside the calendar's loaded year range, and a
	// long warmup walk (SMA plus percentile windows) crosses that horizon.
	// Holiday data does not exist out there either, so use the weekday rule.
	if start, end := tc.Calendar.Years(); local.Year() < start || local.Year() > end {
		return isWeekday(local)
	}
	return tc.Calendar.IsBusinessDay(local)
}

func isWeekday(t time.Time) bool {
	weekday := t.Weekday()
	return weekday != time.Saturday && weekday != time.Sunday
}

// -----------------------------------------------------------------------------

// WarmupStart walks back from start until tradingDays trading days have been
// skipped. Fetching from the returned date gives the deviation engine enough
// history to emit defined SMA and percentile values at the requested start.
func (tc *TradingCalendar) WarmupStart(start time.Time, tradingDays int) time.Time {
	d := start
	remaining := tradingDays
	// Hard bound so a broken calendar cannot loop forever: trading days are
	// at least ~2/3 of calendar days plus holiday slack.
	for limit := tradingDays*2 + 30; remaining > 0 && limit > 0; limit-- {
		d = d.AddDate(0, 0, -1)
		if tc.IsTradingDay(d) {
			remaining--
		}
	}
	return d
}

// -----------------------------------------------------------------------------

// CountTradingDays returns the number of trading days in [start, end].
func (tc *TradingCalendar) CountTradingDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if tc.IsTradingDay(d) {
			count++
		}
	}
	return count
}
