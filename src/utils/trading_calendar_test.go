package utils

import (
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// GetCalendar
// -----------------------------------------------------------------------------

func TestGetCalendar_SuffixMapping(t *testing.T) {
	// Plain US tickers and every mapped suffix must resolve to a usable
	// calendar; unknown suffixes fall back to NYSE.
	for _, symbol := range []string{"QQQ", "VOD.L", "AIR.PA", "SAP.DE", "7203.T", "0700.HK", "BHP.AX", "RY.TO", "XYZ.UNKNOWN"} {
		tc := GetCalendar(symbol)
		if tc == nil {
			t.Fatalf("%s: nil calendar", symbol)
		}
		if tc.Timezone == nil {
			t.Errorf("%s: calendar has no timezone", symbol)
		}
	}
}

// -----------------------------------------------------------------------------
// IsTradingDay
// -----------------------------------------------------------------------------

func TestIsTradingDay_Weekends(t *testing.T) {
	tc := GetCalendar("QQQ")

	saturday := time.Date(2024, 7, 6, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 7, 7, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 7, 8, 12, 0, 0, 0, time.UTC)

	if tc.IsTradingDay(saturday) {
		t.Error("Saturday reported as a trading day")
	}
	if tc.IsTradingDay(sunday) {
		t.Error("Sunday reported as a trading day")
	}
	if !tc.IsTradingDay(monday) {
		t.Error("a regular Monday reported as closed")
	}
}

func TestIsTradingDay_OutsideCalendarYears(t *testing.T) {
	tc := GetCalendar("QQQ")

	// Dates far outside the exchange calendar's loaded years must answer by
	// weekday instead of panicking.
	saturday := time.Date(1990, 6, 2, 0, 0, 0, 0, time.UTC)
	monday := time.Date(1990, 6, 4, 0, 0, 0, 0, time.UTC)

	if tc.IsTradingDay(saturday) {
		t.Error("a 1990 Saturday reported as a trading day")
	}
	if !tc.IsTradingDay(monday) {
		t.Error("a 1990 Monday reported as closed")
	}
}

// -----------------------------------------------------------------------------
// CountTradingDays
// -----------------------------------------------------------------------------

func TestCountTradingDays_PlainWeek(t *testing.T) {
	tc := GetCalendar("QQQ")

	// Mon 2024-07-08 through Fri 2024-07-12, no US holiday.
	start := time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC)

	if got := tc.CountTradingDays(start, end); got != 5 {
		t.Errorf("got %d trading days, want 5", got)
	}
}

func TestCountTradingDays_ReversedRange(t *testing.T) {
	tc := GetCalendar("QQQ")
	start := time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)

	if got := tc.CountTradingDays(start, end); got != 0 {
		t.Errorf("reversed range: got %d, want 0", got)
	}
}

// -----------------------------------------------------------------------------
// WarmupStart
// -----------------------------------------------------------------------------

func TestWarmupStart_WalksBackTradingDays(t *testing.T) {
	tc := GetCalendar("QQQ")
	start := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	warmup := tc.WarmupStart(start, 10)

	if !warmup.Before(start) {
		t.Fatal("warmup start is not before the requested start")
	}
	// The walk stops on the 10th trading day back, so [warmup, start) holds
	// exactly 10 trading days.
	if got := tc.CountTradingDays(warmup, start.AddDate(0, 0, -1)); got != 10 {
		t.Errorf("trading days in warmup span: got %d, want 10", got)
	}
}

func TestWarmupStart_ZeroDays(t *testing.T) {
	tc := GetCalendar("QQQ")
	start := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	if got := tc.WarmupStart(start, 0); !got.Equal(start) {
		t.Errorf("zero warmup moved the start: %v", got)
	}
}

func TestWarmupStart_LongWindowCrossesCalendarYears(t *testing.T) {
	tc := GetCalendar("QQQ")
	start := time.Now().UTC()

	// The default windows add up to 1460 trading days, roughly 5.8 calendar
	// years. The walk leaves the exchange calendar's loaded year range and
	// must keep going on the weekday rule.
	warmup := tc.WarmupStart(start, 1460)

	if !warmup.Before(start.AddDate(-5, 0, 0)) {
		t.Errorf("warmup %v did not reach past the calendar horizon", warmup)
	}
	if got := tc.CountTradingDays(warmup, start.AddDate(0, 0, -1)); got != 1460 {
		t.Errorf("trading days in warmup span: got %d, want 1460", got)
	}
}

func TestWarmupStart_SpansWeekend(t *testing.T) {
	tc := GetCalendar("QQQ")
	// Monday: 3 trading days back must cross the weekend into Wednesday.
	start := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	warmup := tc.WarmupStart(start, 3)
	want := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	if !warmup.Equal(want) {
		t.Errorf("got %v, want %v", warmup, want)
	}
}
