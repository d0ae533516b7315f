package storage

import (
	"path/filepath"
	"testing"
	"time"

	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()

	cfg := &models.MConfig{
		Storage: models.MStorageConfig{
			Enabled:       true,
			DBType:        "sqlite",
			DBPath:        filepath.Join(t.TempDir(), "test.db"),
			RetentionDays: 30,
		},
	}
	store, err := NewSQLiteStore(cfg, logger.NewLogger("ERROR", "storage-test"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func storedBars(symbol string, start time.Time, n int, fetchedAt int64) []models.MPriceBar {
	bars := make([]models.MPriceBar, n)
	for i := range bars {
		bars[i] = models.MPriceBar{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i).Unix(),
			Close:     100 + float64(i),
			Volume:    1000,
			FetchedAt: fetchedAt,
		}
	}
	return bars
}

// -----------------------------------------------------------------------------
// Save / Load
// -----------------------------------------------------------------------------

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC().Unix()

	if err := store.SavePriceBars(storedBars("QQQ", start, 5, now)); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.LoadPriceBars("QQQ", start, start.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(loaded) != 5 {
		t.Fatalf("got %d bars, want 5", len(loaded))
	}
	for i := 1; i < len(loaded); i++ {
		if loaded[i].Timestamp <= loaded[i-1].Timestamp {
			t.Fatal("bars not ascending")
		}
	}
	if loaded[0].Close != 100 || loaded[4].Close != 104 {
		t.Errorf("closes mangled: %+v", loaded)
	}
}

func TestSQLiteStore_RangeFilterAndSymbolIsolation(t *testing.T) {
	store := testStore(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC().Unix()

	store.SavePriceBars(storedBars("QQQ", start, 10, now))
	store.SavePriceBars(storedBars("SPY", start, 10, now))

	loaded, err := store.LoadPriceBars("QQQ", start.AddDate(0, 0, 2), start.AddDate(0, 0, 5))
	if err != nil {
		t.Fatal(err)
	}

	if len(loaded) != 4 {
		t.Errorf("range filter: got %d bars, want 4", len(loaded))
	}
	for _, b := range loaded {
		if b.Symbol != "QQQ" {
			t.Errorf("foreign symbol leaked: %s", b.Symbol)
		}
	}
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	store := testStore(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC().Unix()

	store.SavePriceBars(storedBars("QQQ", start, 3, now))

	// Same days again with revised closes.
	revised := storedBars("QQQ", start, 3, now)
	for i := range revised {
		revised[i].Close = 200 + float64(i)
	}
	if err := store.SavePriceBars(revised); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, _ := store.LoadPriceBars("QQQ", start, start.AddDate(0, 0, 5))
	if len(loaded) != 3 {
		t.Fatalf("duplicate rows after upsert: %d", len(loaded))
	}
	if loaded[0].Close != 200 {
		t.Errorf("replay did not replace: close=%f", loaded[0].Close)
	}
}

func TestSQLiteStore_EmptySaveIsNoOp(t *testing.T) {
	store := testStore(t)
	if err := store.SavePriceBars(nil); err != nil {
		t.Errorf("empty save errored: %v", err)
	}
}

// -----------------------------------------------------------------------------
// CleanupOldData
// -----------------------------------------------------------------------------

func TestSQLiteStore_CleanupDropsStaleFetches(t *testing.T) {
	store := testStore(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	stale := time.Now().UTC().AddDate(0, 0, -60).Unix()
	fresh := time.Now().UTC().Unix()

	store.SavePriceBars(storedBars("OLD", start, 3, stale))
	store.SavePriceBars(storedBars("NEW", start, 3, fresh))

	if err := store.CleanupOldData(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	old, _ := store.LoadPriceBars("OLD", start, start.AddDate(0, 0, 5))
	if len(old) != 0 {
		t.Errorf("stale rows survived: %d", len(old))
	}
	kept, _ := store.LoadPriceBars("NEW", start, start.AddDate(0, 0, 5))
	if len(kept) != 3 {
		t.Errorf("fresh rows dropped: %d", len(kept))
	}
}
