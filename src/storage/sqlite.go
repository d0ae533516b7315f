package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
)

// SQLite batch constants
const (
	sqliteMaxVars   = 32000
	paramsPerRow    = 5
	sqliteBatchSize = sqliteMaxVars / paramsPerRow // ~6400 rows
)

// -----------------------------------------------------------------------------

// SQLiteStore persists fetched price bars so restarts do not refetch years of
// history. It stores raw bars only; derived series are always recomputed.
type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS price_bars (
			symbol TEXT,
			timestamp INTEGER,
			close REAL,
			volume REAL,
			fetched_at INTEGER,
			PRIMARY KEY (symbol, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create price_bars: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// SavePriceBars upserts bars in batches under the sqlite variable limit.
// Replaying the same bars overwrites rows with equivalent data.
func (d *SQLiteStore) SavePriceBars(bars []models.MPriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	for offset := 0; offset < len(bars); offset += sqliteBatchSize {
		end := offset + sqliteBatchSize
		if end > len(bars) {
			end = len(bars)
		}
		batch := bars[offset:end]

		placeholders := make([]string, 0, len(batch))
		args := make([]interface{}, 0, len(batch)*paramsPerRow)
		for _, b := range batch {
			placeholders = append(placeholders, "(?, ?, ?, ?, ?)")
			args = append(args, b.Symbol, b.Timestamp, b.Close, b.Volume, b.FetchedAt)
		}

		query := fmt.Sprintf(
			"INSERT OR REPLACE INTO price_bars (symbol, timestamp, close, volume, fetched_at) VALUES %s",
			strings.Join(placeholders, ","),
		)
		if _, err := d.DB.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to save price bars: %w", err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) LoadPriceBars(symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	rows, err := d.DB.Query(
		`SELECT symbol, timestamp, close, volume, fetched_at
		 FROM price_bars
		 WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC`,
		symbol, start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load price bars: %w", err)
	}
	defer rows.Close()

	var bars []models.MPriceBar
	for rows.Next() {
		var b models.MPriceBar
		if err := rows.Scan(&b.Symbol, &b.Timestamp, &b.Close, &b.Volume, &b.FetchedAt); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// -----------------------------------------------------------------------------

// CleanupOldData drops rows whose fetch is older than the retention window,
// forcing a refresh on next access.
func (d *SQLiteStore) CleanupOldData() error {
	cutoff := time.Now().UTC().AddDate(0, 0, -d.Config.Storage.RetentionDays).Unix()
	res, err := d.DB.Exec("DELETE FROM price_bars WHERE fetched_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.Logger.Info("Cleaned up %d stale price bars", n)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
