package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// PostgresStore is the shared-database variant of the price store, for
// deployments where several dashboard instances reuse one fetch cache.
type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS price_bars (
			symbol TEXT,
			timestamp BIGINT,
			close DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			fetched_at BIGINT,
			PRIMARY KEY (symbol, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create price_bars: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SavePriceBars(bars []models.MPriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(bars))
	args := make([]interface{}, 0, len(bars)*5)
	for i, b := range bars {
		base := i * 5
		placeholders = append(placeholders,
			fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, b.Symbol, b.Timestamp, b.Close, b.Volume, b.FetchedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO price_bars (symbol, timestamp, close, volume, fetched_at)
		VALUES %s
		ON CONFLICT (symbol, timestamp)
		DO UPDATE SET close = EXCLUDED.close, volume = EXCLUDED.volume, fetched_at = EXCLUDED.fetched_at
	`, strings.Join(placeholders, ","))

	if _, err := d.DB.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to save price bars: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) LoadPriceBars(symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	rows, err := d.DB.Query(
		`SELECT symbol, timestamp, close, volume, fetched_at
		 FROM price_bars
		 WHERE symbol = $1 AND timestamp >= $2 AND timestamp <= $3
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

func (d *PostgresStore) CleanupOldData() error {
	cutoff := time.Now().UTC().AddDate(0, 0, -d.Config.Storage.RetentionDays).Unix()
	res, err := d.DB.Exec("DELETE FROM price_bars WHERE fetched_at < $1", cutoff)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.Logger.Info("Cleaned up %d stale price bars", n)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
