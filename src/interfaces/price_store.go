package interfaces

import (
	"time"

	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IPriceStore defines the contract for the optional persistent tier of the
// fetch cache. Stores hold raw fetched bars only; derived series are always
// recomputed.
// -----------------------------------------------------------------------------

type IPriceStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SavePriceBars upserts a batch of fetched bars. Re-saving identical data
	// is harmless (idempotent writes).
	SavePriceBars(bars []models.MPriceBar) error

	// -----------------------------------------------------------------------------

	// LoadPriceBars returns stored bars for a symbol within [start, end],
	// ordered ascending by timestamp.
	LoadPriceBars(symbol string, start, end time.Time) ([]models.MPriceBar, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes rows fetched before the retention cutoff.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
