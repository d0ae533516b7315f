package interfaces

import "deviation-dashboard/src/models"

// -----------------------------------------------------------------------------
// ISeriesCache is the keyed read-through cache of fetched price series.
// Keys identify (symbol, range); entries expire by TTL. Implementations must
// be safe for concurrent readers; writes are idempotent, so a lost race on
// Set simply overwrites equivalent data.
// -----------------------------------------------------------------------------

type ISeriesCache interface {

	// Get returns the cached bars for key, or false when absent or expired.
	Get(key string) ([]models.MPriceBar, bool)

	// -----------------------------------------------------------------------------

	// Set stores bars under key with the cache's configured TTL.
	Set(key string, bars []models.MPriceBar)

	// -----------------------------------------------------------------------------

	// Delete drops a single entry.
	Delete(key string)

	// -----------------------------------------------------------------------------

	// Len reports the number of live entries (expired entries may be counted
	// until evicted).
	Len() int
}
