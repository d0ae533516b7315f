package interfaces

import (
	"context"
	"time"

	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IDataFetcher is the contract for retrieving daily price history from an
// external market data provider.
// -----------------------------------------------------------------------------

type IDataFetcher interface {

	// Name returns the unique identifier of the provider
	Name() string

	// -----------------------------------------------------------------------------

	// FetchDailyBars retrieves daily adjusted-close bars for a symbol over
	// [start, end], ordered ascending by date with no duplicates. Returns a
	// DataUnavailableError when the symbol is unknown or the provider has no
	// rows for the range.
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error)
}
