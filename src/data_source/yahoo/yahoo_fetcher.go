package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"deviation-dashboard/src/helpers"
	"deviation-dashboard/src/interfaces"
	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
)

const chartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s"

// -----------------------------------------------------------------------------

// YahooFetcher retrieves daily history from the Yahoo Finance v8 chart API.
// Closes are split/dividend adjusted (the adjclose series) so the SMA and
// deviation are computed on a consistent basis across the whole range.
type YahooFetcher struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFetcher(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooFetcher {
	return &YahooFetcher{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "YahooFetcher"),
	}
}

// -----------------------------------------------------------------------------

func (f *YahooFetcher) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchDailyBars fetches [start, end] daily bars for symbol, sorted ascending
// with one bar per trading day.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.MPriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := map[string]string{
		"interval":       "1d",
		"period1":        strconv.FormatInt(start.Unix(), 10),
		"period2":        strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10), // period2 is exclusive
		"events":         "div,split",
		"includePrePost": "false",
	}

	url := fmt.Sprintf(chartURL, symbol)
	respBytes, err := f.Network.Get(url, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return f.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				ExchangeName       string  `json:"exchangeName"`
				InstrumentType     string  `json:"instrumentType"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				DataGranularity    string  `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`  // Pointers to handle null
					Volume []*float64 `json:"volume"` // Pointers to handle null
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (f *YahooFetcher) parseChartResponse(symbol string, data []byte) ([]models.MPriceBar, error) {
	var resp yahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		// "Not Found" and friends mean the symbol/range has nothing for us.
		return nil, helpers.NewDataUnavailable(symbol,
			fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description))
	}

	if len(resp.Chart.Result) == 0 {
		return nil, helpers.NewDataUnavailable(symbol, nil)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, helpers.NewDataUnavailable(symbol, nil)
	}

	quote := result.Indicators.Quote[0]
	if len(result.Timestamp) != len(quote.Close) {
		return nil, fmt.Errorf("data alignment error for %s", symbol)
	}

	// Prefer the adjusted close series when Yahoo provides it.
	var adjusted []*float64
	if len(result.Indicators.AdjClose) > 0 &&
		len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		adjusted = result.Indicators.AdjClose[0].AdjClose
	}

	fetchedAt := time.Now().UTC().Unix()
	seenDay := make(map[int64]bool)
	bars := make([]models.MPriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		closePtr := quote.Close[i]
		if adjusted != nil && adjusted[i] != nil {
			closePtr = adjusted[i]
		}
		if closePtr == nil {
			continue // null slot (holiday padding etc.)
		}

		closeVal := *closePtr
		if closeVal <= 0 {
			f.Logger.Debug("Skipping non-positive close for %s at %d", symbol, ts)
			continue
		}

		volume := 0.0
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		// Normalize to the UTC trading date so each day appears once even if
		// Yahoo returns session-time stamps.
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour).Unix()
		if seenDay[day] {
			continue
		}
		seenDay[day] = true

		bars = append(bars, models.MPriceBar{
			Symbol:    symbol,
			Timestamp: day,
			Close:     closeVal,
			Volume:    volume,
			FetchedAt: fetchedAt,
		})
	}

	if len(bars) == 0 {
		return nil, helpers.NewDataUnavailable(symbol, nil)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp < bars[j].Timestamp
	})

	f.Logger.Info("Fetched %s: %d daily bars [%s -> %s]", symbol, len(bars),
		bars[0].Date().Format("2006-01-02"), bars[len(bars)-1].Date().Format("2006-01-02"))

	return bars, nil
}
