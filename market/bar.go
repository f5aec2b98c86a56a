package market

import "time"

// Bar represents one OHLCV candle for a fixed interval.
type Bar struct {
	time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether the bar carries usable prices: a positive close and
// no negative price or volume fields.
func (b Bar) Valid() bool {
	if b.Close <= 0 {
		return false
	}
	return b.Open >= 0 && b.High >= 0 && b.Low >= 0 && b.Volume >= 0
}

// KlineHeaders are the columns of a cached kline CSV file, in the order the
// exchange returns them.
var KlineHeaders = []string{
	"open_ts",
	"open",
	"high",
	"low",
	"close",
	"vol",
	"close_ts",
	"quote_asset_vol",
	"num_trades",
	"taker_buy_base_asset_volume",
	"taker_buy_quote_asset_volume",
	"reserved",
}
