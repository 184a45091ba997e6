package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Asset identifies a tradeable instrument.
type Asset struct {
	ID     string `yaml:"id" json:"id" validate:"required"`
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	// Class groups assets for strategy targeting (e.g., "crypto", "equity").
	Class  string `yaml:"class" json:"class"`
	Active bool   `yaml:"active" json:"active"`
}

// IndicatorValues holds precomputed technical indicators attached to a
// price point by the analyzer. All values refer to the series ending at
// the point they are attached to.
type IndicatorValues struct {
	SMA20          float64 `yaml:"sma_20" json:"sma_20"`
	SMA50          float64 `yaml:"sma_50" json:"sma_50"`
	EMA12          float64 `yaml:"ema_12" json:"ema_12"`
	EMA26          float64 `yaml:"ema_26" json:"ema_26"`
	RSI            float64 `yaml:"rsi" json:"rsi"`
	MACD           float64 `yaml:"macd" json:"macd"`
	MACDSignal     float64 `yaml:"macd_signal" json:"macd_signal"`
	MACDHistogram  float64 `yaml:"macd_histogram" json:"macd_histogram"`
	BollingerUpper float64 `yaml:"bollinger_upper" json:"bollinger_upper"`
	BollingerMid   float64 `yaml:"bollinger_middle" json:"bollinger_middle"`
	BollingerLower float64 `yaml:"bollinger_lower" json:"bollinger_lower"`
	ZScore         float64 `yaml:"zscore" json:"zscore"`
}

// PricePoint is a single observed market data point for an asset.
// Points are immutable once recorded and ordered by Time within an asset.
type PricePoint struct {
	AssetID string    `yaml:"asset_id" json:"asset_id" validate:"required"`
	Symbol  string    `yaml:"symbol" json:"symbol" validate:"required"`
	Time    time.Time `yaml:"time" json:"time" validate:"required"`
	Open    float64   `yaml:"open" json:"open"`
	High    float64   `yaml:"high" json:"high"`
	Low     float64   `yaml:"low" json:"low"`
	Close   float64   `yaml:"close" json:"close" validate:"required,gt=0"`
	Volume  float64   `yaml:"volume" json:"volume"`
	// Indicators is set when the analyzer has enriched this point.
	Indicators optional.Option[IndicatorValues] `yaml:"indicators" json:"indicators"`
}

// Price returns the closing price, the canonical price of the point.
func (p PricePoint) Price() float64 {
	return p.Close
}

// ClosePrices extracts the closing price series (oldest to newest) from
// an ordered window of price points.
func ClosePrices(window []PricePoint) []float64 {
	prices := make([]float64, len(window))
	for i, p := range window {
		prices[i] = p.Close
	}

	return prices
}
