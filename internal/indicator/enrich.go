package indicator

import (
	"github.com/helios-quant/helios-trading/internal/types"
)

// Default periods used when enriching price points. They match the
// conventional settings traders expect for each indicator.
const (
	DefaultSMAShort     = 20
	DefaultSMALong      = 50
	DefaultEMAFast      = 12
	DefaultEMASlow      = 26
	DefaultRSIPeriod    = 14
	DefaultMACDSignal   = 9
	DefaultBandPeriod   = 20
	DefaultBandStdDevs  = 2.0
	DefaultZScorePeriod = 20
)

// Enrich computes the standard indicator set for the latest point of the
// series. Indicators whose window exceeds the series length are left at
// their zero value (or neutral value for RSI), never estimated.
func Enrich(prices []float64) types.IndicatorValues {
	var v types.IndicatorValues

	if sma, err := SMA(prices, DefaultSMAShort); err == nil {
		v.SMA20 = sma
	}
	if sma, err := SMA(prices, DefaultSMALong); err == nil {
		v.SMA50 = sma
	}
	if ema, err := EMA(prices, DefaultEMAFast); err == nil {
		v.EMA12 = ema
	}
	if ema, err := EMA(prices, DefaultEMASlow); err == nil {
		v.EMA26 = ema
	}

	v.RSI = RSI(prices, DefaultRSIPeriod)

	macd := MACD(prices, DefaultEMAFast, DefaultEMASlow, DefaultMACDSignal)
	v.MACD = macd.MACD
	v.MACDSignal = macd.Signal
	v.MACDHistogram = macd.Histogram

	bands := BollingerBands(prices, DefaultBandPeriod, DefaultBandStdDevs)
	v.BollingerUpper = bands.Upper
	v.BollingerMid = bands.Middle
	v.BollingerLower = bands.Lower

	if z, err := ZScore(prices, DefaultZScorePeriod); err == nil {
		v.ZScore = z
	}

	return v
}
