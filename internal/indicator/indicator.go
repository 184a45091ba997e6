// Package indicator provides the pure technical analysis functions used by
// strategy policies and the market data analyzer. All functions take price
// series ordered oldest to newest and are deterministic.
package indicator

import (
	"math"

	"github.com/helios-quant/helios-trading/pkg/errors"
)

// SMA returns the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "sma period must be positive, got %d", period)
	}
	if len(prices) < period {
		return 0, errors.NewInsufficientDataError(period, len(prices), "",
			"not enough data points for sma")
	}

	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}

	return sum / float64(period), nil
}

// EMA returns the exponential moving average over the whole series with the
// given period. The first value seeds the average. Series shorter than
// period are undefined, like SMA.
func EMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "ema period must be positive, got %d", period)
	}
	if len(prices) < period {
		return 0, errors.NewInsufficientDataError(period, len(prices), "",
			"not enough data points for ema")
	}

	multiplier := 2.0 / float64(period+1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = (p-ema)*multiplier + ema
	}

	return ema, nil
}

// RSI returns the relative strength index over the given period. Series
// shorter than period+1 yield the neutral value 50, as does a window with
// zero average loss (avoids a division by zero). A window with gains of
// zero and positive losses returns 0.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}

	var gains, losses float64
	start := len(prices) - period
	for i := start; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 50
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}

// MACDResult holds the MACD line, its signal line, and the histogram.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD computes the moving average convergence divergence. Series shorter
// than slow+signal points return all zeros rather than a partial estimate.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	if len(prices) < slow+signal {
		return MACDResult{}
	}

	// Build the MACD line series over the tail so the signal EMA has
	// real inputs instead of a single point.
	macdSeries := make([]float64, 0, signal)
	for i := len(prices) - signal; i <= len(prices); i++ {
		window := prices[:i]
		if len(window) < slow {
			continue
		}
		fastEMA, err := EMA(window, fast)
		if err != nil {
			return MACDResult{}
		}
		slowEMA, err := EMA(window, slow)
		if err != nil {
			return MACDResult{}
		}
		macdSeries = append(macdSeries, fastEMA-slowEMA)
	}
	if len(macdSeries) == 0 {
		return MACDResult{}
	}

	line := macdSeries[len(macdSeries)-1]
	sig, err := EMA(macdSeries, signal)
	if err != nil {
		return MACDResult{}
	}

	return MACDResult{
		MACD:      line,
		Signal:    sig,
		Histogram: line - sig,
	}
}

// Bands holds Bollinger band values for the latest point of a series.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands returns the bands over the last period prices using the
// given standard deviation multiplier. A series shorter than period
// collapses all three bands onto the latest price.
func BollingerBands(prices []float64, period int, stdDevs float64) Bands {
	if len(prices) == 0 {
		return Bands{}
	}
	if period <= 0 || len(prices) < period {
		last := prices[len(prices)-1]

		return Bands{Upper: last, Middle: last, Lower: last}
	}

	window := prices[len(prices)-period:]
	mean := 0.0
	for _, p := range window {
		mean += p
	}
	mean /= float64(period)

	variance := 0.0
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	return Bands{
		Upper:  mean + stdDevs*std,
		Middle: mean,
		Lower:  mean - stdDevs*std,
	}
}

// ZScore returns how many standard deviations the last price sits from the
// mean of the period prices preceding it. The latest point is excluded from
// the mean and deviation so a fresh spike is measured against its trailing
// context. Zero deviation yields a zero score.
func ZScore(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "zscore period must be positive, got %d", period)
	}
	if len(prices) < period+1 {
		return 0, errors.NewInsufficientDataError(period+1, len(prices), "",
			"not enough data points for zscore")
	}

	last := prices[len(prices)-1]
	window := prices[len(prices)-1-period : len(prices)-1]

	mean := 0.0
	for _, p := range window {
		mean += p
	}
	mean /= float64(period)

	variance := 0.0
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))
	if std == 0 {
		return 0, nil
	}

	return (last - mean) / std, nil
}

// Mean returns the arithmetic mean of the series, 0 for an empty series.
func Mean(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	sum := 0.0
	for _, p := range prices {
		sum += p
	}

	return sum / float64(len(prices))
}

// StdDev returns the population standard deviation of the series.
func StdDev(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	mean := Mean(prices)
	variance := 0.0
	for _, p := range prices {
		d := p - mean
		variance += d * d
	}

	return math.Sqrt(variance / float64(len(prices)))
}
