package strategy

import (
	"context"

	"github.com/helios-quant/helios-trading/internal/indicator"
	"github.com/helios-quant/helios-trading/internal/types"
)

// Trend-following parameter names and defaults.
const (
	paramShortWindow  = "short_window"
	paramLongWindow   = "long_window"
	paramRSIPeriod    = "rsi_period"
	paramRSIThreshold = "rsi_threshold"

	defaultShortWindow  = 10
	defaultLongWindow   = 20
	defaultRSIPeriod    = 14
	defaultRSIThreshold = 70
)

// trendFollowingPolicy signals on moving average crossovers, filtered by
// the RSI of the series leading into the current tick. Only the most
// recent two ticks are compared for the crossover test.
type trendFollowingPolicy struct{}

func (p *trendFollowingPolicy) Kind() types.StrategyKind {
	return types.StrategyKindTrendFollowing
}

func (p *trendFollowingPolicy) Window(cfg types.StrategyConfig) int {
	long := int(cfg.Param(paramLongWindow, defaultLongWindow))
	rsi := int(cfg.Param(paramRSIPeriod, defaultRSIPeriod))

	w := long + 1
	if rsi+2 > w {
		w = rsi + 2
	}

	return w
}

func (p *trendFollowingPolicy) Evaluate(_ context.Context, cfg types.StrategyConfig, window []types.PricePoint) ([]types.TradingSignal, error) {
	if len(window) < 2 {
		return nil, nil
	}

	short := int(cfg.Param(paramShortWindow, defaultShortWindow))
	long := int(cfg.Param(paramLongWindow, defaultLongWindow))
	rsiPeriod := int(cfg.Param(paramRSIPeriod, defaultRSIPeriod))
	rsiThreshold := cfg.Param(paramRSIThreshold, defaultRSIThreshold)
	if short <= 0 || long <= 0 {
		return nil, nil
	}

	prices := types.ClosePrices(window)
	prev := prices[:len(prices)-1]

	curShort := trailingMean(prices, short)
	curLong := trailingMean(prices, long)
	prevShort := trailingMean(prev, short)
	prevLong := trailingMean(prev, long)

	// The RSI filter measures momentum leading into the tick, so the
	// tick that triggers the crossover does not inflate its own filter.
	rsi := indicator.RSI(prev, rsiPeriod)

	latest := window[len(window)-1]

	crossedUp := prevShort <= prevLong && curShort > curLong
	crossedDown := prevShort >= prevLong && curShort < curLong

	switch {
	case crossedUp && rsi < rsiThreshold:
		sig := newSignal(cfg, latest, types.SideBuy, ruleConfidence, ruleStrength, ruleRiskScore)

		return []types.TradingSignal{sig}, nil
	case crossedDown && rsi > 100-rsiThreshold:
		sig := newSignal(cfg, latest, types.SideSell, ruleConfidence, ruleStrength, ruleRiskScore)

		return []types.TradingSignal{sig}, nil
	default:
		return nil, nil
	}
}

// trailingMean averages the last period prices, shrinking the window when
// the series is shorter so crossovers are detectable during warm-up.
func trailingMean(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		period = len(prices)
	}

	return indicator.Mean(prices[len(prices)-period:])
}
