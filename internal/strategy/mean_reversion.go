package strategy

import (
	"context"

	"github.com/helios-quant/helios-trading/internal/indicator"
	"github.com/helios-quant/helios-trading/internal/types"
)

// Mean-reversion parameter names and defaults.
const (
	paramLookback      = "lookback"
	paramZScoreEntry   = "zscore_threshold"
	defaultLookback    = 20
	defaultZScoreEntry = 2.0
)

// meanReversionPolicy signals when the latest price deviates too far from
// its trailing mean. The latest point is excluded from the mean and
// deviation so a fresh spike is measured against undisturbed history.
type meanReversionPolicy struct{}

func (p *meanReversionPolicy) Kind() types.StrategyKind {
	return types.StrategyKindMeanReversion
}

func (p *meanReversionPolicy) Window(cfg types.StrategyConfig) int {
	return int(cfg.Param(paramLookback, defaultLookback)) + 1
}

func (p *meanReversionPolicy) Evaluate(_ context.Context, cfg types.StrategyConfig, window []types.PricePoint) ([]types.TradingSignal, error) {
	lookback := int(cfg.Param(paramLookback, defaultLookback))
	threshold := cfg.Param(paramZScoreEntry, defaultZScoreEntry)
	if lookback <= 0 || len(window) < lookback+1 {
		return nil, nil
	}

	prices := types.ClosePrices(window)
	last := prices[len(prices)-1]
	trail := prices[len(prices)-1-lookback : len(prices)-1]

	mean := indicator.Mean(trail)
	std := indicator.StdDev(trail)

	latest := window[len(window)-1]

	var side types.Side
	if std == 0 {
		// A flat history gives no scale, so any departure from the
		// mean exceeds every threshold.
		switch {
		case last > mean:
			side = types.SideSell
		case last < mean:
			side = types.SideBuy
		default:
			return nil, nil
		}
	} else {
		z := (last - mean) / std
		switch {
		case z > threshold:
			side = types.SideSell
		case z < -threshold:
			side = types.SideBuy
		default:
			return nil, nil
		}
	}

	sig := newSignal(cfg, latest, side, ruleConfidence, ruleStrength, ruleRiskScore)

	return []types.TradingSignal{sig}, nil
}
