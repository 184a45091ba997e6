package backtest

import (
	"math"

	"github.com/helios-quant/helios-trading/internal/types"
)

// tradingDaysPerYear scales per-step return statistics to annual figures.
const tradingDaysPerYear = 252

// computeStats derives the summary metrics of a run from its equity
// curve and trade list.
func computeStats(initialCapital float64, curve []types.EquityPoint, trades []types.Trade) types.BacktestStats {
	stats := types.BacktestStats{}

	if initialCapital > 0 && len(curve) > 0 {
		final := curve[len(curve)-1].Equity
		stats.TotalReturn = (final - initialCapital) / initialCapital
	}

	returns := stepReturns(curve)
	if len(returns) > 1 {
		mean := 0.0
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))

		variance := 0.0
		for _, r := range returns {
			d := r - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(len(returns)))

		stats.AnnualizedVolatility = std * math.Sqrt(tradingDaysPerYear)
		if std > 0 {
			stats.SharpeRatio = mean / std * math.Sqrt(tradingDaysPerYear)
		}
	}

	stats.MaxDrawdown = maxDrawdown(curve)

	wins, losses := matchTrades(trades)
	stats.WinningTrades = wins
	stats.LosingTrades = losses
	if wins+losses > 0 {
		stats.WinRate = float64(wins) / float64(wins+losses)
	}

	for _, t := range trades {
		if t.Status != types.TradeStatusFilled {
			continue
		}
		stats.TotalTrades++
		stats.TotalCommission += t.Commission
	}

	return stats
}

// stepReturns converts an equity curve into per-step fractional returns.
func stepReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	return returns
}

// maxDrawdown returns the largest decline from a running equity peak, as
// a fraction of that peak.
func maxDrawdown(curve []types.EquityPoint) float64 {
	peak := 0.0
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > worst {
				worst = dd
			}
		}
	}

	return worst
}

// lot is an open buy awaiting a matching sell.
type lot struct {
	quantity float64
	price    float64
}

// matchTrades pairs sells against the earliest unmatched buys on the
// same asset (FIFO lot matching) and counts winning and losing round
// trips. A sell spanning several lots counts once, by its net profit
// across the quantity it closes. Commissions are not attributed to
// individual round trips.
func matchTrades(trades []types.Trade) (wins, losses int) {
	open := make(map[string][]lot)

	for _, t := range trades {
		if t.Status != types.TradeStatusFilled {
			continue
		}

		switch t.Side {
		case types.SideBuy:
			open[t.AssetID] = append(open[t.AssetID], lot{quantity: t.Quantity, price: t.Price})

		case types.SideSell:
			remaining := t.Quantity
			profit := 0.0
			matched := false
			lots := open[t.AssetID]
			for len(lots) > 0 && remaining > 0 {
				l := &lots[0]
				q := math.Min(l.quantity, remaining)
				profit += (t.Price - l.price) * q
				l.quantity -= q
				remaining -= q
				matched = true
				if l.quantity <= 1e-12 {
					lots = lots[1:]
				}
			}
			open[t.AssetID] = lots

			if !matched {
				continue
			}
			if profit > 0 {
				wins++
			} else {
				losses++
			}
		}
	}

	return wins, losses
}
