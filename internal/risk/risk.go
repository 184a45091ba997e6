// Package risk implements the gate between proposed signals and trade
// execution. Every signal passes through exactly one Check call; a
// rejection is terminal and the signal is never retried.
package risk

import (
	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/types"
)

// Rejection reasons reported on gate decisions.
const (
	ReasonPositionLimit  = "position_limit_exceeded"
	ReasonDailyLossLimit = "daily_loss_limit_reached"
	ReasonDrawdownLimit  = "drawdown_limit_exceeded"
	ReasonLowQuality     = "signal_quality_below_floor"
)

// Gate config defaults. Signals below the confidence floor or above the
// risk ceiling are treated as too weak to act on.
const (
	DefaultConfidenceFloor = 0.5
	DefaultRiskCeiling     = 0.9
)

// Decision is the gate's verdict on one signal.
type Decision struct {
	Approved bool
	// Reason is a stable machine-readable rejection reason, empty on approval.
	Reason string
	// Message is a human-readable explanation of the rejection.
	Message string
}

// Gate checks proposed signals against strategy risk limits and the
// current portfolio snapshot. The gate itself is stateless; all state it
// judges against arrives in the snapshot.
type Gate struct {
	confidenceFloor float64
	riskCeiling     float64
	log             *logger.Logger
}

// NewGate creates a gate with the given quality thresholds. Zero values
// fall back to the defaults.
func NewGate(confidenceFloor, riskCeiling float64, log *logger.Logger) *Gate {
	if confidenceFloor <= 0 {
		confidenceFloor = DefaultConfidenceFloor
	}
	if riskCeiling <= 0 {
		riskCeiling = DefaultRiskCeiling
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Gate{
		confidenceFloor: confidenceFloor,
		riskCeiling:     riskCeiling,
		log:             log,
	}
}

// Check evaluates one signal against the strategy's limits and a
// portfolio snapshot taken just before execution. Checks run in a fixed
// order and the first failure decides.
func (g *Gate) Check(sig types.TradingSignal, limits types.RiskLimits, snap types.PortfolioSnapshot) Decision {
	if d := g.checkPositionLimit(sig, limits, snap); !d.Approved {
		return g.logged(sig, d)
	}
	if d := g.checkDailyLoss(sig, limits, snap); !d.Approved {
		return g.logged(sig, d)
	}
	if d := g.checkDrawdown(sig, limits, snap); !d.Approved {
		return g.logged(sig, d)
	}
	if d := g.checkQuality(sig); !d.Approved {
		return g.logged(sig, d)
	}

	return Decision{Approved: true}
}

// checkPositionLimit rejects buys whose notional, added to the current
// exposure in the asset, would exceed the strategy's position limit.
// Sells reduce exposure and always pass this check.
func (g *Gate) checkPositionLimit(sig types.TradingSignal, limits types.RiskLimits, snap types.PortfolioSnapshot) Decision {
	if sig.Side != types.SideBuy || limits.MaxPositionSize <= 0 {
		return Decision{Approved: true}
	}

	notional := sig.Price * sig.Quantity
	exposure := snap.Exposure(sig.AssetID)
	// A small tolerance absorbs float noise from quantity sizing.
	if exposure+notional > limits.MaxPositionSize*(1+1e-9) {
		return Decision{
			Reason: ReasonPositionLimit,
			Message: "buy would exceed max position size: " +
				"existing exposure plus order notional is over the limit",
		}
	}

	return Decision{Approved: true}
}

func (g *Gate) checkDailyLoss(sig types.TradingSignal, limits types.RiskLimits, snap types.PortfolioSnapshot) Decision {
	if limits.MaxDailyLoss <= 0 {
		return Decision{Approved: true}
	}
	if snap.DailyLoss >= limits.MaxDailyLoss {
		return Decision{
			Reason:  ReasonDailyLossLimit,
			Message: "daily realized loss limit reached, trading halted until next UTC day",
		}
	}

	return Decision{Approved: true}
}

// checkDrawdown halts new entries once portfolio drawdown from the peak
// exceeds the strategy's limit. Sells reduce exposure and always pass.
func (g *Gate) checkDrawdown(sig types.TradingSignal, limits types.RiskLimits, snap types.PortfolioSnapshot) Decision {
	if sig.Side != types.SideBuy || limits.MaxDrawdownPercent <= 0 {
		return Decision{Approved: true}
	}
	if snap.Drawdown*100 >= limits.MaxDrawdownPercent {
		return Decision{
			Reason:  ReasonDrawdownLimit,
			Message: "portfolio drawdown exceeds the strategy's limit, new entries halted",
		}
	}

	return Decision{Approved: true}
}

func (g *Gate) checkQuality(sig types.TradingSignal) Decision {
	if sig.Confidence < g.confidenceFloor || sig.RiskScore > g.riskCeiling {
		return Decision{
			Reason:  ReasonLowQuality,
			Message: "signal confidence or risk score outside acceptable bounds",
		}
	}

	return Decision{Approved: true}
}

func (g *Gate) logged(sig types.TradingSignal, d Decision) Decision {
	g.log.Info("signal rejected by risk gate",
		zap.String("signal_id", sig.ID),
		zap.String("strategy_id", sig.StrategyID),
		zap.String("symbol", sig.Symbol),
		zap.String("side", string(sig.Side)),
		zap.String("reason", d.Reason))

	return d
}
