// Package strategy implements the signal generation policies. Each policy
// is a pure evaluation over a price window: no I/O, no portfolio access,
// and no side effects, so the same policy code runs in the live engine
// and the backtest simulator.
package strategy

import (
	"context"

	"github.com/helios-quant/helios-trading/internal/predict"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// Policy evaluates a strategy over a window of price points and proposes
// trades. Implementations must be stateless and safe for concurrent use.
type Policy interface {
	// Kind returns the strategy variant this policy implements.
	Kind() types.StrategyKind
	// Window returns the number of trailing price points the policy
	// wants to see. Shorter windows are evaluated on a best-effort
	// basis and may yield no signals.
	Window(cfg types.StrategyConfig) int
	// Evaluate inspects the window (ordered oldest to newest) and
	// returns zero or more proposed signals for the latest tick.
	// Returned signals carry no ID; the caller assigns one.
	Evaluate(ctx context.Context, cfg types.StrategyConfig, window []types.PricePoint) ([]types.TradingSignal, error)
}

// Deps carries the external collaborators a policy may need.
type Deps struct {
	// Predictor serves model inference for the ML-predictive policy.
	// May be nil when no ML strategies are configured.
	Predictor predict.Predictor
}

// NewPolicy builds the policy for a strategy kind. The kind set is closed:
// recognized but unimplemented kinds get a policy that never signals, and
// unknown kinds are an error.
func NewPolicy(kind types.StrategyKind, deps Deps) (Policy, error) {
	switch kind {
	case types.StrategyKindTrendFollowing:
		return &trendFollowingPolicy{}, nil
	case types.StrategyKindMeanReversion:
		return &meanReversionPolicy{}, nil
	case types.StrategyKindMLPredictive:
		return &mlPredictivePolicy{predictor: deps.Predictor}, nil
	case types.StrategyKindArbitrage,
		types.StrategyKindMarketMaking,
		types.StrategyKindPairsTrading,
		types.StrategyKindQuantitative:
		return &unsupportedPolicy{kind: kind}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown strategy kind %q", kind)
	}
}

// Default confidence, strength, and risk for the rule-based policies.
// The ML policy derives these from the model output instead.
const (
	ruleConfidence = 0.8
	ruleStrength   = 0.8
	ruleRiskScore  = 0.3
)

// newSignal builds a proposed signal for the latest point of the window,
// sized so the full position limit is spent at the current price.
func newSignal(cfg types.StrategyConfig, point types.PricePoint, side types.Side, confidence, strength, risk float64) types.TradingSignal {
	quantity := 0.0
	if point.Close > 0 {
		quantity = cfg.Risk.MaxPositionSize / point.Close
	}

	return types.TradingSignal{
		AssetID:        point.AssetID,
		Symbol:         point.Symbol,
		Side:           side,
		StrategyID:     cfg.ID,
		Time:           point.Time,
		Price:          point.Close,
		Quantity:       quantity,
		Confidence:     confidence,
		SignalStrength: strength,
		RiskScore:      risk,
		Metadata:       map[string]string{"strategy_kind": string(cfg.Kind)},
	}
}

// unsupportedPolicy stands in for recognized kinds that have no
// implementation yet. It evaluates to nothing rather than failing, so a
// mixed registry keeps running.
type unsupportedPolicy struct {
	kind types.StrategyKind
}

func (p *unsupportedPolicy) Kind() types.StrategyKind {
	return p.kind
}

func (p *unsupportedPolicy) Window(_ types.StrategyConfig) int {
	return 0
}

func (p *unsupportedPolicy) Evaluate(_ context.Context, _ types.StrategyConfig, _ []types.PricePoint) ([]types.TradingSignal, error) {
	return nil, nil
}
