package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/helios-quant/helios-trading/pkg/errors"
)

// StrategyKind is the closed set of strategy policy variants. Unknown
// kinds are rejected at configuration time, never defaulted.
type StrategyKind string

const (
	StrategyKindTrendFollowing StrategyKind = "TREND_FOLLOWING"
	StrategyKindMeanReversion  StrategyKind = "MEAN_REVERSION"
	StrategyKindMLPredictive   StrategyKind = "ML_PREDICTIVE"
	// The variants below are recognized but have no policy implementation
	// yet. Configuring them yields a policy that never emits signals.
	StrategyKindArbitrage    StrategyKind = "ARBITRAGE"
	StrategyKindMarketMaking StrategyKind = "MARKET_MAKING"
	StrategyKindPairsTrading StrategyKind = "PAIRS_TRADING"
	StrategyKindQuantitative StrategyKind = "QUANTITATIVE"
)

// ParseStrategyKind maps a raw kind string onto the closed variant set.
// Unknown values return an error so misconfigured strategies fail loudly
// instead of silently degrading into a default policy.
func ParseStrategyKind(raw string) (StrategyKind, error) {
	switch StrategyKind(raw) {
	case StrategyKindTrendFollowing,
		StrategyKindMeanReversion,
		StrategyKindMLPredictive,
		StrategyKindArbitrage,
		StrategyKindMarketMaking,
		StrategyKindPairsTrading,
		StrategyKindQuantitative:
		return StrategyKind(raw), nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown strategy kind %q", raw)
	}
}

// Implemented reports whether the kind has a real policy behind it.
func (k StrategyKind) Implemented() bool {
	switch k {
	case StrategyKindTrendFollowing, StrategyKindMeanReversion, StrategyKindMLPredictive:
		return true
	default:
		return false
	}
}

// RiskLimits are the per-strategy limits enforced by the risk gate.
type RiskLimits struct {
	// MaxPositionSize is the maximum notional exposure (quote currency)
	// a strategy may hold in a single asset.
	MaxPositionSize float64 `yaml:"max_position_size" json:"max_position_size" validate:"gt=0"`
	// MaxDrawdownPercent halts new entries once portfolio drawdown exceeds it.
	MaxDrawdownPercent float64 `yaml:"max_drawdown_percent" json:"max_drawdown_percent" validate:"gte=0"`
	// MaxDailyLoss is the realized loss (quote currency) after which the
	// gate rejects every further signal for the rest of the UTC day.
	MaxDailyLoss float64 `yaml:"max_daily_loss" json:"max_daily_loss" validate:"gte=0"`
}

// StrategyConfig is an operator-defined strategy: a policy kind plus its
// numeric parameters and risk limits. The pipeline treats it as read-only.
type StrategyConfig struct {
	ID    string       `yaml:"id" json:"id" validate:"required"`
	Owner string       `yaml:"owner" json:"owner"`
	Name  string       `yaml:"name" json:"name" validate:"required"`
	Kind  StrategyKind `yaml:"kind" json:"kind" validate:"required"`
	// AssetClass restricts the strategy to assets of one class. Empty
	// means the strategy trades every active asset.
	AssetClass string `yaml:"asset_class" json:"asset_class"`
	// Parameters holds the numeric knobs of the policy, such as window
	// sizes and thresholds. Missing knobs fall back to policy defaults.
	Parameters map[string]float64 `yaml:"parameters" json:"parameters"`
	Risk       RiskLimits         `yaml:"risk" json:"risk" validate:"required"`
	// ModelRef points at an externally trained model. Required by the
	// ML-predictive policy, ignored by every other kind.
	ModelRef optional.Option[string] `yaml:"model_ref" json:"model_ref"`
	// SchemaVersion is the config schema version, checked against the
	// engine version at load time.
	SchemaVersion string `yaml:"schema_version" json:"schema_version"`
	Active        bool   `yaml:"active" json:"active"`
	CreatedAt     time.Time
}

// Param returns the named parameter or the given default when absent.
func (c StrategyConfig) Param(name string, def float64) float64 {
	if v, ok := c.Parameters[name]; ok {
		return v
	}

	return def
}

// Validate validates the StrategyConfig struct and its kind.
func (c *StrategyConfig) Validate() error {
	if _, err := ParseStrategyKind(string(c.Kind)); err != nil {
		return err
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config", err)
	}

	return nil
}
