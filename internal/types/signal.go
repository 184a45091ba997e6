package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/helios-quant/helios-trading/pkg/errors"
)

// Side is the direction of a proposed or executed trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradingSignal is a proposed trade emitted by a strategy policy.
// It has not passed the risk gate yet; the gate consumes each signal
// exactly once and either approves or rejects it.
type TradingSignal struct {
	ID         string    `yaml:"id" json:"id" validate:"required"`
	AssetID    string    `yaml:"asset_id" json:"asset_id" validate:"required"`
	Symbol     string    `yaml:"symbol" json:"symbol" validate:"required"`
	Side       Side      `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	StrategyID string    `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Time       time.Time `yaml:"time" json:"time" validate:"required"`
	Price      float64   `yaml:"price" json:"price" validate:"required,gt=0"`
	Quantity   float64   `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	// Confidence is the policy's confidence in the signal, in [0, 1].
	Confidence float64 `yaml:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	// SignalStrength measures how strongly the triggering condition fired.
	SignalStrength float64 `yaml:"signal_strength" json:"signal_strength"`
	// RiskScore estimates the riskiness of acting on the signal, higher is riskier.
	RiskScore float64           `yaml:"risk_score" json:"risk_score"`
	Metadata  map[string]string `yaml:"metadata" json:"metadata"`
}

// Validate validates the TradingSignal struct.
func (s *TradingSignal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSignal, "invalid trading signal", err)
	}

	return nil
}
