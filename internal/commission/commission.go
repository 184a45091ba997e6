// Package commission computes trading fees. Both the live executor and
// the backtest simulator charge through the same interface so simulated
// results carry realistic costs.
package commission

import (
	"github.com/shopspring/decimal"
)

// DefaultRate is the fixed commission rate charged on each side of a
// trade (0.1% of notional).
const DefaultRate = 0.001

// Fee calculates the commission for a fill.
type Fee interface {
	// Calculate returns the commission in quote currency for a fill of
	// the given quantity at the given price.
	Calculate(quantity, price float64) float64
}

// FixedRate charges a flat fraction of traded notional on every fill.
type FixedRate struct {
	rate decimal.Decimal
}

// NewFixedRate creates a fixed-rate fee. Non-positive rates fall back to
// the default rate.
func NewFixedRate(rate float64) *FixedRate {
	if rate <= 0 {
		rate = DefaultRate
	}

	return &FixedRate{rate: decimal.NewFromFloat(rate)}
}

func (f *FixedRate) Calculate(quantity, price float64) float64 {
	fee, _ := decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(price)).
		Mul(f.rate).
		Float64()

	return fee
}

// Zero charges nothing. Useful for frictionless what-if runs.
type Zero struct{}

func NewZero() *Zero {
	return &Zero{}
}

func (z *Zero) Calculate(_, _ float64) float64 {
	return 0
}
