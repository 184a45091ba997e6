package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helios-quant/helios-trading/internal/types"
)

func gateSignal(side types.Side, price, quantity float64) types.TradingSignal {
	return types.TradingSignal{
		ID:         "sig-1",
		AssetID:    "asset-1",
		Symbol:     "BTCUSDT",
		Side:       side,
		StrategyID: "strat-1",
		Time:       time.Now().UTC(),
		Price:      price,
		Quantity:   quantity,
		Confidence: 0.8,
		RiskScore:  0.3,
	}
}

func emptySnapshot() types.PortfolioSnapshot {
	return types.PortfolioSnapshot{
		Cash:      10000,
		Equity:    10000,
		Positions: map[string]types.Position{},
	}
}

func TestGateApprovesCleanSignal(t *testing.T) {
	gate := NewGate(0, 0, nil)

	d := gate.Check(gateSignal(types.SideBuy, 100, 10), types.RiskLimits{MaxPositionSize: 2000}, emptySnapshot())
	assert.True(t, d.Approved)
	assert.Empty(t, d.Reason)
}

func TestGateRejectsOversizedBuy(t *testing.T) {
	gate := NewGate(0, 0, nil)

	d := gate.Check(gateSignal(types.SideBuy, 100, 30), types.RiskLimits{MaxPositionSize: 2000}, emptySnapshot())
	assert.False(t, d.Approved)
	assert.Equal(t, ReasonPositionLimit, d.Reason)
}

func TestGateCountsExistingExposure(t *testing.T) {
	gate := NewGate(0, 0, nil)

	snap := emptySnapshot()
	snap.Positions["asset-1"] = types.Position{
		AssetID:   "asset-1",
		Symbol:    "BTCUSDT",
		Quantity:  15,
		LastPrice: 100,
	}

	// 1500 held plus 1000 proposed breaches the 2000 limit.
	d := gate.Check(gateSignal(types.SideBuy, 100, 10), types.RiskLimits{MaxPositionSize: 2000}, snap)
	assert.False(t, d.Approved)
	assert.Equal(t, ReasonPositionLimit, d.Reason)

	// A smaller order still fits.
	d = gate.Check(gateSignal(types.SideBuy, 100, 5), types.RiskLimits{MaxPositionSize: 2000}, snap)
	assert.True(t, d.Approved)
}

func TestGateSellIgnoresPositionLimit(t *testing.T) {
	gate := NewGate(0, 0, nil)

	snap := emptySnapshot()
	snap.Positions["asset-1"] = types.Position{AssetID: "asset-1", Quantity: 100, LastPrice: 100}

	d := gate.Check(gateSignal(types.SideSell, 100, 100), types.RiskLimits{MaxPositionSize: 1000}, snap)
	assert.True(t, d.Approved)
}

func TestGateFullLimitBuyPassesAtExactBoundary(t *testing.T) {
	gate := NewGate(0, 0, nil)

	// Quantity sized as limit/price must pass despite float division.
	limit := 2000.0
	price := 3.0
	d := gate.Check(gateSignal(types.SideBuy, price, limit/price), types.RiskLimits{MaxPositionSize: limit}, emptySnapshot())
	assert.True(t, d.Approved)
}

func TestGateRejectsAfterDailyLossLimit(t *testing.T) {
	gate := NewGate(0, 0, nil)

	snap := emptySnapshot()
	snap.DailyLoss = 500

	d := gate.Check(gateSignal(types.SideBuy, 100, 1), types.RiskLimits{MaxPositionSize: 2000, MaxDailyLoss: 500}, snap)
	assert.False(t, d.Approved)
	assert.Equal(t, ReasonDailyLossLimit, d.Reason)

	snap.DailyLoss = 499
	d = gate.Check(gateSignal(types.SideBuy, 100, 1), types.RiskLimits{MaxPositionSize: 2000, MaxDailyLoss: 500}, snap)
	assert.True(t, d.Approved)
}

func TestGateRejectsLowConfidence(t *testing.T) {
	gate := NewGate(0.6, 0, nil)

	sig := gateSignal(types.SideBuy, 100, 1)
	sig.Confidence = 0.4

	d := gate.Check(sig, types.RiskLimits{MaxPositionSize: 2000}, emptySnapshot())
	assert.False(t, d.Approved)
	assert.Equal(t, ReasonLowQuality, d.Reason)
}

func TestGateRejectsHighRiskScore(t *testing.T) {
	gate := NewGate(0, 0.5, nil)

	sig := gateSignal(types.SideBuy, 100, 1)
	sig.RiskScore = 0.8

	d := gate.Check(sig, types.RiskLimits{MaxPositionSize: 2000}, emptySnapshot())
	assert.False(t, d.Approved)
	assert.Equal(t, ReasonLowQuality, d.Reason)
}

func TestGateCheckOrderPositionLimitFirst(t *testing.T) {
	gate := NewGate(0.6, 0, nil)

	// Signal fails both position limit and confidence floor; the
	// position limit reason wins.
	sig := gateSignal(types.SideBuy, 100, 100)
	sig.Confidence = 0.1

	d := gate.Check(sig, types.RiskLimits{MaxPositionSize: 2000}, emptySnapshot())
	assert.False(t, d.Approved)
	assert.Equal(t, ReasonPositionLimit, d.Reason)
}

func TestGateRejectsBuyBeyondDrawdownLimit(t *testing.T) {
	gate := NewGate(0, 0, nil)

	snap := emptySnapshot()
	snap.Drawdown = 0.25

	limits := types.RiskLimits{MaxPositionSize: 2000, MaxDrawdownPercent: 20}
	d := gate.Check(gateSignal(types.SideBuy, 100, 1), limits, snap)
	assert.False(t, d.Approved)
	assert.Equal(t, ReasonDrawdownLimit, d.Reason)

	// Below the limit the entry is allowed again.
	snap.Drawdown = 0.15
	d = gate.Check(gateSignal(types.SideBuy, 100, 1), limits, snap)
	assert.True(t, d.Approved)
}

func TestGateDrawdownLimitIgnoresSells(t *testing.T) {
	gate := NewGate(0, 0, nil)

	snap := emptySnapshot()
	snap.Drawdown = 0.5
	snap.Positions["asset-1"] = types.Position{AssetID: "asset-1", Quantity: 1, LastPrice: 100}

	limits := types.RiskLimits{MaxPositionSize: 2000, MaxDrawdownPercent: 20}
	d := gate.Check(gateSignal(types.SideSell, 100, 1), limits, snap)
	assert.True(t, d.Approved)
}

func TestGateZeroDrawdownLimitDisablesCheck(t *testing.T) {
	gate := NewGate(0, 0, nil)

	snap := emptySnapshot()
	snap.Drawdown = 0.9

	d := gate.Check(gateSignal(types.SideBuy, 100, 1), types.RiskLimits{MaxPositionSize: 2000}, snap)
	assert.True(t, d.Approved)
}
