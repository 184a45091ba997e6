package types

import (
	"time"
)

// TradeStatus is the terminal state of an executed (or rejected) trade.
type TradeStatus string

const (
	TradeStatusFilled   TradeStatus = "FILLED"
	TradeStatusRejected TradeStatus = "REJECTED"
)

// Trade is an executed fill derived from an approved signal. Trades are
// append-only history; portfolio state is derived from them.
type Trade struct {
	ID         string      `yaml:"id" json:"id" validate:"required"`
	SignalID   string      `yaml:"signal_id" json:"signal_id"`
	AssetID    string      `yaml:"asset_id" json:"asset_id" validate:"required"`
	Symbol     string      `yaml:"symbol" json:"symbol" validate:"required"`
	Side       Side        `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	StrategyID string      `yaml:"strategy_id" json:"strategy_id"`
	Time       time.Time   `yaml:"time" json:"time" validate:"required"`
	Price      float64     `yaml:"price" json:"price" validate:"gt=0"`
	Quantity   float64     `yaml:"quantity" json:"quantity" validate:"gt=0"`
	Commission float64     `yaml:"commission" json:"commission" validate:"gte=0"`
	Status     TradeStatus `yaml:"status" json:"status"`
	// Reason carries the rejection reason for REJECTED trades.
	Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Notional returns the trade's gross value in quote currency, excluding commission.
func (t Trade) Notional() float64 {
	return t.Price * t.Quantity
}

// CashDelta returns the signed cash flow of the trade: negative for buys
// (cash out), positive for sells (cash in), commission always subtracted.
func (t Trade) CashDelta() float64 {
	if t.Side == SideBuy {
		return -t.Notional() - t.Commission
	}

	return t.Notional() - t.Commission
}

// Position is the current holding of one asset.
type Position struct {
	AssetID  string  `yaml:"asset_id" json:"asset_id"`
	Symbol   string  `yaml:"symbol" json:"symbol"`
	Quantity float64 `yaml:"quantity" json:"quantity"`
	// AvgEntryPrice is the volume-weighted average cost of the open quantity.
	AvgEntryPrice float64 `yaml:"avg_entry_price" json:"avg_entry_price"`
	// LastPrice is the most recent observed market price, used for marking.
	LastPrice float64 `yaml:"last_price" json:"last_price"`
}

// MarketValue returns the position marked at its last observed price.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.LastPrice
}

// UnrealizedPnL returns the open profit or loss of the position.
func (p Position) UnrealizedPnL() float64 {
	return (p.LastPrice - p.AvgEntryPrice) * p.Quantity
}

// PortfolioSnapshot is a consistent point-in-time view of portfolio state.
type PortfolioSnapshot struct {
	Time        time.Time           `yaml:"time" json:"time"`
	Cash        float64             `yaml:"cash" json:"cash"`
	Equity      float64             `yaml:"equity" json:"equity"`
	Positions   map[string]Position `yaml:"positions" json:"positions"`
	RealizedPnL float64             `yaml:"realized_pnl" json:"realized_pnl"`
	// DailyLoss is the realized loss accumulated during the current UTC day.
	// Positive values mean a loss.
	DailyLoss float64 `yaml:"daily_loss" json:"daily_loss"`
	Drawdown  float64 `yaml:"drawdown" json:"drawdown"`
	// TradeCount counts filled trades since the tracker was created.
	TradeCount int `yaml:"trade_count" json:"trade_count"`
}

// Exposure returns the absolute notional exposure in the given asset.
func (s PortfolioSnapshot) Exposure(assetID string) float64 {
	pos, ok := s.Positions[assetID]
	if !ok {
		return 0
	}

	v := pos.MarketValue()
	if v < 0 {
		return -v
	}

	return v
}
