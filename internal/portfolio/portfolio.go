// Package portfolio tracks cash, positions, and realized results. The
// tracker is the single writer of portfolio state: trades mutate it
// atomically, everything else reads consistent snapshots.
package portfolio

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

type position struct {
	symbol    string
	quantity  decimal.Decimal
	cost      decimal.Decimal
	lastPrice float64
}

func (p *position) avgEntry() float64 {
	if p.quantity.IsZero() {
		return 0
	}

	f, _ := p.cost.Div(p.quantity).Float64()

	return f
}

// Tracker holds the live portfolio state. Monetary amounts are kept as
// decimals internally so repeated fills do not accumulate float drift.
type Tracker struct {
	mu sync.Mutex

	initialCapital float64
	cash           decimal.Decimal
	positions      map[string]*position
	realized       decimal.Decimal

	// dailyLoss accumulates realized losses within dailyLossDay (UTC)
	// and resets when a trade lands on a new day.
	dailyLoss    decimal.Decimal
	dailyLossDay time.Time

	peakEquity float64
	tradeCount int

	log *logger.Logger
}

// NewTracker creates a tracker funded with the given initial capital.
func NewTracker(initialCapital float64, log *logger.Logger) (*Tracker, error) {
	if initialCapital <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "initial capital must be positive, got %f", initialCapital)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Tracker{
		initialCapital: initialCapital,
		cash:           decimal.NewFromFloat(initialCapital),
		positions:      make(map[string]*position),
		peakEquity:     initialCapital,
		log:            log,
	}, nil
}

// ApplyTrade applies a filled trade to the portfolio, all or nothing. A
// buy exceeding available cash or a sell exceeding the held quantity is
// rejected with no state change at all.
func (t *Tracker) ApplyTrade(trade types.Trade) error {
	if trade.Status != types.TradeStatusFilled {
		return errors.Newf(errors.ErrCodeInvalidTrade, "cannot apply trade %s with status %s", trade.ID, trade.Status)
	}
	if trade.Price <= 0 || trade.Quantity <= 0 {
		return errors.Newf(errors.ErrCodeInvalidTrade, "trade %s has non-positive price or quantity", trade.ID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	price := decimal.NewFromFloat(trade.Price)
	quantity := decimal.NewFromFloat(trade.Quantity)
	commission := decimal.NewFromFloat(trade.Commission)
	notional := price.Mul(quantity)

	t.rollDailyLossLocked(trade.Time)

	switch trade.Side {
	case types.SideBuy:
		outlay := notional.Add(commission)
		if t.cash.LessThan(outlay) {
			return errors.Newf(errors.ErrCodeInsufficientCash,
				"buy %s needs %s but only %s cash available", trade.ID, outlay.String(), t.cash.String())
		}

		pos, ok := t.positions[trade.AssetID]
		if !ok {
			pos = &position{symbol: trade.Symbol}
			t.positions[trade.AssetID] = pos
		}
		t.cash = t.cash.Sub(outlay)
		pos.quantity = pos.quantity.Add(quantity)
		pos.cost = pos.cost.Add(notional)
		pos.lastPrice = trade.Price

	case types.SideSell:
		pos, ok := t.positions[trade.AssetID]
		if !ok || pos.quantity.LessThan(quantity) {
			held := decimal.Zero
			if ok {
				held = pos.quantity
			}

			return errors.Newf(errors.ErrCodeInsufficientPosition,
				"sell %s needs %s units but only %s held", trade.ID, quantity.String(), held.String())
		}

		// Realize against the average cost of the open quantity.
		avgEntry := pos.cost.Div(pos.quantity)
		proceeds := notional.Sub(commission)
		pnl := price.Sub(avgEntry).Mul(quantity).Sub(commission)

		t.cash = t.cash.Add(proceeds)
		pos.cost = pos.cost.Sub(avgEntry.Mul(quantity))
		pos.quantity = pos.quantity.Sub(quantity)
		pos.lastPrice = trade.Price
		if pos.quantity.IsZero() {
			delete(t.positions, trade.AssetID)
		}

		t.realized = t.realized.Add(pnl)
		if pnl.IsNegative() {
			t.dailyLoss = t.dailyLoss.Sub(pnl)
		}

	default:
		return errors.Newf(errors.ErrCodeInvalidTrade, "trade %s has unknown side %q", trade.ID, trade.Side)
	}

	t.tradeCount++
	t.log.Debug("trade applied",
		zap.String("trade_id", trade.ID),
		zap.String("side", string(trade.Side)),
		zap.String("symbol", trade.Symbol),
		zap.Float64("price", trade.Price),
		zap.Float64("quantity", trade.Quantity))

	return nil
}

// rollDailyLossLocked resets the daily loss accumulator when the clock
// crosses into a new UTC day. Caller must hold the mutex.
func (t *Tracker) rollDailyLossLocked(now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if !day.Equal(t.dailyLossDay) {
		t.dailyLossDay = day
		t.dailyLoss = decimal.Zero
	}
}

// MarkToMarket updates the last observed price of an asset. Unknown
// assets are ignored.
func (t *Tracker) MarkToMarket(assetID string, price float64) {
	if price <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if pos, ok := t.positions[assetID]; ok {
		pos.lastPrice = price
	}
}

// Snapshot returns a consistent copy of portfolio state at the given
// time, updating the running equity peak for drawdown tracking.
func (t *Tracker) Snapshot(now time.Time) types.PortfolioSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollDailyLossLocked(now)

	cash, _ := t.cash.Float64()
	equity := cash
	positions := make(map[string]types.Position, len(t.positions))
	for assetID, pos := range t.positions {
		qty, _ := pos.quantity.Float64()
		p := types.Position{
			AssetID:       assetID,
			Symbol:        pos.symbol,
			Quantity:      qty,
			AvgEntryPrice: pos.avgEntry(),
			LastPrice:     pos.lastPrice,
		}
		positions[assetID] = p
		equity += p.MarketValue()
	}

	if equity > t.peakEquity {
		t.peakEquity = equity
	}
	drawdown := 0.0
	if t.peakEquity > 0 {
		drawdown = (t.peakEquity - equity) / t.peakEquity
	}

	realized, _ := t.realized.Float64()
	dailyLoss, _ := t.dailyLoss.Float64()

	return types.PortfolioSnapshot{
		Time:        now,
		Cash:        cash,
		Equity:      equity,
		Positions:   positions,
		RealizedPnL: realized,
		DailyLoss:   dailyLoss,
		Drawdown:    drawdown,
		TradeCount:  t.tradeCount,
	}
}

// InitialCapital returns the capital the tracker was funded with.
func (t *Tracker) InitialCapital() float64 {
	return t.initialCapital
}

// Validate checks internal consistency. A failure here means portfolio
// state is corrupt and the engine must halt rather than keep trading.
func (t *Tracker) Validate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cash.IsNegative() {
		return errors.Newf(errors.ErrCodePortfolioCorrupt, "cash is negative: %s", t.cash.String())
	}
	for assetID, pos := range t.positions {
		if pos.quantity.IsNegative() {
			return errors.Newf(errors.ErrCodePortfolioCorrupt, "position %s has negative quantity: %s", assetID, pos.quantity.String())
		}
	}

	return nil
}
