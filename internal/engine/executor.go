package engine

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/commission"
	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/portfolio"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// TradeSink persists executed trades and portfolio snapshots.
type TradeSink interface {
	PersistTrade(ctx context.Context, trade types.Trade) error
	PersistPortfolioSnapshot(ctx context.Context, snap types.PortfolioSnapshot) error
}

// Executor turns approved signals into paper trades against the
// portfolio tracker. No external order is ever placed.
type Executor struct {
	tracker *portfolio.Tracker
	fee     commission.Fee
	sink    TradeSink
	log     *logger.Logger
	idFunc  func() string
}

// NewExecutor creates an executor. The sink may be nil when persistence
// is not wanted, as in backtests.
func NewExecutor(tracker *portfolio.Tracker, fee commission.Fee, sink TradeSink, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if fee == nil {
		fee = commission.NewFixedRate(commission.DefaultRate)
	}

	return &Executor{
		tracker: tracker,
		fee:     fee,
		sink:    sink,
		log:     log,
		idFunc:  uuid.NewString,
	}
}

// Execute fills an approved signal. The portfolio update is all or
// nothing: if state moved between approval and execution and the fill no
// longer fits, the trade comes back rejected and nothing changes.
func (x *Executor) Execute(ctx context.Context, sig types.TradingSignal) (types.Trade, error) {
	trade := types.Trade{
		ID:         x.idFunc(),
		SignalID:   sig.ID,
		AssetID:    sig.AssetID,
		Symbol:     sig.Symbol,
		Side:       sig.Side,
		StrategyID: sig.StrategyID,
		Time:       sig.Time,
		Price:      sig.Price,
		Quantity:   sig.Quantity,
		Commission: x.fee.Calculate(sig.Quantity, sig.Price),
		Status:     types.TradeStatusFilled,
	}

	if err := x.tracker.ApplyTrade(trade); err != nil {
		if errors.HasCode(err, errors.ErrCodeInsufficientCash) || errors.HasCode(err, errors.ErrCodeInsufficientPosition) {
			// Approval raced a state change; reject, never retry.
			trade.Status = types.TradeStatusRejected
			trade.Reason = err.Error()
			x.persist(ctx, trade)

			return trade, errors.Wrapf(errors.ErrCodeExecutionRace, err, "signal %s no longer executable", sig.ID)
		}

		return trade, err
	}

	x.tracker.MarkToMarket(sig.AssetID, sig.Price)
	x.persist(ctx, trade)

	x.log.Info("trade executed",
		zap.String("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("side", string(trade.Side)),
		zap.Float64("price", trade.Price),
		zap.Float64("quantity", trade.Quantity),
		zap.Float64("commission", trade.Commission))

	return trade, nil
}

func (x *Executor) persist(ctx context.Context, trade types.Trade) {
	if x.sink == nil {
		return
	}
	if err := x.sink.PersistTrade(ctx, trade); err != nil {
		x.log.Error("failed to persist trade",
			zap.String("trade_id", trade.ID),
			zap.Error(err))
	}
}
