// Package backtest replays historical prices through the same strategy
// policies the live engine runs, against an isolated paper portfolio.
// Runs are single-threaded and deterministic: identical inputs produce
// identical results, down to the trade list.
package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/commission"
	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/portfolio"
	"github.com/helios-quant/helios-trading/internal/risk"
	"github.com/helios-quant/helios-trading/internal/strategy"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
	"github.com/helios-quant/helios-trading/pkg/utils"
)

// HistorySource provides the stored price series a backtest replays.
type HistorySource interface {
	GetHistoricalPrices(ctx context.Context, assetID string, start, end time.Time) ([]types.PricePoint, error)
}

// RunConfig parameterizes one simulation run.
type RunConfig struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	InitialCapital float64   `json:"initial_capital"`
	// CommissionRate is the fixed fee rate charged on entry and exit.
	// Zero uses the default rate.
	CommissionRate float64 `json:"commission_rate"`
	// Progress, when set, is called after each replayed tick with the
	// number of ticks done and the total.
	Progress func(done, total int) `json:"-"`
}

// GetConfigSchema returns the JSON schema of the run config.
func GetConfigSchema() (string, error) {
	return utils.SchemaFor(&RunConfig{})
}

// Simulator replays strategies against history.
type Simulator struct {
	history HistorySource
	deps    strategy.Deps
	log     *logger.Logger
}

// NewSimulator creates a simulator reading from the given history source.
func NewSimulator(history HistorySource, deps strategy.Deps, log *logger.Logger) *Simulator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Simulator{
		history: history,
		deps:    deps,
		log:     log,
	}
}

// Run replays one strategy against one asset's history. Each point is
// fed incrementally through the evaluate, gate, execute chain, then the
// portfolio is marked at that point's price and the equity curve sampled.
func (s *Simulator) Run(ctx context.Context, cfg types.StrategyConfig, asset types.Asset, run RunConfig) (*types.BacktestResult, error) {
	if run.InitialCapital <= 0 {
		return nil, errors.Newf(errors.ErrCodeBacktestConfigBad, "initial capital must be positive, got %f", run.InitialCapital)
	}
	if !run.End.After(run.Start) {
		return nil, errors.Newf(errors.ErrCodeBacktestConfigBad, "backtest end %s is not after start %s", run.End, run.Start)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	policy, err := strategy.NewPolicy(cfg.Kind, s.deps)
	if err != nil {
		return nil, err
	}

	points, err := s.history.GetHistoricalPrices(ctx, asset.ID, run.Start, run.End)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeNoHistoricalData, err, "failed to load history for %s", asset.Symbol)
	}
	if len(points) == 0 {
		return nil, errors.Newf(errors.ErrCodeBacktestNoData, "no historical prices for %s between %s and %s", asset.Symbol, run.Start, run.End)
	}

	tracker, err := portfolio.NewTracker(run.InitialCapital, logger.NewNopLogger())
	if err != nil {
		return nil, err
	}
	gate := risk.NewGate(0, 0, logger.NewNopLogger())
	fee := commission.NewFixedRate(run.CommissionRate)

	result := &types.BacktestResult{
		StrategyID:     cfg.ID,
		Symbol:         asset.Symbol,
		Start:          run.Start,
		End:            run.End,
		InitialCapital: run.InitialCapital,
		EquityCurve:    make([]types.EquityPoint, 0, len(points)),
	}

	need := policy.Window(cfg)
	seq := 0

	for i := range points {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEngineStopped, "backtest cancelled", err)
		}

		point := points[i]
		window := points[:i+1]
		if need > 0 && len(window) > need {
			window = window[len(window)-need:]
		}

		signals, err := policy.Evaluate(ctx, cfg, window)
		if err != nil {
			// Same isolation as the live evaluator: one bad tick does
			// not abort the replay.
			s.log.Warn("evaluation failed during replay",
				zap.String("strategy_id", cfg.ID),
				zap.Int("tick", i),
				zap.Error(err))
			signals = nil
		}

		for _, sig := range signals {
			seq++
			sig.ID = fmt.Sprintf("bt-sig-%s-%d", asset.Symbol, seq)

			decision := gate.Check(sig, cfg.Risk, tracker.Snapshot(sig.Time))
			if !decision.Approved {
				result.RejectedSignals++

				continue
			}

			trade := types.Trade{
				ID:         fmt.Sprintf("bt-%s-%d", asset.Symbol, seq),
				SignalID:   sig.ID,
				AssetID:    sig.AssetID,
				Symbol:     sig.Symbol,
				Side:       sig.Side,
				StrategyID: sig.StrategyID,
				Time:       sig.Time,
				Price:      sig.Price,
				Quantity:   sig.Quantity,
				Commission: fee.Calculate(sig.Quantity, sig.Price),
				Status:     types.TradeStatusFilled,
			}
			if err := tracker.ApplyTrade(trade); err != nil {
				if errors.HasCode(err, errors.ErrCodeInsufficientCash) || errors.HasCode(err, errors.ErrCodeInsufficientPosition) {
					trade.Status = types.TradeStatusRejected
					trade.Reason = err.Error()
					result.RejectedSignals++
					result.Trades = append(result.Trades, trade)

					continue
				}

				return nil, err
			}
			result.Trades = append(result.Trades, trade)
		}

		tracker.MarkToMarket(point.AssetID, point.Price())
		snap := tracker.Snapshot(point.Time)
		result.EquityCurve = append(result.EquityCurve, types.EquityPoint{
			Time:   point.Time,
			Equity: snap.Equity,
		})

		if run.Progress != nil {
			run.Progress(i+1, len(points))
		}
	}

	result.FinalEquity = result.EquityCurve[len(result.EquityCurve)-1].Equity
	result.Stats = computeStats(run.InitialCapital, result.EquityCurve, result.Trades)

	s.log.Info("backtest complete",
		zap.String("strategy_id", cfg.ID),
		zap.String("symbol", asset.Symbol),
		zap.Int("ticks", len(points)),
		zap.Int("trades", result.Stats.TotalTrades),
		zap.Float64("total_return", result.Stats.TotalReturn))

	return result, nil
}
