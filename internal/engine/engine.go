// Package engine wires the live trading pipeline: market data feeding,
// strategy evaluation, risk gating, and paper execution, connected by a
// bounded signal queue and shut down through a single cancellation.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/commission"
	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/portfolio"
	"github.com/helios-quant/helios-trading/internal/registry"
	"github.com/helios-quant/helios-trading/internal/risk"
	"github.com/helios-quant/helios-trading/internal/strategy"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// ExecutionResult summarizes one on-demand strategy pass.
type ExecutionResult struct {
	StrategyID       string   `json:"strategy_id"`
	SignalsGenerated int      `json:"signals_generated"`
	TradesExecuted   int      `json:"trades_executed"`
	SignalsRejected  int      `json:"signals_rejected"`
	Errors           []string `json:"errors,omitempty"`
}

// Engine is the live paper trading engine.
type Engine struct {
	cfg  Config
	log  *logger.Logger
	deps strategy.Deps

	source         PriceSource
	strategySource registry.Source
	sink           TradeSink

	registry  *registry.Registry
	tracker   *portfolio.Tracker
	gate      *risk.Gate
	queue     *SignalQueue
	feeder    *Feeder
	evaluator *Evaluator
	executor  *Executor
	status    *statusServer

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
	fatal   atomic.Value
}

// New builds an engine from its collaborators. The predictor inside deps
// may be nil when no ML strategies are configured.
func New(cfg Config, source PriceSource, strategySource registry.Source, sink TradeSink, deps strategy.Deps, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	tracker, err := portfolio.NewTracker(cfg.InitialCapital, log)
	if err != nil {
		return nil, err
	}

	reg := registry.New(log)
	queue := NewSignalQueue(cfg.QueueCapacity)
	gate := risk.NewGate(cfg.ConfidenceFloor, cfg.RiskCeiling, log)
	fee := commission.NewFixedRate(cfg.CommissionRate)

	e := &Engine{
		cfg:            cfg,
		log:            log,
		deps:           deps,
		source:         source,
		strategySource: strategySource,
		sink:           sink,
		registry:       reg,
		tracker:        tracker,
		gate:           gate,
		queue:          queue,
		feeder:         NewFeeder(source, cfg.PollInterval, log),
		evaluator:      NewEvaluator(reg, deps, queue, log),
		executor:       NewExecutor(tracker, fee, sink, log),
	}
	if cfg.StatusAddr != "" {
		e.status = newStatusServer(cfg.StatusAddr, e, log)
	}

	return e, nil
}

// Start loads the strategy registry and launches the pipeline tasks.
// It returns once everything is running; call Stop to shut down.
func (e *Engine) Start(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeEngineAlreadyLive, "engine is already running")
	}

	if err := e.registry.Load(ctx, e.strategySource); err != nil {
		e.running.Store(false)

		return errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to load strategy registry", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.feeder.Run(runCtx)
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.evaluateLoop(runCtx)
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.consumeLoop(runCtx)
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.monitorLoop(runCtx)
	}()

	if e.status != nil {
		e.status.start(runCtx)
	}

	e.log.Info("engine started",
		zap.Duration("poll_interval", e.cfg.PollInterval),
		zap.Int("queue_capacity", e.queue.Capacity()),
		zap.Float64("initial_capital", e.cfg.InitialCapital))

	return nil
}

// Stop cancels all pipeline tasks and waits for them to drain their
// current unit of work. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	e.wg.Wait()
	if e.status != nil {
		e.status.stop()
	}
	e.running.Store(false)
	e.log.Info("engine stopped")
}

// Running reports whether the engine is live.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// FatalErr returns the error that halted the engine, if any.
func (e *Engine) FatalErr() error {
	if v := e.fatal.Load(); v != nil {
		return v.(error)
	}

	return nil
}

// Portfolio returns a snapshot of current portfolio state.
func (e *Engine) Portfolio() types.PortfolioSnapshot {
	return e.tracker.Snapshot(time.Now().UTC())
}

// QueueDepth returns current signal queue occupancy and full-event count.
func (e *Engine) QueueDepth() (depth int, capacity int, fullEvents int64) {
	return e.queue.Depth(), e.queue.Capacity(), e.queue.FullEvents()
}

// Registry exposes the strategy registry for operator actions.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

func (e *Engine) evaluateLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-e.feeder.Batches():
			if !ok {
				return
			}
			for _, p := range batch.Points {
				e.tracker.MarkToMarket(p.AssetID, p.Price())
			}
			e.evaluator.HandleBatch(ctx, batch)
		}
	}
}

func (e *Engine) consumeLoop(ctx context.Context) {
	for {
		sig, ok := e.queue.Dequeue(ctx)
		if !ok {
			return
		}
		e.processSignal(ctx, sig)
	}
}

// processSignal runs one signal through the gate and, if approved, the
// executor. Rejections are terminal and only logged.
func (e *Engine) processSignal(ctx context.Context, sig types.TradingSignal) (types.Trade, bool) {
	entry, err := e.registry.Get(sig.StrategyID)
	if err != nil {
		e.log.Warn("signal references unknown strategy, dropping",
			zap.String("signal_id", sig.ID),
			zap.String("strategy_id", sig.StrategyID))

		return types.Trade{}, false
	}

	snap := e.tracker.Snapshot(sig.Time)
	decision := e.gate.Check(sig, entry.Config.Risk, snap)
	if !decision.Approved {
		return types.Trade{}, false
	}

	trade, err := e.executor.Execute(ctx, sig)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeExecutionRace) {
			e.log.Warn("execution race, trade rejected post-hoc",
				zap.String("signal_id", sig.ID))

			return trade, false
		}
		e.log.Error("trade execution failed",
			zap.String("signal_id", sig.ID),
			zap.Error(err))

		return trade, false
	}

	return trade, true
}

// monitorLoop periodically persists portfolio snapshots, surfaces queue
// health, and validates portfolio invariants. A failed validation is
// fatal: the engine halts and waits for an operator.
func (e *Engine) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.tracker.Validate(); err != nil {
				e.fatal.Store(err)
				e.log.Error("portfolio state corrupt, halting engine", zap.Error(err))
				go e.Stop()

				return
			}

			snap := e.tracker.Snapshot(time.Now().UTC())
			if e.sink != nil {
				if err := e.sink.PersistPortfolioSnapshot(ctx, snap); err != nil {
					e.log.Warn("failed to persist portfolio snapshot", zap.Error(err))
				}
			}

			depth, capacity, fullEvents := e.QueueDepth()
			e.log.Info("engine health",
				zap.Float64("equity", snap.Equity),
				zap.Float64("cash", snap.Cash),
				zap.Int("positions", len(snap.Positions)),
				zap.Int("queue_depth", depth),
				zap.Int("queue_capacity", capacity),
				zap.Int64("queue_full_events", fullEvents))
		}
	}
}

// ExecuteStrategyOnce runs a single on-demand evaluation pass for one
// strategy across its target assets, gating and executing any resulting
// signals synchronously. Used by external schedulers.
func (e *Engine) ExecuteStrategyOnce(ctx context.Context, strategyID string) (ExecutionResult, error) {
	result := ExecutionResult{StrategyID: strategyID}

	entry, err := e.registry.Get(strategyID)
	if err != nil {
		return result, err
	}
	cfg := entry.Config
	if !cfg.Active {
		return result, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s is not active", strategyID)
	}

	policy, err := strategy.NewPolicy(cfg.Kind, e.deps)
	if err != nil {
		return result, err
	}

	assets, err := e.source.ListAssets(ctx)
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to list assets", err)
	}

	need := policy.Window(cfg)
	for _, asset := range assets {
		if !asset.Active || (cfg.AssetClass != "" && cfg.AssetClass != asset.Class) {
			continue
		}

		points, err := e.source.GetRecentPrices(ctx, asset.ID, time.Time{})
		if err != nil {
			result.Errors = append(result.Errors, err.Error())

			continue
		}
		if need > 0 && len(points) > need {
			points = points[len(points)-need:]
		}

		signals, err := policy.Evaluate(ctx, cfg, points)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())

			continue
		}

		for _, sig := range signals {
			sig.ID = e.evaluator.idFunc()
			if err := sig.Validate(); err != nil {
				result.Errors = append(result.Errors, err.Error())

				continue
			}
			result.SignalsGenerated++
			if _, ok := e.processSignal(ctx, sig); ok {
				result.TradesExecuted++
			} else {
				result.SignalsRejected++
			}
		}
	}

	e.registry.MarkExecuted(strategyID, time.Now().UTC())

	return result, nil
}
