package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/indicator"
	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/registry"
	"github.com/helios-quant/helios-trading/internal/strategy"
	"github.com/helios-quant/helios-trading/internal/types"
)

// Evaluator runs every active strategy against incoming price batches and
// pushes proposed signals onto the signal queue. It owns the per-asset
// trailing windows; nothing else reads them.
type Evaluator struct {
	registry *registry.Registry
	deps     strategy.Deps
	queue    *SignalQueue
	log      *logger.Logger

	windows  map[string][]types.PricePoint
	policies map[types.StrategyKind]strategy.Policy
	idFunc   func() string
}

// NewEvaluator creates an evaluator feeding the given queue.
func NewEvaluator(reg *registry.Registry, deps strategy.Deps, queue *SignalQueue, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Evaluator{
		registry: reg,
		deps:     deps,
		queue:    queue,
		log:      log,
		windows:  make(map[string][]types.PricePoint),
		policies: make(map[types.StrategyKind]strategy.Policy),
		idFunc:   uuid.NewString,
	}
}

// HandleBatch folds a batch into the asset's trailing window and runs one
// evaluation pass over it. A failure in one (strategy, asset) pair is
// logged and does not stop the remaining pairs.
func (e *Evaluator) HandleBatch(ctx context.Context, batch Batch) {
	entries := e.registry.Snapshot()
	window := e.extendWindow(batch, entries)

	for _, entry := range entries {
		cfg := entry.Config
		if !e.targets(cfg, batch.Asset) {
			continue
		}

		policy, err := e.policyFor(cfg.Kind)
		if err != nil {
			e.log.Error("no policy for strategy, skipping pair",
				zap.String("strategy_id", cfg.ID),
				zap.String("kind", string(cfg.Kind)),
				zap.Error(err))

			continue
		}

		signals, err := policy.Evaluate(ctx, cfg, window)
		if err != nil {
			e.log.Warn("strategy evaluation failed, skipping pair",
				zap.String("strategy_id", cfg.ID),
				zap.String("asset_id", batch.Asset.ID),
				zap.Error(err))

			continue
		}
		e.registry.MarkExecuted(cfg.ID, time.Now().UTC())

		for _, sig := range signals {
			sig.ID = e.idFunc()
			if err := sig.Validate(); err != nil {
				e.log.Error("policy produced invalid signal",
					zap.String("strategy_id", cfg.ID),
					zap.Error(err))

				continue
			}
			if err := e.queue.Enqueue(ctx, sig); err != nil {
				e.log.Warn("failed to enqueue signal",
					zap.String("signal_id", sig.ID),
					zap.Error(err))
			}
		}
	}
}

// extendWindow appends a batch to the asset's trailing window, enriches
// the new points with indicator values, and trims the window to the
// largest size any active strategy requests. Delivery is at-least-once,
// so points at or before the window's tail are replays and are skipped.
func (e *Evaluator) extendWindow(batch Batch, entries []registry.Entry) []types.PricePoint {
	window := e.windows[batch.Asset.ID]
	for _, p := range batch.Points {
		if n := len(window); n > 0 && !p.Time.After(window[n-1].Time) {
			continue
		}
		window = append(window, p)
		window[len(window)-1].Indicators = optional.Some(indicator.Enrich(types.ClosePrices(window)))
	}

	need := 0
	for _, entry := range entries {
		policy, err := e.policyFor(entry.Config.Kind)
		if err != nil {
			continue
		}
		if w := policy.Window(entry.Config); w > need {
			need = w
		}
	}
	if need > 0 && len(window) > need {
		window = append([]types.PricePoint(nil), window[len(window)-need:]...)
	}

	e.windows[batch.Asset.ID] = window

	return window
}

// targets reports whether a strategy applies to an asset. An empty asset
// class on the config means the strategy trades every asset.
func (e *Evaluator) targets(cfg types.StrategyConfig, asset types.Asset) bool {
	if cfg.AssetClass == "" {
		return true
	}

	return cfg.AssetClass == asset.Class
}

// policyFor returns the cached policy for a kind, building it on first use.
func (e *Evaluator) policyFor(kind types.StrategyKind) (strategy.Policy, error) {
	if policy, ok := e.policies[kind]; ok {
		return policy, nil
	}

	policy, err := strategy.NewPolicy(kind, e.deps)
	if err != nil {
		return nil, err
	}
	e.policies[kind] = policy

	return policy, nil
}
