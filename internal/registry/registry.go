// Package registry holds the process-wide table of configured strategies.
// It is mutated only by explicit load/activate/deactivate calls; the
// evaluator iterates copy-on-read snapshots so registry edits never block
// an in-flight evaluation pass.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/internal/version"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// Source lists the persisted strategies the registry loads at startup.
type Source interface {
	ListActiveStrategies(ctx context.Context) ([]types.StrategyConfig, error)
}

// Entry is one registered strategy with its execution bookkeeping.
type Entry struct {
	Config types.StrategyConfig
	// LastExecuted is the time of the most recent evaluation pass that
	// included this strategy, zero if never executed.
	LastExecuted time.Time
}

// Registry is the in-memory strategy table.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	log     *logger.Logger
}

// New creates an empty registry.
func New(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Registry{
		entries: make(map[string]*Entry),
		log:     log,
	}
}

// Load replaces the registry contents with the active strategies from the
// source. Each config is validated and version-checked before admission;
// a duplicate strategy id in the source is a hard error because the
// evaluator would execute it twice per tick.
func (r *Registry) Load(ctx context.Context, src Source) error {
	configs, err := src.ListActiveStrategies(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to list active strategies", err)
	}

	entries := make(map[string]*Entry, len(configs))
	for i := range configs {
		cfg := configs[i]
		if err := r.admit(&cfg); err != nil {
			return err
		}
		if _, exists := entries[cfg.ID]; exists {
			return errors.Newf(errors.ErrCodeDuplicateStrategy, "strategy %s appears twice in active set", cfg.ID)
		}
		entries[cfg.ID] = &Entry{Config: cfg}
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()

	r.log.Info("strategy registry loaded", zap.Int("strategies", len(entries)))

	return nil
}

// Register adds or replaces a single strategy.
func (r *Registry) Register(cfg types.StrategyConfig) error {
	if err := r.admit(&cfg); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[cfg.ID] = &Entry{Config: cfg}

	return nil
}

// admit validates a config for registry admission.
func (r *Registry) admit(cfg *types.StrategyConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := version.CheckSchemaCompatibility(cfg.SchemaVersion); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "strategy %s has incompatible schema version %q", cfg.ID, cfg.SchemaVersion)
	}

	return nil
}

// Activate marks a strategy active. Idempotent: activating an already
// active strategy is a no-op.
func (r *Registry) Activate(strategyID string) error {
	return r.setActive(strategyID, true)
}

// Deactivate marks a strategy inactive. Idempotent.
func (r *Registry) Deactivate(strategyID string) error {
	return r.setActive(strategyID, false)
}

func (r *Registry) setActive(strategyID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[strategyID]
	if !ok {
		return errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s is not registered", strategyID)
	}
	if entry.Config.Active == active {
		return nil
	}
	entry.Config.Active = active
	r.log.Info("strategy state changed",
		zap.String("strategy_id", strategyID),
		zap.Bool("active", active))

	return nil
}

// Get returns a copy of the entry for a strategy id.
func (r *Registry) Get(strategyID string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[strategyID]
	if !ok {
		return Entry{}, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s is not registered", strategyID)
	}

	return *entry, nil
}

// Snapshot returns copies of all active entries, ordered by strategy id
// for deterministic iteration. The copies are detached: callers can hold
// them across an evaluation pass without blocking registry edits.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		if !entry.Config.Active {
			continue
		}
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Config.ID < entries[j].Config.ID
	})

	return entries
}

// MarkExecuted records that a strategy took part in an evaluation pass.
func (r *Registry) MarkExecuted(strategyID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[strategyID]; ok {
		entry.LastExecuted = at
	}
}
