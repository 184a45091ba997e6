package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/types"
)

// PriceSource is the market data contract the feeder polls.
type PriceSource interface {
	ListAssets(ctx context.Context) ([]types.Asset, error)
	// GetRecentPrices returns points strictly newer than since, ordered
	// by time ascending.
	GetRecentPrices(ctx context.Context, assetID string, since time.Time) ([]types.PricePoint, error)
}

// Batch is one asset's new price points delivered to the evaluator.
// Delivery is at-least-once; duplicate points are harmless because
// policy evaluation is idempotent on identical windows.
type Batch struct {
	Asset  types.Asset
	Points []types.PricePoint
}

// Feeder polls the price source on a fixed interval and forwards newly
// observed points per asset. Ordering is guaranteed within an asset's
// series, not across assets.
type Feeder struct {
	source   PriceSource
	interval time.Duration
	out      chan Batch
	lastSeen map[string]time.Time
	log      *logger.Logger
}

// NewFeeder creates a feeder polling at the given interval.
func NewFeeder(source PriceSource, interval time.Duration, log *logger.Logger) *Feeder {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Feeder{
		source:   source,
		interval: interval,
		out:      make(chan Batch, 64),
		lastSeen: make(map[string]time.Time),
		log:      log,
	}
}

// Batches returns the channel batches are delivered on. Closed when the
// feeder stops.
func (f *Feeder) Batches() <-chan Batch {
	return f.out
}

// Run polls until the context is cancelled. One failing asset is logged
// and skipped; the poll continues with the remaining assets.
func (f *Feeder) Run(ctx context.Context) {
	defer close(f.out)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	// First poll happens immediately so the engine does not idle for a
	// full interval after startup.
	f.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.poll(ctx)
		}
	}
}

func (f *Feeder) poll(ctx context.Context) {
	assets, err := f.source.ListAssets(ctx)
	if err != nil {
		f.log.Warn("failed to list assets, skipping poll", zap.Error(err))

		return
	}

	for _, asset := range assets {
		if ctx.Err() != nil {
			return
		}
		if !asset.Active {
			continue
		}

		points, err := f.source.GetRecentPrices(ctx, asset.ID, f.lastSeen[asset.ID])
		if err != nil {
			f.log.Warn("failed to fetch recent prices",
				zap.String("asset_id", asset.ID),
				zap.String("symbol", asset.Symbol),
				zap.Error(err))

			continue
		}
		if len(points) == 0 {
			continue
		}

		f.lastSeen[asset.ID] = points[len(points)-1].Time

		select {
		case f.out <- Batch{Asset: asset, Points: points}:
		case <-ctx.Done():
			return
		}
	}
}
