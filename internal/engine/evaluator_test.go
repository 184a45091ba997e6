package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-quant/helios-trading/internal/registry"
	"github.com/helios-quant/helios-trading/internal/strategy"
	"github.com/helios-quant/helios-trading/internal/types"
)

func minuteBatch(asset types.Asset, base time.Time, prices ...float64) Batch {
	points := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = types.PricePoint{
			AssetID: asset.ID,
			Symbol:  asset.Symbol,
			Time:    base.Add(time.Duration(i) * time.Minute),
			Open:    p,
			High:    p,
			Low:     p,
			Close:   p,
		}
	}

	return Batch{Asset: asset, Points: points}
}

func TestEvaluatorSkipsReplayedPoints(t *testing.T) {
	ev := NewEvaluator(registry.New(nil), strategy.Deps{}, NewSignalQueue(8), nil)

	asset := types.Asset{ID: "btc-usdt", Symbol: "BTCUSDT", Active: true}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	batch := minuteBatch(asset, base, 100, 101, 102)

	window := ev.extendWindow(batch, nil)
	require.Len(t, window, 3)

	// At-least-once delivery: the same batch arriving again must not
	// duplicate points in the window.
	window = ev.extendWindow(batch, nil)
	require.Len(t, window, 3)

	// Overlapping redelivery keeps only the genuinely new tail.
	overlap := minuteBatch(asset, base.Add(2*time.Minute), 102, 103)
	window = ev.extendWindow(overlap, nil)
	require.Len(t, window, 4)
	assert.Equal(t, 103.0, window[3].Close)
}

func TestEvaluatorEnrichesNewPoints(t *testing.T) {
	ev := NewEvaluator(registry.New(nil), strategy.Deps{}, NewSignalQueue(8), nil)

	asset := types.Asset{ID: "btc-usdt", Symbol: "BTCUSDT", Active: true}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	window := ev.extendWindow(minuteBatch(asset, base, prices...), nil)
	require.Len(t, window, 25)

	last, err := window[len(window)-1].Indicators.Take()
	require.NoError(t, err)
	assert.Greater(t, last.SMA20, 0.0)
	assert.InDelta(t, 50.0, last.RSI, 1e-9)

	// Early points carry the values of their own shorter prefix.
	first, err := window[0].Indicators.Take()
	require.NoError(t, err)
	assert.Equal(t, 0.0, first.SMA20)
}
