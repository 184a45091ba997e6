package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-quant/helios-trading/internal/strategy"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// crossoverSeries dips then spikes so a 5/10 moving average crossover
// fires a BUY on the final tick.
var crossoverSeries = []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 9, 9, 9, 9, 9, 9, 9, 9, 9, 20}

type stubMarket struct {
	mu     sync.Mutex
	assets []types.Asset
	prices map[string][]types.PricePoint
}

func newStubMarket(prices []float64) *stubMarket {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	points := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = types.PricePoint{
			AssetID: "asset-1",
			Symbol:  "BTCUSDT",
			Time:    base.Add(time.Duration(i) * time.Minute),
			Open:    p,
			High:    p,
			Low:     p,
			Close:   p,
			Volume:  100,
		}
	}

	return &stubMarket{
		assets: []types.Asset{{ID: "asset-1", Symbol: "BTCUSDT", Class: "crypto", Active: true}},
		prices: map[string][]types.PricePoint{"asset-1": points},
	}
}

func (m *stubMarket) ListAssets(_ context.Context) ([]types.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]types.Asset(nil), m.assets...), nil
}

func (m *stubMarket) GetRecentPrices(_ context.Context, assetID string, since time.Time) ([]types.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []types.PricePoint
	for _, p := range m.prices[assetID] {
		if p.Time.After(since) {
			out = append(out, p)
		}
	}

	return out, nil
}

type stubStrategies struct {
	configs []types.StrategyConfig
}

func (s *stubStrategies) ListActiveStrategies(_ context.Context) ([]types.StrategyConfig, error) {
	return s.configs, nil
}

type memorySink struct {
	mu        sync.Mutex
	trades    []types.Trade
	snapshots []types.PortfolioSnapshot
}

func (s *memorySink) PersistTrade(_ context.Context, trade types.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, trade)

	return nil
}

func (s *memorySink) PersistPortfolioSnapshot(_ context.Context, snap types.PortfolioSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snap)

	return nil
}

func (s *memorySink) filledTrades() []types.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filled []types.Trade
	for _, t := range s.trades {
		if t.Status == types.TradeStatusFilled {
			filled = append(filled, t)
		}
	}

	return filled
}

func trendConfig() types.StrategyConfig {
	return types.StrategyConfig{
		ID:   "trend-1",
		Name: "crossover",
		Kind: types.StrategyKindTrendFollowing,
		Parameters: map[string]float64{
			"short_window": 5,
			"long_window":  10,
		},
		Risk:   types.RiskLimits{MaxPositionSize: 2000},
		Active: true,
	}
}

func testEngineConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialCapital = 10000
	cfg.PollInterval = 10 * time.Millisecond
	cfg.MonitorInterval = 20 * time.Millisecond

	return cfg
}

func TestEngineStartStop(t *testing.T) {
	market := newStubMarket(crossoverSeries)
	sink := &memorySink{}

	e, err := New(testEngineConfig(), market, &stubStrategies{configs: []types.StrategyConfig{trendConfig()}}, sink, strategy.Deps{}, nil)
	require.NoError(t, err)

	require.NoError(t, e.Start(context.Background()))
	assert.True(t, e.Running())

	// Starting twice is an error.
	err = e.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEngineAlreadyLive))

	e.Stop()
	assert.False(t, e.Running())

	// Stop is idempotent.
	e.Stop()
}

func TestEnginePipelineExecutesCrossoverBuy(t *testing.T) {
	market := newStubMarket(crossoverSeries)
	sink := &memorySink{}

	e, err := New(testEngineConfig(), market, &stubStrategies{configs: []types.StrategyConfig{trendConfig()}}, sink, strategy.Deps{}, nil)
	require.NoError(t, err)

	require.NoError(t, e.Start(context.Background()))
	defer e.Stop()

	require.Eventually(t, func() bool {
		return len(sink.filledTrades()) >= 1
	}, 3*time.Second, 10*time.Millisecond, "expected the crossover BUY to execute")

	trade := sink.filledTrades()[0]
	assert.Equal(t, types.SideBuy, trade.Side)
	assert.Equal(t, "trend-1", trade.StrategyID)
	assert.Equal(t, 20.0, trade.Price)

	snap := e.Portfolio()
	assert.Less(t, snap.Cash, 10000.0)
	assert.Contains(t, snap.Positions, "asset-1")
}

func TestExecuteStrategyOnce(t *testing.T) {
	market := newStubMarket(crossoverSeries)
	sink := &memorySink{}

	e, err := New(testEngineConfig(), market, &stubStrategies{configs: []types.StrategyConfig{trendConfig()}}, sink, strategy.Deps{}, nil)
	require.NoError(t, err)
	require.NoError(t, e.registry.Load(context.Background(), e.strategySource))

	result, err := e.ExecuteStrategyOnce(context.Background(), "trend-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.SignalsGenerated)
	assert.Equal(t, 1, result.TradesExecuted)
	assert.Equal(t, 0, result.SignalsRejected)
	assert.Empty(t, result.Errors)

	require.Len(t, sink.filledTrades(), 1)
}

func TestExecuteStrategyOnceUnknownStrategy(t *testing.T) {
	market := newStubMarket(crossoverSeries)

	e, err := New(testEngineConfig(), market, &stubStrategies{}, nil, strategy.Deps{}, nil)
	require.NoError(t, err)

	_, err = e.ExecuteStrategyOnce(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStrategyNotFound))
}

func TestExecuteStrategyOnceRespectsPositionLimit(t *testing.T) {
	market := newStubMarket(crossoverSeries)
	sink := &memorySink{}

	cfg := trendConfig()
	// Sized above available cash so execution hits the cash guard, but
	// below the risk gate's radar.
	cfg.Risk.MaxPositionSize = 50000

	e, err := New(testEngineConfig(), market, &stubStrategies{configs: []types.StrategyConfig{cfg}}, sink, strategy.Deps{}, nil)
	require.NoError(t, err)
	require.NoError(t, e.registry.Load(context.Background(), e.strategySource))

	result, err := e.ExecuteStrategyOnce(context.Background(), "trend-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.SignalsGenerated)
	assert.Equal(t, 0, result.TradesExecuted)
	assert.Equal(t, 1, result.SignalsRejected)

	// Portfolio must be untouched after the rejected fill.
	snap := e.Portfolio()
	assert.Equal(t, 10000.0, snap.Cash)
	assert.Empty(t, snap.Positions)
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := Config{InitialCapital: 1000}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, DefaultQueueCapacity, cfg.QueueCapacity)

	bad := Config{InitialCapital: -5}
	require.Error(t, bad.Validate())
}

func TestGetConfigSchema(t *testing.T) {
	schema, err := GetConfigSchema()
	require.NoError(t, err)
	assert.Contains(t, schema, "initial_capital")
	assert.Contains(t, schema, "queue_capacity")
}
