package store

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/helios-quant/helios-trading/internal/types"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	st, err := Open("", nil)
	require.NoError(s.T(), err)
	s.store = st
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	require.NoError(s.T(), s.store.Close())
}

func (s *StoreTestSuite) TestAssetsRoundTrip() {
	asset := types.Asset{ID: "asset-1", Symbol: "BTCUSDT", Class: "crypto", Active: true}
	s.Require().NoError(s.store.SaveAsset(s.ctx, asset))

	assets, err := s.store.ListAssets(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(assets, 1)
	s.Equal(asset, assets[0])
}

func (s *StoreTestSuite) TestListActiveStrategiesFiltersInactive() {
	active := types.StrategyConfig{
		ID:   "strat-1",
		Name: "trend",
		Kind: types.StrategyKindTrendFollowing,
		Parameters: map[string]float64{
			"short_window": 5,
			"long_window":  10,
		},
		Risk:          types.RiskLimits{MaxPositionSize: 1000, MaxDailyLoss: 500},
		ModelRef:      optional.Some("model-v1"),
		SchemaVersion: "1.0.0",
		Active:        true,
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	inactive := active
	inactive.ID = "strat-2"
	inactive.Active = false

	s.Require().NoError(s.store.SaveStrategy(s.ctx, active))
	s.Require().NoError(s.store.SaveStrategy(s.ctx, inactive))

	configs, err := s.store.ListActiveStrategies(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(configs, 1)

	got := configs[0]
	s.Equal("strat-1", got.ID)
	s.Equal(types.StrategyKindTrendFollowing, got.Kind)
	s.Equal(5.0, got.Parameters["short_window"])
	s.Equal(1000.0, got.Risk.MaxPositionSize)
	s.Equal("model-v1", got.ModelRef.TakeOr(""))
	s.True(got.Active)
}

func (s *StoreTestSuite) TestPriceQueries() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]types.PricePoint, 5)
	for i := range points {
		points[i] = types.PricePoint{
			AssetID: "asset-1",
			Symbol:  "BTCUSDT",
			Time:    base.Add(time.Duration(i) * time.Hour),
			Open:    10,
			High:    11,
			Low:     9,
			Close:   10 + float64(i),
			Volume:  100,
		}
	}
	s.Require().NoError(s.store.InsertPricePoints(s.ctx, points))

	recent, err := s.store.GetRecentPrices(s.ctx, "asset-1", base.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(13.0, recent[0].Close)
	s.Equal(14.0, recent[1].Close)

	hist, err := s.store.GetHistoricalPrices(s.ctx, "asset-1", base, base.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(hist, 3)
	s.Equal(10.0, hist[0].Close)

	none, err := s.store.GetRecentPrices(s.ctx, "asset-2", base)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreTestSuite) TestTradesRoundTrip() {
	trade := types.Trade{
		ID:         "trade-1",
		SignalID:   "sig-1",
		AssetID:    "asset-1",
		Symbol:     "BTCUSDT",
		Side:       types.SideBuy,
		StrategyID: "strat-1",
		Time:       time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Price:      100,
		Quantity:   2,
		Commission: 0.2,
		Status:     types.TradeStatusFilled,
	}
	s.Require().NoError(s.store.PersistTrade(s.ctx, trade))

	trades, err := s.store.ListTrades(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(trades, 1)
	s.Equal(trade, trades[0])
}

func (s *StoreTestSuite) TestPersistPortfolioSnapshot() {
	snap := types.PortfolioSnapshot{
		Time:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Cash:   9000,
		Equity: 10000,
		Positions: map[string]types.Position{
			"asset-1": {AssetID: "asset-1", Symbol: "BTCUSDT", Quantity: 10, AvgEntryPrice: 100, LastPrice: 100},
		},
		TradeCount: 1,
	}
	s.Require().NoError(s.store.PersistPortfolioSnapshot(s.ctx, snap))
}
