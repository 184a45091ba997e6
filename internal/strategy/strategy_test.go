package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/helios-quant/helios-trading/internal/predict"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/mocks"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

func windowFromPrices(prices []float64) []types.PricePoint {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = types.PricePoint{
			AssetID: "asset-1",
			Symbol:  "BTCUSDT",
			Time:    base.Add(time.Duration(i) * 24 * time.Hour),
			Open:    p,
			High:    p,
			Low:     p,
			Close:   p,
			Volume:  1000,
		}
	}

	return points
}

func baseConfig(kind types.StrategyKind, params map[string]float64) types.StrategyConfig {
	return types.StrategyConfig{
		ID:         "strat-1",
		Name:       "test strategy",
		Kind:       kind,
		Parameters: params,
		Risk:       types.RiskLimits{MaxPositionSize: 1000},
		Active:     true,
	}
}

func TestNewPolicyClosedKindSet(t *testing.T) {
	for _, kind := range []types.StrategyKind{
		types.StrategyKindTrendFollowing,
		types.StrategyKindMeanReversion,
		types.StrategyKindMLPredictive,
	} {
		policy, err := NewPolicy(kind, Deps{})
		require.NoError(t, err)
		assert.Equal(t, kind, policy.Kind())
	}

	_, err := NewPolicy("MOMENTUM", Deps{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))
}

func TestUnsupportedKindsNeverSignal(t *testing.T) {
	window := windowFromPrices([]float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20})

	for _, kind := range []types.StrategyKind{
		types.StrategyKindArbitrage,
		types.StrategyKindMarketMaking,
		types.StrategyKindPairsTrading,
		types.StrategyKindQuantitative,
	} {
		policy, err := NewPolicy(kind, Deps{})
		require.NoError(t, err)

		signals, err := policy.Evaluate(context.Background(), baseConfig(kind, nil), window)
		require.NoError(t, err)
		assert.Empty(t, signals)
	}
}

func TestTrendFollowingCrossoverBuy(t *testing.T) {
	// Ten flat ticks, a decline, then a spike that pulls the short MA
	// above the long MA for the first time.
	prices := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 9, 9, 9, 9, 9, 9, 9, 9, 9, 20}
	cfg := baseConfig(types.StrategyKindTrendFollowing, map[string]float64{
		"short_window": 5,
		"long_window":  10,
	})

	policy, err := NewPolicy(types.StrategyKindTrendFollowing, Deps{})
	require.NoError(t, err)

	// No tick before the spike may emit a BUY.
	for i := 2; i < len(prices); i++ {
		signals, err := policy.Evaluate(context.Background(), cfg, windowFromPrices(prices[:i]))
		require.NoError(t, err)
		for _, sig := range signals {
			assert.NotEqual(t, types.SideBuy, sig.Side, "unexpected BUY at tick %d", i-1)
		}
	}

	signals, err := policy.Evaluate(context.Background(), cfg, windowFromPrices(prices))
	require.NoError(t, err)
	require.Len(t, signals, 1)

	sig := signals[0]
	assert.Equal(t, types.SideBuy, sig.Side)
	assert.Equal(t, "strat-1", sig.StrategyID)
	assert.Equal(t, 20.0, sig.Price)
	assert.InDelta(t, 1000.0/20.0, sig.Quantity, 1e-9)
	assert.InDelta(t, ruleConfidence, sig.Confidence, 1e-9)
}

func TestTrendFollowingFlatSeriesNoSignal(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 10
	}
	cfg := baseConfig(types.StrategyKindTrendFollowing, nil)

	policy, err := NewPolicy(types.StrategyKindTrendFollowing, Deps{})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), cfg, windowFromPrices(prices))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestTrendFollowingRSIFilterBlocksBuy(t *testing.T) {
	// Same crossover shape as the BUY test, but with a tight RSI
	// threshold the neutral reading blocks the entry.
	prices := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 9, 9, 9, 9, 9, 9, 9, 9, 9, 20}
	cfg := baseConfig(types.StrategyKindTrendFollowing, map[string]float64{
		"short_window":  5,
		"long_window":   10,
		"rsi_period":    30,
		"rsi_threshold": 40,
	})

	policy, err := NewPolicy(types.StrategyKindTrendFollowing, Deps{})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), cfg, windowFromPrices(prices))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestMeanReversionSpikeSell(t *testing.T) {
	// Twenty identical prices, then a tenfold spike: SELL on the spike
	// tick, nothing before.
	prices := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		prices = append(prices, 10)
	}
	prices = append(prices, 100)

	cfg := baseConfig(types.StrategyKindMeanReversion, map[string]float64{
		"lookback":         20,
		"zscore_threshold": 2.0,
	})

	policy, err := NewPolicy(types.StrategyKindMeanReversion, Deps{})
	require.NoError(t, err)

	for i := 1; i < len(prices); i++ {
		signals, err := policy.Evaluate(context.Background(), cfg, windowFromPrices(prices[:i]))
		require.NoError(t, err)
		assert.Empty(t, signals, "no signal expected at tick %d", i-1)
	}

	signals, err := policy.Evaluate(context.Background(), cfg, windowFromPrices(prices))
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, types.SideSell, signals[0].Side)
	assert.Equal(t, 100.0, signals[0].Price)
}

func TestMeanReversionDipBuy(t *testing.T) {
	prices := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 2}
	cfg := baseConfig(types.StrategyKindMeanReversion, nil)

	policy, err := NewPolicy(types.StrategyKindMeanReversion, Deps{})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), cfg, windowFromPrices(prices))
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, types.SideBuy, signals[0].Side)
}

func TestMeanReversionInsufficientWindow(t *testing.T) {
	cfg := baseConfig(types.StrategyKindMeanReversion, nil)

	policy, err := NewPolicy(types.StrategyKindMeanReversion, Deps{})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), cfg, windowFromPrices([]float64{10, 10, 10}))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

type stubPredictor struct {
	prediction predict.Prediction
	err        error
	gotModel   string
	gotPrices  []float64
}

func (s *stubPredictor) Predict(_ context.Context, modelRef string, prices []float64) (predict.Prediction, error) {
	s.gotModel = modelRef
	s.gotPrices = prices

	return s.prediction, s.err
}

func mlConfig(modelRef string) types.StrategyConfig {
	cfg := baseConfig(types.StrategyKindMLPredictive, nil)
	if modelRef != "" {
		cfg.ModelRef = optional.Some(modelRef)
	}

	return cfg
}

func TestMLPredictiveBuyOnPredictedRise(t *testing.T) {
	predictor := &stubPredictor{prediction: predict.Prediction{Price: 110, Confidence: 0.9}}
	policy, err := NewPolicy(types.StrategyKindMLPredictive, Deps{Predictor: predictor})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), mlConfig("model-v1"), windowFromPrices([]float64{98, 99, 100}))
	require.NoError(t, err)
	require.Len(t, signals, 1)

	sig := signals[0]
	assert.Equal(t, types.SideBuy, sig.Side)
	assert.InDelta(t, 0.9, sig.Confidence, 1e-9)
	assert.Equal(t, "model-v1", predictor.gotModel)
	assert.Equal(t, []float64{98, 99, 100}, predictor.gotPrices)
}

func TestMLPredictiveSellOnPredictedDrop(t *testing.T) {
	predictor := &stubPredictor{prediction: predict.Prediction{Price: 90, Confidence: 0.9}}
	policy, err := NewPolicy(types.StrategyKindMLPredictive, Deps{Predictor: predictor})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), mlConfig("model-v1"), windowFromPrices([]float64{100, 100, 100}))
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, types.SideSell, signals[0].Side)
}

func TestMLPredictiveSmallMoveNoSignal(t *testing.T) {
	predictor := &stubPredictor{prediction: predict.Prediction{Price: 101, Confidence: 0.9}}
	policy, err := NewPolicy(types.StrategyKindMLPredictive, Deps{Predictor: predictor})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), mlConfig("model-v1"), windowFromPrices([]float64{100, 100, 100}))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestMLPredictiveLowConfidenceNoSignal(t *testing.T) {
	predictor := &stubPredictor{prediction: predict.Prediction{Price: 150, Confidence: 0.5}}
	policy, err := NewPolicy(types.StrategyKindMLPredictive, Deps{Predictor: predictor})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), mlConfig("model-v1"), windowFromPrices([]float64{100, 100, 100}))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestMLPredictiveNoModelRefNoSignal(t *testing.T) {
	predictor := &stubPredictor{prediction: predict.Prediction{Price: 150, Confidence: 0.9}}
	policy, err := NewPolicy(types.StrategyKindMLPredictive, Deps{Predictor: predictor})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), mlConfig(""), windowFromPrices([]float64{100, 100, 100}))
	require.NoError(t, err)
	assert.Empty(t, signals)
	assert.Empty(t, predictor.gotModel)
}

func TestMLPredictiveUntrainedModelSitsOut(t *testing.T) {
	predictor := &stubPredictor{err: errors.New(errors.ErrCodePredictorUnavailable, "model not trained")}
	policy, err := NewPolicy(types.StrategyKindMLPredictive, Deps{Predictor: predictor})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), mlConfig("model-v1"), windowFromPrices([]float64{100, 100, 100}))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestMLPredictivePredictorErrorPropagates(t *testing.T) {
	predictor := &stubPredictor{err: errors.New(errors.ErrCodeUnknown, "inference timeout")}
	policy, err := NewPolicy(types.StrategyKindMLPredictive, Deps{Predictor: predictor})
	require.NoError(t, err)

	_, err = policy.Evaluate(context.Background(), mlConfig("model-v1"), windowFromPrices([]float64{100, 100, 100}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStrategyEvalError))
}

func TestMLPredictiveWithGeneratedMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	predictor := mocks.NewMockPredictor(ctrl)

	prices := []float64{100, 101, 102, 103, 104}
	window := windowFromPrices(prices)

	predictor.EXPECT().
		Predict(gomock.Any(), "models/btc-v3", prices).
		Return(predict.Prediction{Price: 115, Confidence: 0.9}, nil)

	cfg := baseConfig(types.StrategyKindMLPredictive, nil)
	cfg.ModelRef = optional.Some("models/btc-v3")

	policy, err := NewPolicy(types.StrategyKindMLPredictive, Deps{Predictor: predictor})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), cfg, window)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, types.SideBuy, signals[0].Side)
	assert.InDelta(t, 0.9, signals[0].Confidence, 1e-9)
}

func TestTrendFollowingRallyCrossoverNotSuppressed(t *testing.T) {
	// A deep dip followed by a steady rally: the short mean overtakes the
	// long mean exactly on the last tick, after six straight gains. Pure
	// gains mean zero average loss, which reads as neutral momentum and
	// must not block the entry.
	window := windowFromPrices([]float64{100, 100, 100, 100, 10, 11, 12, 13, 14, 15, 16, 17})
	cfg := baseConfig(types.StrategyKindTrendFollowing, map[string]float64{
		"short_window": 3,
		"long_window":  8,
		"rsi_period":   6,
	})

	policy, err := NewPolicy(types.StrategyKindTrendFollowing, Deps{})
	require.NoError(t, err)

	signals, err := policy.Evaluate(context.Background(), cfg, window)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, types.SideBuy, signals[0].Side)
}
