package strategy

import (
	"context"
	"math"

	"github.com/helios-quant/helios-trading/internal/predict"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// ML-predictive parameter names and defaults.
const (
	paramPredictWindow   = "predict_window"
	paramChangeThreshold = "change_threshold"
	paramConfidenceFloor = "confidence_floor"
	defaultPredictWindow = 60
	defaultChangeThresh  = 0.02
	defaultConfidenceFlr = 0.7
)

// mlPredictivePolicy asks an external model for a price forecast and
// signals when the predicted relative move clears a threshold with
// sufficient model confidence.
type mlPredictivePolicy struct {
	predictor predict.Predictor
}

func (p *mlPredictivePolicy) Kind() types.StrategyKind {
	return types.StrategyKindMLPredictive
}

func (p *mlPredictivePolicy) Window(cfg types.StrategyConfig) int {
	return int(cfg.Param(paramPredictWindow, defaultPredictWindow))
}

func (p *mlPredictivePolicy) Evaluate(ctx context.Context, cfg types.StrategyConfig, window []types.PricePoint) ([]types.TradingSignal, error) {
	if len(window) == 0 {
		return nil, nil
	}
	// No model, no signal. An unconfigured model reference is an
	// operator state, not an evaluation failure.
	modelRef, err := cfg.ModelRef.Take()
	if err != nil || modelRef == "" {
		return nil, nil
	}
	if p.predictor == nil {
		return nil, errors.New(errors.ErrCodePredictorUnavailable, "ml strategy configured without a predictor")
	}

	threshold := cfg.Param(paramChangeThreshold, defaultChangeThresh)
	floor := cfg.Param(paramConfidenceFloor, defaultConfidenceFlr)

	prices := types.ClosePrices(window)
	latest := window[len(window)-1]

	prediction, err := p.predictor.Predict(ctx, modelRef, prices)
	if err != nil {
		// An untrained or missing model means the strategy sits out
		// this tick rather than poisoning the evaluation cycle.
		if errors.HasCode(err, errors.ErrCodePredictorUnavailable) {
			return nil, nil
		}

		return nil, errors.Wrapf(errors.ErrCodeStrategyEvalError, err, "prediction failed for model %s", modelRef)
	}

	if prediction.Confidence < floor || latest.Close <= 0 {
		return nil, nil
	}

	change := (prediction.Price - latest.Close) / latest.Close
	if math.Abs(change) <= threshold {
		return nil, nil
	}

	side := types.SideBuy
	if change < 0 {
		side = types.SideSell
	}

	strength := math.Min(math.Abs(change)*10, 1)
	sig := newSignal(cfg, latest, side, prediction.Confidence, strength, 1-prediction.Confidence)

	return []types.TradingSignal{sig}, nil
}
