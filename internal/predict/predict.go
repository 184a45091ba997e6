// Package predict defines the contract between the ML-predictive strategy
// policy and whatever serves model inference. The engine only depends on
// this interface; serving lives behind it.
package predict

import (
	"context"
)

// Prediction is a model's forecast for the next price of a series.
type Prediction struct {
	// Price is the predicted next price in quote currency.
	Price float64
	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64
}

// Predictor produces price forecasts for a trained model reference.
type Predictor interface {
	// Predict forecasts the next price given the recent close series,
	// ordered oldest to newest. Implementations must be safe for
	// concurrent use.
	Predict(ctx context.Context, modelRef string, prices []float64) (Prediction, error)
}
