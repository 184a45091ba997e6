package mocks

//go:generate mockgen -destination=./mock_predictor.go -package=mocks github.com/helios-quant/helios-trading/internal/predict Predictor
//go:generate mockgen -destination=./mock_price_source.go -package=mocks github.com/helios-quant/helios-trading/internal/engine PriceSource,TradeSink
