// Package marketdata fetches historical bars from external providers and
// converts them to the internal price point format for ingestion.
package marketdata

import (
	"context"
	"time"

	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// ProviderType selects a market data provider.
type ProviderType string

const (
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
)

// OnFetchProgress reports download progress while paging through a range.
type OnFetchProgress func(current, total float64, message string)

// Provider fetches historical daily bars for a symbol.
type Provider interface {
	// FetchBars returns bars for [start, end], oldest first. The asset
	// identifies whose series the points belong to.
	FetchBars(ctx context.Context, asset types.Asset, start, end time.Time, onProgress OnFetchProgress) ([]types.PricePoint, error)
}

// NewProvider creates a provider by type. Polygon needs an API key;
// Binance uses public kline endpoints.
func NewProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceProvider(), nil
	case ProviderPolygon:
		if apiKey == "" {
			return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon provider requires an api key")
		}

		return NewPolygonProvider(apiKey), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", providerType)
	}
}
