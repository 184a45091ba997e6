package marketdata

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// PolygonProvider fetches daily aggregates from the Polygon REST API.
type PolygonProvider struct {
	client *polygon.Client
}

// NewPolygonProvider creates a Polygon client with the given API key.
func NewPolygonProvider(apiKey string) *PolygonProvider {
	return &PolygonProvider{
		client: polygon.New(apiKey),
	}
}

func (p *PolygonProvider) FetchBars(ctx context.Context, asset types.Asset, start, end time.Time, onProgress OnFetchProgress) ([]types.PricePoint, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     asset.Symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	totalDays := end.Sub(start).Hours()/24 + 1

	var points []types.PricePoint

	iter := p.client.ListAggs(ctx, params)
	for iter.Next() {
		agg := iter.Item()
		at := time.Time(agg.Timestamp).UTC()
		points = append(points, types.PricePoint{
			AssetID: asset.ID,
			Symbol:  asset.Symbol,
			Time:    at,
			Open:    agg.Open,
			High:    agg.High,
			Low:     agg.Low,
			Close:   agg.Close,
			Volume:  agg.Volume,
		})

		if onProgress != nil && len(points)%100 == 0 {
			onProgress(at.Sub(start).Hours()/24, totalDays, "downloading "+asset.Symbol+" aggregates")
		}
	}
	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "failed to list aggregates for %s", asset.Symbol)
	}

	return points, nil
}
