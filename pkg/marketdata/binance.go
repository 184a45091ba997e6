package marketdata

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// binancePageSize is the kline page limit of the Binance REST API.
const binancePageSize = 500

// BinanceProvider fetches daily klines from the public Binance API.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates an unauthenticated Binance client; kline
// endpoints do not require credentials.
func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
	}
}

func (p *BinanceProvider) FetchBars(ctx context.Context, asset types.Asset, start, end time.Time, onProgress OnFetchProgress) ([]types.PricePoint, error) {
	startMillis := start.UnixMilli()
	endMillis := end.UnixMilli()
	current := startMillis

	var points []types.PricePoint

	for {
		klines, err := p.client.NewKlinesService().
			Symbol(asset.Symbol).
			Interval("1d").
			StartTime(current).
			EndTime(endMillis).
			Limit(binancePageSize).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s", asset.Symbol)
		}

		page, err := p.convert(asset, klines)
		if err != nil {
			return nil, err
		}
		points = append(points, page...)

		if onProgress != nil {
			onProgress(float64(current-startMillis), float64(endMillis-startMillis), "downloading "+asset.Symbol+" klines")
		}

		if len(klines) < binancePageSize {
			break
		}

		// Next page starts just past the last kline's close time.
		current = klines[len(klines)-1].CloseTime + 1
		if current >= endMillis {
			break
		}
	}

	return points, nil
}

func (p *BinanceProvider) convert(asset types.Asset, klines []*binance.Kline) ([]types.PricePoint, error) {
	points := make([]types.PricePoint, 0, len(klines))
	for _, k := range klines {
		open, err := strconv.ParseFloat(k.Open, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "malformed open price", err)
		}
		high, err := strconv.ParseFloat(k.High, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "malformed high price", err)
		}
		low, err := strconv.ParseFloat(k.Low, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "malformed low price", err)
		}
		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "malformed close price", err)
		}
		volume, err := strconv.ParseFloat(k.Volume, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "malformed volume", err)
		}

		points = append(points, types.PricePoint{
			AssetID: asset.ID,
			Symbol:  asset.Symbol,
			Time:    time.UnixMilli(k.OpenTime).UTC(),
			Open:    open,
			High:    high,
			Low:     low,
			Close:   closePrice,
			Volume:  volume,
		})
	}

	return points, nil
}
