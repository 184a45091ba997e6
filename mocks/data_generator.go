// Package mocks provides test doubles: a seeded market data generator
// and generated mocks for the collaborator interfaces.
package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/helios-quant/helios-trading/internal/types"
)

// DataGenerator generates realistic price series for testing and
// benchmarking. Use a fixed seed for reproducible results.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a generator with the given seed.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how price points are generated.
type GeneratorConfig struct {
	AssetID   string
	Symbol    string
	StartTime time.Time
	// Interval is the duration between bars.
	Interval time.Duration
	Count    int
	// InitialPrice is the starting price.
	InitialPrice float64
	// Volatility controls per-bar price movement (0.01 = 1%).
	Volatility float64
	// Trend is the total drift over the whole series, negative for
	// bearish.
	Trend float64
	// VolumeBase is the average volume per bar.
	VolumeBase float64
	// VolumeVariance is the relative variance in volume (0.0 to 1.0).
	VolumeVariance float64
}

// DefaultGeneratorConfig returns a sensible default configuration:
// daily bars, 1% volatility, neutral trend.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		AssetID:        "asset-test",
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       24 * time.Hour,
		Count:          252,
		InitialPrice:   100.0,
		Volatility:     0.01,
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a price series following geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.PricePoint {
	points := make([]types.PricePoint, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal draw.
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + priceChange + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, closePrice) + highExtension
		low := math.Min(open, closePrice) - lowExtension
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		points[i] = types.PricePoint{
			AssetID: config.AssetID,
			Symbol:  config.Symbol,
			Time:    currentTime,
			Open:    roundToDecimals(open, 4),
			High:    roundToDecimals(high, 4),
			Low:     roundToDecimals(low, 4),
			Close:   roundToDecimals(closePrice, 4),
			Volume:  roundToDecimals(volume, 2),
		}

		currentPrice = closePrice
		currentTime = currentTime.Add(config.Interval)
	}

	return points
}

// GenerateMultiAsset generates series for several assets, varying the
// initial price and volatility slightly per asset.
func (g *DataGenerator) GenerateMultiAsset(assets []types.Asset, baseConfig GeneratorConfig) []types.PricePoint {
	var all []types.PricePoint

	for _, asset := range assets {
		config := baseConfig
		config.AssetID = asset.ID
		config.Symbol = asset.Symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		all = append(all, g.Generate(config)...)
	}

	return all
}

func roundToDecimals(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))

	return math.Round(value*factor) / factor
}
