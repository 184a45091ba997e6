package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-quant/helios-trading/internal/types"
)

func TestGenerateDeterministicWithSeed(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Count = 100

	first := NewDataGenerator(42).Generate(cfg)
	second := NewDataGenerator(42).Generate(cfg)

	assert.Equal(t, first, second)
}

func TestGenerateShape(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Count = 50
	cfg.Interval = time.Hour

	points := NewDataGenerator(1).Generate(cfg)
	require.Len(t, points, 50)

	for i, p := range points {
		assert.Greater(t, p.Close, 0.0)
		assert.GreaterOrEqual(t, p.High, p.Open)
		assert.GreaterOrEqual(t, p.High, p.Close)
		assert.LessOrEqual(t, p.Low, p.Open)
		assert.LessOrEqual(t, p.Low, p.Close)
		if i > 0 {
			assert.Equal(t, time.Hour, p.Time.Sub(points[i-1].Time))
		}
	}
}

func TestGenerateMultiAsset(t *testing.T) {
	assets := []types.Asset{
		{ID: "a1", Symbol: "AAA"},
		{ID: "a2", Symbol: "BBB"},
	}
	cfg := DefaultGeneratorConfig()
	cfg.Count = 10

	points := NewDataGenerator(7).GenerateMultiAsset(assets, cfg)
	require.Len(t, points, 20)
	assert.Equal(t, "a1", points[0].AssetID)
	assert.Equal(t, "a2", points[10].AssetID)
}
