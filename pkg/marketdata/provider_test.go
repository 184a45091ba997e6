package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-quant/helios-trading/pkg/errors"
)

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ProviderBinance, "")
	require.NoError(t, err)
	assert.IsType(t, &BinanceProvider{}, p)

	p, err = NewProvider(ProviderPolygon, "test-key")
	require.NoError(t, err)
	assert.IsType(t, &PolygonProvider{}, p)
}

func TestNewProviderPolygonRequiresKey(t *testing.T) {
	_, err := NewProvider(ProviderPolygon, "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("bloomberg", "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
