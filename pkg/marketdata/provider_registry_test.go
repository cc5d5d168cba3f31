package marketdata

import (
	"testing"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSupportedProviders(t *testing.T) {
	assert.Equal(t, []string{"binance", "polygon"}, GetSupportedProviders())
}

func TestGetProviderInfo(t *testing.T) {
	t.Run("polygon needs a key", func(t *testing.T) {
		info, err := GetProviderInfo("polygon")
		require.NoError(t, err)
		assert.True(t, info.RequiresAuth)
		assert.Equal(t, "POLYGON_API_KEY", info.AuthEnv)
	})

	t.Run("binance is public", func(t *testing.T) {
		info, err := GetProviderInfo("binance")
		require.NoError(t, err)
		assert.False(t, info.RequiresAuth)
		assert.Equal(t, "Binance", info.DisplayName)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := GetProviderInfo("alpaca")
		assert.Equal(t, errors.ErrCodeInvalidProvider, errors.GetCode(err))
	})
}
