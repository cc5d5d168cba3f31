// Package provider downloads and polls OHLCV bars from market data vendors.
package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// ConfigWriter configures the writer Download persists bars with.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download writes every bar for ticker in [startDate, endDate] to the
	// configured writer and returns the writer's output path.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, timeframe types.Timeframe, onProgress OnDownloadProgress) (path string, err error)
	// FetchBars returns the bars for symbol in [from, to], oldest first.
	FetchBars(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, to time.Time) ([]types.Bar, error)
}

// NewMarketDataProvider creates a provider by type. Polygon needs apiKey.
func NewMarketDataProvider(providerType ProviderType, apiKey string, log *logger.Logger) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient(log)
	case ProviderPolygon:
		return NewPolygonClient(apiKey, log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}
