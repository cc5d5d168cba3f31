package provider

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// polygonAggregate maps a timeframe to Polygon's multiplier and timespan.
func polygonAggregate(timeframe types.Timeframe) (int, models.Timespan, error) {
	switch timeframe {
	case types.Timeframe1Min:
		return 1, models.Minute, nil
	case types.Timeframe5Min:
		return 5, models.Minute, nil
	case types.Timeframe15Min:
		return 15, models.Minute, nil
	case types.TimeframeDay, types.Timeframe1D:
		return 1, models.Day, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for Polygon: %s", timeframe)
	}
}

// binanceInterval maps a timeframe to a Binance kline interval.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func binanceInterval(timeframe types.Timeframe) (string, error) {
	switch timeframe {
	case types.Timeframe1Min:
		return "1m", nil
	case types.Timeframe5Min:
		return "5m", nil
	case types.Timeframe15Min:
		return "15m", nil
	case types.TimeframeDay, types.Timeframe1D:
		return "1d", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for Binance: %s", timeframe)
	}
}
