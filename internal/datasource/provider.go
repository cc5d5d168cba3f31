package datasource

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"go.uber.org/zap"
)

// ProviderLoader replays bars straight from a vendor instead of a local file.
type ProviderLoader struct {
	fetcher   BarFetcher
	timeframe types.Timeframe
	now       func() time.Time
	logger    *logger.Logger
}

// NewProviderLoader wraps fetcher. A missing end bound defaults to now.
func NewProviderLoader(fetcher BarFetcher, timeframe types.Timeframe, logger *logger.Logger) *ProviderLoader {
	return &ProviderLoader{
		fetcher:   fetcher,
		timeframe: timeframe,
		now:       time.Now,
		logger:    logger,
	}
}

// LoadBars implements BarLoader.
func (p *ProviderLoader) LoadBars(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	if start.IsNone() {
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "start date is required to replay %s from a vendor", symbol)
	}

	to := end.TakeOr(p.now())

	p.logger.Debug("Fetching bars from vendor",
		zap.String("symbol", symbol),
		zap.Time("from", start.Unwrap()),
		zap.Time("to", to),
		zap.String("timeframe", p.timeframe.String()),
	)

	bars, err := p.fetcher.FetchBars(ctx, symbol, p.timeframe, start.Unwrap(), to)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to fetch bars for %s", symbol)
	}

	return Normalize(symbol, bars, start, end), nil
}
