package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata/writer"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// PolygonAggsIterator is the part of the Polygon aggregates iterator the client uses.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the part of the Polygon REST client the client uses.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonRESTClient struct {
	client *polygon.Client
}

func (p *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return p.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.MarketDataWriter
	logger    *logger.Logger
}

var _ Provider = (*PolygonClient)(nil)

func NewPolygonClient(apiKey string, log *logger.Logger) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonRESTClient{client: polygon.New(apiKey)}, log), nil
}

// NewPolygonClientWithAPI wraps an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient, log *logger.Logger) *PolygonClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PolygonClient{
		apiClient: apiClient,
		writer:    nil,
		logger:    log,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

func (c *PolygonClient) aggs(ctx context.Context, ticker string, timeframe types.Timeframe, from time.Time, to time.Time) (PolygonAggsIterator, error) {
	multiplier, timespan, err := polygonAggregate(timeframe)
	if err != nil {
		return nil, err
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithLimit(50000)

	return c.apiClient.ListAggs(ctx, params), nil
}

func aggToBar(ticker string, agg models.Agg) types.Bar {
	return types.Bar{
		Symbol: ticker,
		Time:   time.Time(agg.Timestamp).UTC(),
		Open:   agg.Open,
		High:   agg.High,
		Low:    agg.Low,
		Close:  agg.Close,
		Volume: agg.Volume,
	}
}

// Download streams every aggregate into the configured writer, reporting
// progress in days covered.
func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, timeframe types.Timeframe, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured for PolygonClient. Call ConfigWriter first")
	}

	iter, err := c.aggs(ctx, ticker, timeframe, startDate, endDate)
	if err != nil {
		return "", err
	}

	if err = c.writer.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				c.logger.Warn("Failed to close writer after another error", zap.Error(cerr))
			}
		}
	}()

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
	bar := progressbar.NewOptions(totalDays,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)),
		progressbar.OptionShowCount(),
	)

	processed := 0

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		agg := iter.Item()
		if err := c.writer.Write(aggToBar(ticker, agg)); err != nil {
			return "", err
		}

		processed++

		daysElapsed := int(time.Time(agg.Timestamp).Sub(startDate).Hours() / 24)
		if processed%1000 == 0 {
			_ = bar.Set(daysElapsed)
		}

		if onProgress != nil {
			onProgress(float64(daysElapsed), float64(totalDays), fmt.Sprintf("Downloading %s", ticker))
		}
	}

	if err := iter.Err(); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "error iterating polygon aggregates for %s", ticker)
	}

	_ = bar.Finish()

	c.logger.Info("Finished downloading",
		zap.String("ticker", ticker),
		zap.Int("bars", processed),
	)

	return c.writer.Finalize()
}

// FetchBars collects the aggregates for symbol in [from, to].
func (c *PolygonClient) FetchBars(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, to time.Time) ([]types.Bar, error) {
	iter, err := c.aggs(ctx, symbol, timeframe, from, to)
	if err != nil {
		return nil, err
	}

	var bars []types.Bar
	for iter.Next() {
		bars = append(bars, aggToBar(symbol, iter.Item()))
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch polygon aggregates for %s", symbol)
	}

	return bars, nil
}
