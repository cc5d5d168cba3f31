package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// binancePageSize is the default number of klines Binance returns per request.
const binancePageSize = 500

// BinanceKlinesService is the part of the klines request builder the client uses.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient creates klines requests.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceRESTClient struct {
	client *binance.Client
}

func (b *binanceRESTClient) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesService{service: b.client.NewKlinesService()}
}

type binanceKlinesService struct {
	service *binance.KlinesService
}

func (s *binanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service.Interval(interval)

	return s
}

func (s *binanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.MarketDataWriter
	logger    *logger.Logger
}

var _ Provider = (*BinanceClient)(nil)

// NewBinanceClient uses the public market data endpoints, which need no keys.
func NewBinanceClient(log *logger.Logger) (*BinanceClient, error) {
	return NewBinanceClientWithAPI(&binanceRESTClient{client: binance.NewClient("", "")}, log), nil
}

func NewBinanceClientWithAPI(apiClient BinanceAPIClient, log *logger.Logger) *BinanceClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BinanceClient{
		apiClient: apiClient,
		writer:    nil,
		logger:    log,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// pages requests klines page by page, starting each page 1ms after the close
// of the previous one, until a short page or endDate is reached.
func (c *BinanceClient) pages(ctx context.Context, ticker string, timeframe types.Timeframe, startDate time.Time, endDate time.Time, handle func(klines []*binance.Kline, cursor int64) error) error {
	interval, err := binanceInterval(timeframe)
	if err != nil {
		return err
	}

	cursor := startDate.UnixMilli()
	end := endDate.UnixMilli()

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(interval).
			StartTime(cursor).
			EndTime(end).
			Do(ctx)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", ticker)
		}

		if err := handle(klines, cursor); err != nil {
			return err
		}

		if len(klines) < binancePageSize {
			return nil
		}

		cursor = klines[len(klines)-1].CloseTime + 1
		if cursor >= end {
			return nil
		}
	}
}

// Download writes every kline in [startDate, endDate] to the configured writer.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, timeframe types.Timeframe, onProgress OnDownloadProgress) (path string, err error) {
	if _, err := binanceInterval(timeframe); err != nil {
		return "", err
	}

	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not configured")
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

	written := 0

	err = c.pages(ctx, ticker, timeframe, startDate, endDate, func(klines []*binance.Kline, cursor int64) error {
		if onProgress != nil {
			onProgress(float64(cursor-startDate.UnixMilli()), float64(endDate.Sub(startDate).Milliseconds()), fmt.Sprintf("Downloading %s klines from Binance", ticker))
		}

		bars, err := klinesToBars(ticker, klines)
		if err != nil {
			return err
		}

		for _, bar := range bars {
			if err := c.writer.Write(bar); err != nil {
				return err
			}
		}

		written += len(bars)

		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("Finished downloading",
		zap.String("ticker", ticker),
		zap.Int("bars", written),
	)

	return c.writer.Finalize()
}

// FetchBars collects every kline for symbol in [from, to].
func (c *BinanceClient) FetchBars(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, to time.Time) ([]types.Bar, error) {
	var all []types.Bar

	err := c.pages(ctx, symbol, timeframe, from, to, func(klines []*binance.Kline, _ int64) error {
		bars, err := klinesToBars(symbol, klines)
		if err != nil {
			return err
		}

		all = append(all, bars...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// klinesToBars stamps each kline with its open time.
func klinesToBars(ticker string, klines []*binance.Kline) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q for %s", raw, ticker)
			}

			values[i] = v
		}

		bars = append(bars, types.Bar{
			Symbol: ticker,
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}
