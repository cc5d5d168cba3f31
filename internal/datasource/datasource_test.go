package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	argoErrors "github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	bars := []types.Bar{
		{Time: day(3), Close: 3},
		{Time: day(1), Close: 1},
		{Time: day(2), Close: 2},
		{Time: day(2), Close: 22},
		{Time: day(5), Close: 5},
	}

	result := Normalize("AAPL", bars, optional.Some(day(2)), optional.Some(day(5)))

	require.Len(t, result, 2)
	assert.Equal(t, day(2), result[0].Time)
	assert.Equal(t, 22.0, result[0].Close, "duplicate timestamp keeps the last bar")
	assert.Equal(t, day(3), result[1].Time)

	for _, bar := range result {
		assert.Equal(t, "AAPL", bar.Symbol)
	}

	// the input is left untouched
	assert.Equal(t, day(3), bars[0].Time)
}

func TestNormalizeOpenBounds(t *testing.T) {
	bars := []types.Bar{{Time: day(2)}, {Time: day(1)}}

	result := Normalize("MSFT", bars, optional.None[time.Time](), optional.None[time.Time]())
	require.Len(t, result, 2)
	assert.Equal(t, day(1), result[0].Time)
}

func TestMemoryLoader(t *testing.T) {
	loader := NewMemoryLoader([]types.Bar{
		{Symbol: "AAPL", Time: day(1), Close: 1},
		{Symbol: "MSFT", Time: day(1), Close: 10},
		{Symbol: "AAPL", Time: day(2), Close: 2},
	})

	bars, err := loader.LoadBars(context.Background(), "AAPL", optional.None[time.Time](), optional.None[time.Time]())
	require.NoError(t, err)
	assert.Len(t, bars, 2)

	bars, err = loader.LoadBars(context.Background(), "TSLA", optional.None[time.Time](), optional.None[time.Time]())
	require.NoError(t, err)
	assert.Empty(t, bars)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = loader.LoadBars(ctx, "AAPL", optional.None[time.Time](), optional.None[time.Time]())
	assert.ErrorIs(t, err, context.Canceled)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchBars(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, to time.Time) ([]types.Bar, error) {
	args := m.Called(ctx, symbol, timeframe, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]types.Bar), args.Error(1)
}

func TestProviderLoader(t *testing.T) {
	fetcher := new(mockFetcher)
	loader := NewProviderLoader(fetcher, types.Timeframe1D, logger.NewNopLogger())

	fetcher.On("FetchBars", mock.Anything, "AAPL", types.Timeframe1D, day(1), day(3)).
		Return([]types.Bar{{Time: day(2), Close: 2}, {Time: day(1), Close: 1}, {Time: day(3), Close: 3}}, nil)

	bars, err := loader.LoadBars(context.Background(), "AAPL", optional.Some(day(1)), optional.Some(day(3)))
	require.NoError(t, err)
	require.Len(t, bars, 2, "end bound is exclusive")
	assert.Equal(t, day(1), bars[0].Time)
	fetcher.AssertExpectations(t)
}

func TestProviderLoaderErrors(t *testing.T) {
	fetcher := new(mockFetcher)
	loader := NewProviderLoader(fetcher, types.Timeframe1D, logger.NewNopLogger())
	loader.now = func() time.Time { return day(9) }

	_, err := loader.LoadBars(context.Background(), "AAPL", optional.None[time.Time](), optional.None[time.Time]())
	assert.True(t, argoErrors.HasCode(err, argoErrors.ErrCodeMissingParameter))

	fetcher.On("FetchBars", mock.Anything, "AAPL", types.Timeframe1D, day(1), day(9)).
		Return(nil, errors.New("rate limited"))

	_, err = loader.LoadBars(context.Background(), "AAPL", optional.Some(day(1)), optional.None[time.Time]())
	assert.True(t, argoErrors.HasCode(err, argoErrors.ErrCodeHistoricalDataFailed))
}

type DuckDBLoaderTestSuite struct {
	suite.Suite
	loader *DuckDBLoader
}

func TestDuckDBLoaderSuite(t *testing.T) {
	suite.Run(t, new(DuckDBLoaderTestSuite))
}

func (suite *DuckDBLoaderTestSuite) SetupTest() {
	path := filepath.Join(suite.T().TempDir(), "bars.csv")
	content := "time,symbol,open,high,low,close,volume\n" +
		"2024-01-01 00:00:00,AAPL,10,11,9,10.5,100\n" +
		"2024-01-02 00:00:00,AAPL,11,12,10,11.5,200\n" +
		"2024-01-03 00:00:00,AAPL,12,13,11,12.5,300\n" +
		"2024-01-02 00:00:00,MSFT,20,21,19,20.5,400\n"
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	loader, err := NewDuckDBLoader(path, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.loader = loader
}

func (suite *DuckDBLoaderTestSuite) TearDownTest() {
	if suite.loader != nil {
		suite.NoError(suite.loader.Close())
	}
}

func (suite *DuckDBLoaderTestSuite) TestLoadBarsRange() {
	bars, err := suite.loader.LoadBars(context.Background(), "AAPL", optional.Some(day(2)), optional.Some(day(3)))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 1)
	suite.Equal(day(2), bars[0].Time.UTC())
	suite.Equal(11.5, bars[0].Close)
	suite.Equal(200.0, bars[0].Volume)
}

func (suite *DuckDBLoaderTestSuite) TestLoadBarsAll() {
	bars, err := suite.loader.LoadBars(context.Background(), "AAPL", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Len(bars, 3)
	suite.True(bars[0].Time.Before(bars[1].Time))
}

func (suite *DuckDBLoaderTestSuite) TestLoadBarsUnknownSymbol() {
	bars, err := suite.loader.LoadBars(context.Background(), "TSLA", optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Empty(bars)
}

func (suite *DuckDBLoaderTestSuite) TestSymbols() {
	symbols, err := suite.loader.Symbols(context.Background())
	suite.NoError(err)
	suite.Equal([]string{"AAPL", "MSFT"}, symbols)
}

func (suite *DuckDBLoaderTestSuite) TestMissingFile() {
	_, err := NewDuckDBLoader(filepath.Join(suite.T().TempDir(), "missing.parquet"), logger.NewNopLogger())
	suite.Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeDataSourceUnavailable))
}
