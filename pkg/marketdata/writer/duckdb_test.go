package writer

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func (suite *DuckDBWriterTestSuite) readParquet(path string) []types.Bar {
	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	rows, err := db.Query(`SELECT time, symbol, open, high, low, close, volume FROM read_parquet(?)`, path)
	suite.Require().NoError(err)
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar
		suite.Require().NoError(rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume))
		bar.Time = bar.Time.UTC()
		bars = append(bars, bar)
	}

	suite.Require().NoError(rows.Err())

	return bars
}

func (suite *DuckDBWriterTestSuite) write(path string, bars ...types.Bar) string {
	writer := NewDuckDBWriter(path, logger.NewNopLogger())
	suite.Require().NoError(writer.Initialize())

	defer func() {
		suite.NoError(writer.Close())
	}()

	for _, bar := range bars {
		suite.Require().NoError(writer.Write(bar))
	}

	out, err := writer.Finalize()
	suite.Require().NoError(err)

	return out
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	writer := NewDuckDBWriter(outputPath, logger.NewNopLogger())

	suite.Equal(outputPath, writer.GetOutputPath())
	suite.Nil(writer.db)
	suite.Nil(writer.tx)
	suite.Nil(writer.stmt)
}

func (suite *DuckDBWriterTestSuite) TestInitializeIsIdempotent() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "init.parquet"), logger.NewNopLogger())

	suite.NoError(writer.Initialize())
	db := writer.db
	suite.NoError(writer.Initialize())
	suite.Same(db, writer.db)
	suite.NotNil(writer.stmt)

	suite.NoError(writer.Close())
	suite.Nil(writer.db)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"), logger.NewNopLogger())

	err := writer.Write(types.Bar{Symbol: "AAPL", Time: day(1), Close: 1})
	suite.Equal(errors.ErrCodeMarketDataWriteFailed, errors.GetCode(err))

	_, err = writer.Finalize()
	suite.Equal(errors.ErrCodeMarketDataWriteFailed, errors.GetCode(err))
}

func (suite *DuckDBWriterTestSuite) TestFinalizeDedupesAndSorts() {
	path := suite.write(filepath.Join(suite.tempDir, "dedupe.parquet"),
		types.Bar{Symbol: "AAPL", Time: day(3), Close: 3},
		types.Bar{Symbol: "AAPL", Time: day(1), Close: 1},
		types.Bar{Symbol: "AAPL", Time: day(3), Close: 30},
		types.Bar{Symbol: "MSFT", Time: day(2), Close: 2},
	)

	bars := suite.readParquet(path)
	suite.Require().Len(bars, 3)
	suite.Equal("AAPL", bars[0].Symbol)
	suite.Equal(day(1), bars[0].Time)
	suite.Equal(day(3), bars[1].Time)
	suite.Equal(30.0, bars[1].Close)
	suite.Equal("MSFT", bars[2].Symbol)
}

func (suite *DuckDBWriterTestSuite) TestFinalizeMergesExistingFile() {
	path := filepath.Join(suite.tempDir, "merge.parquet")

	suite.write(path,
		types.Bar{Symbol: "AAPL", Time: day(1), Close: 1},
		types.Bar{Symbol: "AAPL", Time: day(2), Close: 2},
	)
	suite.write(path,
		types.Bar{Symbol: "AAPL", Time: day(2), Close: 20},
		types.Bar{Symbol: "AAPL", Time: day(3), Close: 3},
	)

	bars := suite.readParquet(path)
	suite.Require().Len(bars, 3)
	suite.Equal(1.0, bars[0].Close)
	suite.Equal(20.0, bars[1].Close)
	suite.Equal(3.0, bars[2].Close)
}

func (suite *DuckDBWriterTestSuite) TestCloseWithoutFinalize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "abandoned.parquet"), logger.NewNopLogger())
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(types.Bar{Symbol: "AAPL", Time: day(1), Close: 1}))

	suite.NoError(writer.Close())
	suite.NoFileExists(writer.GetOutputPath())
}
