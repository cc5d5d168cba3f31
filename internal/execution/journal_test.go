package execution

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/stretchr/testify/suite"
)

type priceMap map[string]types.Bar

func (p priceMap) LatestBars(symbol string, n int) []types.Bar {
	if bar, ok := p[symbol]; ok && n > 0 {
		return []types.Bar{bar}
	}

	return []types.Bar{}
}

func (p priceMap) LatestBar(symbol string) (types.Bar, bool) {
	bar, ok := p[symbol]

	return bar, ok
}

func (p priceMap) Symbols() []string {
	return nil
}

type JournalTestSuite struct {
	suite.Suite
	prices  priceMap
	journal *Journal
	now     time.Time
}

func TestJournalSuite(t *testing.T) {
	suite.Run(t, new(JournalTestSuite))
}

func (suite *JournalTestSuite) SetupTest() {
	suite.now = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	suite.prices = priceMap{"AAPL": {Symbol: "AAPL", Close: 120}}
	suite.journal = NewJournal(10000, types.Positions{"AAPL": 10, "MSFT": -2}, map[string]float64{"AAPL": 100, "MSFT": 300}, suite.prices, logger.NewNopLogger())
}

func (suite *JournalTestSuite) TestSnapshotValuesPositions() {
	snapshot, err := suite.journal.Snapshot(suite.now)
	suite.Require().NoError(err)

	suite.Equal(suite.now, snapshot.Timestamp)
	suite.Equal(suite.now, snapshot.Holdings.Timestamp)
	suite.Equal(10000.0, snapshot.Holdings.Cash)
	suite.Equal(1200.0, snapshot.Holdings.MarketValues["AAPL"])
	suite.Equal(-600.0, snapshot.Holdings.MarketValues["MSFT"], "falls back to the last trade price")
	suite.Equal(100.0, snapshot.LastTradePrices["AAPL"])
	suite.Equal(-2.0, snapshot.Positions.Quantity("MSFT"))
}

func (suite *JournalTestSuite) TestSnapshotIsACopy() {
	snapshot, _ := suite.journal.Snapshot(suite.now)
	snapshot.Positions["AAPL"] = 0

	again, _ := suite.journal.Snapshot(suite.now)
	suite.Equal(10.0, again.Positions.Quantity("AAPL"))
}

func (suite *JournalTestSuite) TestRecordsOrdersWithoutFilling() {
	ctx := context.Background()

	suite.Require().NoError(suite.journal.ExecuteMarket(ctx, types.Order{Symbol: "AAPL", Side: types.PurchaseTypeBuy, Quantity: 5}))
	suite.Require().NoError(suite.journal.SubmitLimit(ctx, types.Order{Symbol: "MSFT", Side: types.PurchaseTypeSell, Quantity: 1}))

	suite.Len(suite.journal.MarketOrders(), 1)
	suite.Len(suite.journal.LimitOrders(), 1)

	snapshot, _ := suite.journal.Snapshot(suite.now)
	suite.Equal(10.0, snapshot.Positions.Quantity("AAPL"))
	suite.Equal(10000.0, snapshot.Holdings.Cash)
}

func (suite *JournalTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite.ErrorIs(suite.journal.ExecuteMarket(ctx, types.Order{}), context.Canceled)
	suite.ErrorIs(suite.journal.SubmitLimit(ctx, types.Order{}), context.Canceled)
	suite.Empty(suite.journal.MarketOrders())
}

func (suite *JournalTestSuite) TestEmptyAccount() {
	journal := NewJournal(500, nil, nil, nil, logger.NewNopLogger())

	snapshot, err := journal.Snapshot(suite.now)
	suite.NoError(err)
	suite.Empty(snapshot.Positions)
	suite.Equal(500.0, snapshot.Holdings.Cash)
}
