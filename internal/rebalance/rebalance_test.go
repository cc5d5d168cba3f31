package rebalance

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/events"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type stubBars map[string]types.Bar

func (s stubBars) LatestBars(symbol string, n int) []types.Bar {
	if bar, ok := s[symbol]; ok && n > 0 {
		return []types.Bar{bar}
	}

	return []types.Bar{}
}

func (s stubBars) LatestBar(symbol string) (types.Bar, bool) {
	bar, ok := s[symbol]

	return bar, ok
}

func (s stubBars) Symbols() []string {
	return nil
}

type RebalanceTestSuite struct {
	suite.Suite
	queue *events.Queue
}

func TestRebalanceSuite(t *testing.T) {
	suite.Run(t, new(RebalanceTestSuite))
}

func (suite *RebalanceTestSuite) SetupTest() {
	suite.queue = events.NewQueue()
}

func at(year int, month time.Month, day int) types.Snapshot {
	return types.Snapshot{Timestamp: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (suite *RebalanceTestSuite) TestNoRebalance() {
	trigger := NoRebalance{}

	suite.False(trigger.NeedsRebalance(at(2024, time.January, 1)))
	suite.Empty(trigger.Rebalance([]string{"AAPL"}, at(2024, time.January, 1)))
	suite.Equal("none", trigger.Name())
}

func (suite *RebalanceTestSuite) TestPeriodicWindow() {
	trigger := NewPeriodicFullExit(DefaultWindowDays, suite.queue)

	suite.True(trigger.NeedsRebalance(at(2024, time.January, 1)))
	suite.True(trigger.NeedsRebalance(at(2024, time.January, 2)))
	suite.True(trigger.NeedsRebalance(at(2024, time.January, 3)))
	suite.False(trigger.NeedsRebalance(at(2024, time.January, 4)))
	suite.False(trigger.NeedsRebalance(at(2024, time.January, 10)))
	suite.False(trigger.NeedsRebalance(types.Snapshot{}))
}

func (suite *RebalanceTestSuite) TestPeriodicExitsEveryHeldSymbol() {
	trigger := NewPeriodicFullExit(DefaultWindowDays, suite.queue)

	snapshot := at(2024, time.January, 2)
	snapshot.Positions = types.Positions{"AAPL": 10, "MSFT": -3, "TSLA": 0}

	signals := trigger.Rebalance([]string{"AAPL", "MSFT", "TSLA", "NVDA"}, snapshot)

	suite.Require().Len(signals, 2)
	suite.Equal("AAPL", signals[0].Symbol)
	suite.Equal(types.DirectionExitLong, signals[0].Direction)
	suite.Equal("MSFT", signals[1].Symbol)
	suite.Equal(types.DirectionExitShort, signals[1].Direction)
	suite.Equal(snapshot.Timestamp, signals[0].Time)
	suite.Equal("periodic_full_exit", signals[0].Source)

	suite.Equal(2, suite.queue.Len())
}

func (suite *RebalanceTestSuite) TestQuarterStart() {
	suite.True(IsQuarterStart(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	suite.True(IsQuarterStart(time.Date(2024, time.April, 1, 9, 30, 0, 0, time.UTC)))
	suite.True(IsQuarterStart(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	suite.True(IsQuarterStart(time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)))
	suite.False(IsQuarterStart(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	suite.False(IsQuarterStart(time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)))
	suite.False(IsQuarterStart(time.Time{}))
}

func (suite *RebalanceTestSuite) TestQuarterlyExitsOnlyLosers() {
	bars := stubBars{
		"LONGLOSS":  {Close: 90},
		"LONGWIN":   {Close: 110},
		"SHORTLOSS": {Close: 110},
		"SHORTWIN":  {Close: 90},
		"NOTRADE":   {Close: 50},
	}
	trigger := NewQuarterlyLossExit(bars, suite.queue)

	snapshot := at(2024, time.April, 1)
	snapshot.Positions = types.Positions{"LONGLOSS": 5, "LONGWIN": 5, "SHORTLOSS": -5, "SHORTWIN": -5, "NOTRADE": 5, "FLAT": 0}
	snapshot.LastTradePrices = map[string]float64{"LONGLOSS": 100, "LONGWIN": 100, "SHORTLOSS": 100, "SHORTWIN": 100, "FLAT": 100}

	suite.True(trigger.NeedsRebalance(snapshot))

	signals := trigger.Rebalance([]string{"LONGLOSS", "LONGWIN", "SHORTLOSS", "SHORTWIN", "NOTRADE", "FLAT", "UNKNOWN"}, snapshot)

	suite.Require().Len(signals, 2)
	suite.Equal("LONGLOSS", signals[0].Symbol)
	suite.Equal(types.DirectionExitLong, signals[0].Direction)
	suite.Equal("SHORTLOSS", signals[1].Symbol)
	suite.Equal(types.DirectionExitShort, signals[1].Direction)
	suite.Equal(2, suite.queue.Len())
}

func (suite *RebalanceTestSuite) TestNewTrigger() {
	trigger, err := NewTrigger(Options{}, stubBars{}, suite.queue)
	suite.NoError(err)
	suite.IsType(NoRebalance{}, trigger)

	trigger, err = NewTrigger(Options{Policy: PolicyPeriodicFullExit}, stubBars{}, suite.queue)
	suite.NoError(err)
	suite.True(trigger.NeedsRebalance(at(2023, time.January, 3)))
	suite.False(trigger.NeedsRebalance(at(2023, time.January, 4)))

	trigger, err = NewTrigger(Options{Policy: PolicyPeriodicFullExit, WindowDays: 10}, stubBars{}, suite.queue)
	suite.NoError(err)
	suite.True(trigger.NeedsRebalance(at(2023, time.January, 10)))

	trigger, err = NewTrigger(Options{Policy: PolicyQuarterlyLossExit}, stubBars{}, suite.queue)
	suite.NoError(err)
	suite.Equal("quarterly_loss_exit", trigger.Name())

	_, err = NewTrigger(Options{Policy: "monthly"}, stubBars{}, suite.queue)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPolicy))

	_, err = NewTrigger(Options{Policy: PolicyPeriodicFullExit, WindowDays: -1}, stubBars{}, suite.queue)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
