package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/stretchr/testify/suite"
)

type QueueTestSuite struct {
	suite.Suite
	queue *Queue
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, new(QueueTestSuite))
}

func (suite *QueueTestSuite) SetupTest() {
	suite.queue = NewQueue()
}

func (suite *QueueTestSuite) TestFIFOOrder() {
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	suite.queue.Put(types.MarketEvent{Time: t0})
	suite.queue.Put(types.SignalEvent{Symbol: "AAPL", Direction: types.DirectionLong})
	suite.queue.Put(types.OrderEvent{Order: types.Order{Symbol: "AAPL"}})
	suite.Equal(3, suite.queue.Len())

	first, ok := suite.queue.Get()
	suite.True(ok)
	suite.Equal(types.EventTypeMarket, first.Type())

	second, _ := suite.queue.Get()
	suite.Equal(types.EventTypeSignal, second.Type())

	third, _ := suite.queue.Get()
	suite.Equal(types.EventTypeOrder, third.Type())

	_, ok = suite.queue.Get()
	suite.False(ok)
}

func (suite *QueueTestSuite) TestPutNeverDrops() {
	for i := 0; i < 10000; i++ {
		suite.queue.Put(types.MarketEvent{})
	}

	suite.Equal(10000, suite.queue.Len())
}

func (suite *QueueTestSuite) TestDrainIncludesEventsPutByHandler() {
	suite.queue.Put(types.MarketEvent{})

	var seen []types.EventType
	err := suite.queue.Drain(context.Background(), func(event types.Event) error {
		seen = append(seen, event.Type())
		if event.Type() == types.EventTypeMarket {
			suite.queue.Put(types.SignalEvent{Symbol: "AAPL"})
			suite.queue.Put(types.SignalEvent{Symbol: "MSFT"})
		}

		return nil
	})

	suite.NoError(err)
	suite.Equal([]types.EventType{types.EventTypeMarket, types.EventTypeSignal, types.EventTypeSignal}, seen)
	suite.Equal(0, suite.queue.Len())
}

func (suite *QueueTestSuite) TestDrainStopsOnHandlerError() {
	suite.queue.Put(types.MarketEvent{})
	suite.queue.Put(types.MarketEvent{})

	boom := errors.New("boom")
	err := suite.queue.Drain(context.Background(), func(types.Event) error { return boom })

	suite.ErrorIs(err, boom)
	suite.Equal(1, suite.queue.Len())
}

func (suite *QueueTestSuite) TestDrainHonoursContext() {
	suite.queue.Put(types.MarketEvent{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := suite.queue.Drain(ctx, func(types.Event) error { return nil })
	suite.ErrorIs(err, context.Canceled)
	suite.Equal(1, suite.queue.Len())
}
