package types

import "time"

type EventType string

const (
	EventTypeMarket EventType = "MARKET"
	EventTypeSignal EventType = "SIGNAL"
	EventTypeOrder  EventType = "ORDER"
)

// Event is anything that travels on the engine's event queue.
type Event interface {
	Type() EventType
}

// MarketEvent announces that the feed advanced one step. Time is the
// calendar slot just appended, or the zero time when nothing was appended.
type MarketEvent struct {
	Time time.Time
}

func (MarketEvent) Type() EventType {
	return EventTypeMarket
}
