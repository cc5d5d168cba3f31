package types

import "time"

// Direction is what a strategy or rebalance policy wants done with a symbol.
type Direction string

const (
	DirectionLong      Direction = "LONG"
	DirectionShort     Direction = "SHORT"
	DirectionExitLong  Direction = "EXIT_LONG"
	DirectionExitShort Direction = "EXIT_SHORT"
	DirectionExit      Direction = "EXIT"
)

// IsExit reports whether the direction flattens a position.
func (d Direction) IsExit() bool {
	return d == DirectionExit || d == DirectionExitLong || d == DirectionExitShort
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	switch d {
	case DirectionLong, DirectionShort, DirectionExitLong, DirectionExitShort, DirectionExit:
		return true
	default:
		return false
	}
}

// SignalEvent asks the portfolio to move a symbol in a direction.
type SignalEvent struct {
	Symbol    string    `json:"symbol" yaml:"symbol"`
	Time      time.Time `json:"time" yaml:"time"`
	Direction Direction `json:"direction" yaml:"direction"`
	// Strength is carried for the audit trail; sizing ignores it.
	Strength float64 `json:"strength" yaml:"strength"`
	// Source names the strategy or rebalance policy that emitted the signal.
	Source string `json:"source" yaml:"source"`
}

func (SignalEvent) Type() EventType {
	return EventTypeSignal
}
