// Package rebalance decides on which days the portfolio should be forced out
// of positions and emits the exit signals to do it.
package rebalance

import (
	"github.com/rxtech-lab/argo-replay/internal/events"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type Policy string

const (
	PolicyNone              Policy = "none"
	PolicyPeriodicFullExit  Policy = "periodic_full_exit"
	PolicyQuarterlyLossExit Policy = "quarterly_loss_exit"
)

// DefaultWindowDays makes PeriodicFullExit fire on the first three days of the year.
const DefaultWindowDays = 3

// Trigger is a calendar-driven rebalance policy.
type Trigger interface {
	// Name identifies the policy in signals, logs and metrics.
	Name() string
	// NeedsRebalance reports whether the snapshot's date calls for a rebalance.
	NeedsRebalance(snapshot types.Snapshot) bool
	// Rebalance emits exit signals for symbols and returns them.
	Rebalance(symbols []string, snapshot types.Snapshot) []types.SignalEvent
}

// Options configures NewTrigger.
type Options struct {
	Policy Policy
	// WindowDays only applies to PolicyPeriodicFullExit. Zero means DefaultWindowDays.
	WindowDays int
}

// NewTrigger builds the trigger named by options.Policy. An empty policy is PolicyNone.
func NewTrigger(options Options, bars feed.BarReader, sink events.Sink) (Trigger, error) {
	switch options.Policy {
	case PolicyNone, "":
		return NoRebalance{}, nil
	case PolicyPeriodicFullExit:
		if options.WindowDays < 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "rebalance window must not be negative, got %d", options.WindowDays)
		}

		window := options.WindowDays
		if window == 0 {
			window = DefaultWindowDays
		}

		return NewPeriodicFullExit(window, sink), nil
	case PolicyQuarterlyLossExit:
		return NewQuarterlyLossExit(bars, sink), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidPolicy, "unknown rebalance policy %q", options.Policy)
	}
}

// NoRebalance never fires.
type NoRebalance struct{}

func (NoRebalance) Name() string {
	return string(PolicyNone)
}

func (NoRebalance) NeedsRebalance(types.Snapshot) bool {
	return false
}

func (NoRebalance) Rebalance([]string, types.Snapshot) []types.SignalEvent {
	return nil
}

// exitSignal builds the exit for a held position, or false when flat.
func exitSignal(symbol string, quantity float64, snapshot types.Snapshot, source string) (types.SignalEvent, bool) {
	var direction types.Direction

	switch {
	case quantity > 0:
		direction = types.DirectionExitLong
	case quantity < 0:
		direction = types.DirectionExitShort
	default:
		return types.SignalEvent{}, false
	}

	return types.SignalEvent{
		Symbol:    symbol,
		Time:      snapshot.Timestamp,
		Direction: direction,
		Strength:  1,
		Source:    source,
	}, true
}

func emit(sink events.Sink, signals []types.SignalEvent) []types.SignalEvent {
	for _, signal := range signals {
		sink.Put(signal)
	}

	return signals
}
