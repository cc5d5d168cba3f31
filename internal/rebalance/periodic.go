package rebalance

import (
	"github.com/rxtech-lab/argo-replay/internal/events"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// PeriodicFullExit flattens every position during the first WindowDays days
// of each calendar year.
type PeriodicFullExit struct {
	windowDays int
	sink       events.Sink
}

func NewPeriodicFullExit(windowDays int, sink events.Sink) *PeriodicFullExit {
	return &PeriodicFullExit{windowDays: windowDays, sink: sink}
}

func (p *PeriodicFullExit) Name() string {
	return string(PolicyPeriodicFullExit)
}

// NeedsRebalance is true while the snapshot's day of year is at most windowDays.
func (p *PeriodicFullExit) NeedsRebalance(snapshot types.Snapshot) bool {
	if snapshot.Timestamp.IsZero() {
		return false
	}

	return snapshot.Timestamp.YearDay() <= p.windowDays
}

// Rebalance exits every held symbol, long or short.
func (p *PeriodicFullExit) Rebalance(symbols []string, snapshot types.Snapshot) []types.SignalEvent {
	var signals []types.SignalEvent

	for _, symbol := range symbols {
		if signal, ok := exitSignal(symbol, snapshot.Positions.Quantity(symbol), snapshot, p.Name()); ok {
			signals = append(signals, signal)
		}
	}

	return emit(p.sink, signals)
}
