package rebalance

import (
	"time"

	"github.com/rxtech-lab/argo-replay/internal/events"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// QuarterlyLossExit exits losing positions on the first day of each quarter.
// A long loses when the latest close is below its last trade price; a short
// loses when the latest close is above it.
type QuarterlyLossExit struct {
	bars feed.BarReader
	sink events.Sink
}

func NewQuarterlyLossExit(bars feed.BarReader, sink events.Sink) *QuarterlyLossExit {
	return &QuarterlyLossExit{bars: bars, sink: sink}
}

func (q *QuarterlyLossExit) Name() string {
	return string(PolicyQuarterlyLossExit)
}

// NeedsRebalance is true on January, April, July and October 1st.
func (q *QuarterlyLossExit) NeedsRebalance(snapshot types.Snapshot) bool {
	return IsQuarterStart(snapshot.Timestamp)
}

// Rebalance exits the losing positions among symbols. Symbols without a
// last trade price or a replayed close are left alone.
func (q *QuarterlyLossExit) Rebalance(symbols []string, snapshot types.Snapshot) []types.SignalEvent {
	var signals []types.SignalEvent

	for _, symbol := range symbols {
		quantity := snapshot.Positions.Quantity(symbol)
		if quantity == 0 {
			continue
		}

		lastTrade, ok := snapshot.LastTradePrices[symbol]
		if !ok || lastTrade <= 0 {
			continue
		}

		bar, ok := q.bars.LatestBar(symbol)
		if !ok || bar.IsEmpty() {
			continue
		}

		losing := (quantity > 0 && bar.Close < lastTrade) || (quantity < 0 && bar.Close > lastTrade)
		if !losing {
			continue
		}

		if signal, ok := exitSignal(symbol, quantity, snapshot, q.Name()); ok {
			signals = append(signals, signal)
		}
	}

	return emit(q.sink, signals)
}

// IsQuarterStart reports whether t falls on the first calendar day of a quarter.
func IsQuarterStart(t time.Time) bool {
	if t.IsZero() || t.Day() != 1 {
		return false
	}

	switch t.Month() {
	case time.January, time.April, time.July, time.October:
		return true
	default:
		return false
	}
}
