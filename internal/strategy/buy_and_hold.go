package strategy

import (
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// BuyAndHold goes long every symbol once, on its first real bar.
type BuyAndHold struct {
	bought map[string]bool
}

func NewBuyAndHold() *BuyAndHold {
	return &BuyAndHold{bought: make(map[string]bool)}
}

func (s *BuyAndHold) Name() string {
	return NameBuyAndHold
}

func (s *BuyAndHold) CalculateSignals(event types.MarketEvent, bars feed.BarReader) ([]types.SignalEvent, error) {
	var signals []types.SignalEvent

	for _, symbol := range bars.Symbols() {
		if s.bought[symbol] {
			continue
		}

		bar, ok := bars.LatestBar(symbol)
		if !ok || bar.IsEmpty() {
			continue
		}

		s.bought[symbol] = true
		signals = append(signals, types.SignalEvent{
			Symbol:    symbol,
			Time:      bar.Time,
			Direction: types.DirectionLong,
			Strength:  1,
			Source:    s.Name(),
		})
	}

	return signals, nil
}
