// Package strategy holds the signal-generation contract and the built-in
// strategies selectable from configuration.
package strategy

import (
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// Strategy reacts to a market event by reading the feed and returning signals.
type Strategy interface {
	Name() string
	CalculateSignals(event types.MarketEvent, bars feed.BarReader) ([]types.SignalEvent, error)
}

const (
	NameBuyAndHold             = "buy_and_hold"
	NameMovingAverageCrossover = "ma_crossover"
)

// Options configures New.
type Options struct {
	Name        string
	ShortWindow int
	LongWindow  int
}

// New builds the strategy named by options.Name.
func New(options Options) (Strategy, error) {
	switch options.Name {
	case NameBuyAndHold:
		return NewBuyAndHold(), nil
	case NameMovingAverageCrossover:
		return NewMovingAverageCrossover(options.ShortWindow, options.LongWindow)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown strategy %q", options.Name)
	}
}
