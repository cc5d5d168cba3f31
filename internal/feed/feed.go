// Package feed replays aligned bars one calendar step at a time, or polls a
// vendor for the latest bars, behind a single interface so strategies cannot
// tell a backtest from a live run.
package feed

import (
	"context"
	"slices"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// BarReader is the read side of a feed that strategies, sizers and
// rebalance policies consult.
type BarReader interface {
	// LatestBars returns up to n bars for symbol, most recent last. An
	// unknown symbol yields an empty slice.
	LatestBars(symbol string, n int) []types.Bar
	// LatestBar returns the most recent bar for symbol.
	LatestBar(symbol string) (types.Bar, bool)
	// Symbols returns the active symbols in configuration order.
	Symbols() []string
}

// Feed is a market data feed driven by the engine's tick loop.
type Feed interface {
	BarReader
	// Advance moves the feed one step and puts exactly one MarketEvent on the sink.
	Advance(ctx context.Context) error
	// ContinueBacktest is false once any symbol ran out of history. It never
	// flips back to true. Live feeds always report false.
	ContinueBacktest() bool
	// Live reports whether the feed polls a vendor.
	Live() bool
}

// QuoteProvider is the vendor collaborator used by the live feed.
type QuoteProvider interface {
	FetchBars(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, to time.Time) ([]types.Bar, error)
}

// uniqueSymbols drops repeated symbols, keeping first-seen order.
func uniqueSymbols(symbols []string) []string {
	unique := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if !slices.Contains(unique, symbol) {
			unique = append(unique, symbol)
		}
	}

	return unique
}
