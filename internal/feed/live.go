package feed

import (
	"context"
	"slices"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/events"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"go.uber.org/zap"
)

// DefaultLookback pads each live fetch so weekends and holidays still leave
// Window bars to expose.
const DefaultLookback = 4

// LiveConfig describes what a LiveFeed polls.
type LiveConfig struct {
	Symbols   []string
	Timeframe types.Timeframe
	// Window is the number of most recent bars exposed per symbol.
	Window int
	// Lookback is the number of extra bar intervals fetched beyond Window.
	Lookback int
	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time
}

// LiveFeed refreshes a bounded window of recent bars from a vendor on every Advance.
type LiveFeed struct {
	config   LiveConfig
	provider QuoteProvider
	window   *BarWindow
	sink     events.Sink
	now      func() time.Time
	logger   *logger.Logger
}

var _ Feed = (*LiveFeed)(nil)

func NewLiveFeed(provider QuoteProvider, config LiveConfig, sink events.Sink, logger *logger.Logger) (*LiveFeed, error) {
	if len(config.Symbols) == 0 {
		return nil, errors.New(errors.ErrCodeMissingParameter, "at least one symbol is required")
	}

	if config.Timeframe.Duration() == 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q", config.Timeframe)
	}

	if config.Window <= 0 {
		config.Window = 1
	}

	if config.Lookback < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "lookback must not be negative")
	}

	symbols := uniqueSymbols(config.Symbols)
	config.Symbols = symbols

	window := NewBarWindow(config.Window)
	for _, symbol := range symbols {
		window.Track(symbol)
	}

	now := config.Clock
	if now == nil {
		now = time.Now
	}

	return &LiveFeed{
		config:   config,
		provider: provider,
		window:   window,
		sink:     sink,
		now:      now,
		logger:   logger,
	}, nil
}

// Advance fetches [now - (Window+Lookback) intervals, now] for every symbol
// and keeps the last Window bars. Windows are only replaced once every symbol
// has been fetched; a fetch failure leaves them all untouched and is
// returned without emitting a MarketEvent.
func (f *LiveFeed) Advance(ctx context.Context) error {
	now := f.now()
	from := now.Add(-time.Duration(f.config.Window+f.config.Lookback) * f.config.Timeframe.Duration())

	fetched := make(map[string][]types.Bar, len(f.config.Symbols))

	for _, symbol := range f.config.Symbols {
		bars, err := f.provider.FetchBars(ctx, symbol, f.config.Timeframe, from, now)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeFeedAdvanceFailed, err, "failed to fetch live bars for %s", symbol)
		}

		slices.SortStableFunc(bars, func(a, b types.Bar) int {
			return a.Time.Compare(b.Time)
		})

		for i := range bars {
			bars[i].Symbol = symbol
		}

		fetched[symbol] = bars
	}

	for _, symbol := range f.config.Symbols {
		f.window.Replace(symbol, fetched[symbol])

		f.logger.Debug("Refreshed live bars",
			zap.String("symbol", symbol),
			zap.Int("fetched", len(fetched[symbol])),
			zap.Int("kept", f.window.Len(symbol)),
		)
	}

	f.sink.Put(types.MarketEvent{Time: now})

	return nil
}

// LatestBars implements BarReader.
func (f *LiveFeed) LatestBars(symbol string, n int) []types.Bar {
	if !f.window.Has(symbol) {
		f.logger.Error("Symbol is not available in the live feed", zap.String("symbol", symbol))

		return []types.Bar{}
	}

	return f.window.Last(symbol, n)
}

// LatestBar implements BarReader.
func (f *LiveFeed) LatestBar(symbol string) (types.Bar, bool) {
	bars := f.LatestBars(symbol, 1)
	if len(bars) == 0 {
		return types.Bar{}, false
	}

	return bars[0], true
}

// Symbols implements BarReader.
func (f *LiveFeed) Symbols() []string {
	return slices.Clone(f.config.Symbols)
}

// ContinueBacktest is always false: a live run ends when its context does.
func (f *LiveFeed) ContinueBacktest() bool {
	return false
}

// Live implements Feed.
func (f *LiveFeed) Live() bool {
	return true
}
