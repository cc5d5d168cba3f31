package feed

import (
	"context"
	"slices"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-replay/internal/datasource"
	"github.com/rxtech-lab/argo-replay/internal/events"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"go.uber.org/zap"
)

// HistoricalConfig describes what a HistoricalFeed replays.
type HistoricalConfig struct {
	Symbols []string
	Start   optional.Option[time.Time]
	End     optional.Option[time.Time]
}

// HistoricalFeed drip-feeds aligned history one calendar slot per Advance.
type HistoricalFeed struct {
	symbols          []string
	calendar         []time.Time
	cursors          map[string]*ReplayCursor
	window           *BarWindow
	sink             events.Sink
	step             int
	continueBacktest bool
	logger           *logger.Logger
}

var _ Feed = (*HistoricalFeed)(nil)

// NewHistoricalFeed loads every symbol from loader, sorts and dedupes each
// series, drops symbols without data, aligns the rest onto their union calendar and positions a cursor
// before the first slot.
func NewHistoricalFeed(ctx context.Context, loader datasource.BarLoader, config HistoricalConfig, sink events.Sink, logger *logger.Logger) (*HistoricalFeed, error) {
	if len(config.Symbols) == 0 {
		return nil, errors.New(errors.ErrCodeMissingParameter, "at least one symbol is required")
	}

	series := make(map[string][]types.Bar, len(config.Symbols))
	active := make([]string, 0, len(config.Symbols))

	for _, symbol := range uniqueSymbols(config.Symbols) {
		bars, err := loader.LoadBars(ctx, symbol, config.Start, config.End)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to load bars for %s", symbol)
		}

		// loaders are not required to sort or dedupe
		bars = datasource.Normalize(symbol, bars, config.Start, config.End)
		if len(bars) == 0 {
			logger.Warn("No data for symbol, dropping it from the replay", zap.String("symbol", symbol))

			continue
		}

		series[symbol] = bars
		active = append(active, symbol)
	}

	if len(active) == 0 {
		return nil, errors.New(errors.ErrCodeNoDataFound, "no symbol has data in the requested range")
	}

	calendar, aligned := AlignAll(series, active)

	cursors := make(map[string]*ReplayCursor, len(active))
	window := NewBarWindow(0)

	for _, symbol := range active {
		cursors[symbol] = NewReplayCursor(aligned[symbol])
		window.Track(symbol)
	}

	logger.Info("Historical feed ready",
		zap.Strings("symbols", active),
		zap.Int("calendar_length", len(calendar)),
	)

	return &HistoricalFeed{
		symbols:          active,
		calendar:         calendar,
		cursors:          cursors,
		window:           window,
		sink:             sink,
		continueBacktest: true,
		logger:           logger,
	}, nil
}

// Advance appends the next aligned bar of every symbol. When any cursor is
// exhausted nothing is appended and ContinueBacktest turns false. Either way
// one MarketEvent is emitted.
func (f *HistoricalFeed) Advance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := types.MarketEvent{}

	if f.continueBacktest && !f.anyExhausted() {
		for _, symbol := range f.symbols {
			bar, _ := f.cursors[symbol].Next()
			f.window.Append(bar)
		}

		event.Time = f.calendar[f.step]
		f.step++
	} else {
		if f.continueBacktest {
			f.logger.Debug("Replay exhausted", zap.Int("steps", f.step))
		}

		f.continueBacktest = false
	}

	f.sink.Put(event)

	return nil
}

func (f *HistoricalFeed) anyExhausted() bool {
	for _, symbol := range f.symbols {
		if f.cursors[symbol].Exhausted() {
			return true
		}
	}

	return false
}

// LatestBars implements BarReader.
func (f *HistoricalFeed) LatestBars(symbol string, n int) []types.Bar {
	if !f.window.Has(symbol) {
		f.logger.Error("Symbol is not available in the historical feed", zap.String("symbol", symbol))

		return []types.Bar{}
	}

	return f.window.Last(symbol, n)
}

// LatestBar implements BarReader.
func (f *HistoricalFeed) LatestBar(symbol string) (types.Bar, bool) {
	bars := f.LatestBars(symbol, 1)
	if len(bars) == 0 {
		return types.Bar{}, false
	}

	return bars[0], true
}

// Symbols implements BarReader.
func (f *HistoricalFeed) Symbols() []string {
	return slices.Clone(f.symbols)
}

// ContinueBacktest implements Feed.
func (f *HistoricalFeed) ContinueBacktest() bool {
	return f.continueBacktest
}

// Live implements Feed.
func (f *HistoricalFeed) Live() bool {
	return false
}

// Calendar returns the aligned calendar.
func (f *HistoricalFeed) Calendar() []time.Time {
	return slices.Clone(f.calendar)
}
