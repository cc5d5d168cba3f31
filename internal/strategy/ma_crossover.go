package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// MovingAverageCrossover goes long when the short simple moving average of
// closes crosses above the long one and exits when it crosses back below.
type MovingAverageCrossover struct {
	shortWindow int
	longWindow  int
	invested    map[string]bool
}

func NewMovingAverageCrossover(shortWindow, longWindow int) (*MovingAverageCrossover, error) {
	if shortWindow <= 0 || longWindow <= 0 {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "moving average windows must be positive, got %d and %d", shortWindow, longWindow)
	}

	if shortWindow >= longWindow {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "short window %d must be below long window %d", shortWindow, longWindow)
	}

	return &MovingAverageCrossover{
		shortWindow: shortWindow,
		longWindow:  longWindow,
		invested:    make(map[string]bool),
	}, nil
}

func (s *MovingAverageCrossover) Name() string {
	return fmt.Sprintf("%s_%d_%d", NameMovingAverageCrossover, s.shortWindow, s.longWindow)
}

func (s *MovingAverageCrossover) CalculateSignals(event types.MarketEvent, bars feed.BarReader) ([]types.SignalEvent, error) {
	var signals []types.SignalEvent

	for _, symbol := range bars.Symbols() {
		history := bars.LatestBars(symbol, s.longWindow+1)

		direction, err := s.crossover(symbol, history)
		if errors.IsInsufficientDataError(err) {
			continue
		}

		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "crossover failed for %s", symbol)
		}

		if direction == "" {
			continue
		}

		signals = append(signals, types.SignalEvent{
			Symbol:    symbol,
			Time:      history[len(history)-1].Time,
			Direction: direction,
			Strength:  1,
			Source:    s.Name(),
		})
	}

	return signals, nil
}

// crossover compares the averages of the last longWindow closes with those
// one bar earlier. It returns an empty direction when nothing crossed.
func (s *MovingAverageCrossover) crossover(symbol string, history []types.Bar) (types.Direction, error) {
	if len(history) < s.longWindow+1 || history[0].IsEmpty() {
		return "", errors.NewInsufficientDataErrorf(s.longWindow+1, len(history), symbol,
			"need %d real bars for %s, have %d", s.longWindow+1, symbol, len(history))
	}

	current := history[1:]
	previous := history[:len(history)-1]

	shortNow, longNow := sma(current, s.shortWindow), sma(current, s.longWindow)
	shortPrev, longPrev := sma(previous, s.shortWindow), sma(previous, s.longWindow)

	switch {
	case shortNow > longNow && shortPrev <= longPrev && !s.invested[symbol]:
		s.invested[symbol] = true

		return types.DirectionLong, nil
	case shortNow < longNow && shortPrev >= longPrev && s.invested[symbol]:
		s.invested[symbol] = false

		return types.DirectionExit, nil
	default:
		return "", nil
	}
}

// sma averages the closes of the last period bars.
func sma(bars []types.Bar, period int) float64 {
	sum := 0.0
	for _, bar := range bars[len(bars)-period:] {
		sum += bar.Close
	}

	return sum / float64(period)
}
