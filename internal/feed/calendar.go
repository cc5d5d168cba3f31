package feed

import (
	"slices"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// BuildCalendar folds the timestamps of every listed symbol into one sorted,
// de-duplicated calendar.
func BuildCalendar(series map[string][]types.Bar, symbols []string) []time.Time {
	var calendar []time.Time

	for _, symbol := range symbols {
		calendar = unionTimes(calendar, series[symbol])
	}

	return calendar
}

// unionTimes merges the sorted calendar acc with the times of bars, which
// must be sorted and unique per symbol.
func unionTimes(acc []time.Time, bars []types.Bar) []time.Time {
	merged := make([]time.Time, 0, len(acc)+len(bars))

	i, j := 0, 0
	for i < len(acc) || j < len(bars) {
		var next time.Time

		switch {
		case j >= len(bars):
			next = acc[i]
			i++
		case i >= len(acc):
			next = bars[j].Time
			j++
		case acc[i].Before(bars[j].Time):
			next = acc[i]
			i++
		case bars[j].Time.Before(acc[i]):
			next = bars[j].Time
			j++
		default:
			next = acc[i]
			i++
			j++
		}

		if n := len(merged); n > 0 && merged[n-1].Equal(next) {
			continue
		}

		merged = append(merged, next)
	}

	return merged
}

// Align reindexes bars onto calendar. A slot with no bar of its own repeats
// the latest earlier bar; slots before the first bar get an empty bar.
func Align(symbol string, bars []types.Bar, calendar []time.Time) []types.Bar {
	aligned := make([]types.Bar, 0, len(calendar))

	var (
		last    types.Bar
		hasLast bool
		next    int
	)

	for _, slot := range calendar {
		for next < len(bars) && !bars[next].Time.After(slot) {
			last = bars[next]
			hasLast = true
			next++
		}

		if !hasLast {
			aligned = append(aligned, types.EmptyBar(symbol, slot))

			continue
		}

		bar := last.At(slot)
		bar.Symbol = symbol
		aligned = append(aligned, bar)
	}

	return aligned
}

// AlignAll builds the calendar and aligns every symbol onto it.
func AlignAll(series map[string][]types.Bar, symbols []string) ([]time.Time, map[string][]types.Bar) {
	calendar := BuildCalendar(series, symbols)

	aligned := make(map[string][]types.Bar, len(symbols))
	for _, symbol := range symbols {
		aligned[symbol] = Align(symbol, series[symbol], calendar)
	}

	return slices.Clip(calendar), aligned
}
