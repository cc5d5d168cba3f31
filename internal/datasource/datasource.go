// Package datasource loads raw per-symbol bar series for the historical feed.
package datasource

import (
	"context"
	"slices"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// BarLoader fetches the raw series of one symbol within [start, end).
// Either bound may be absent. An empty result with a nil error means the
// symbol has no data in range.
type BarLoader interface {
	LoadBars(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error)
}

// BarFetcher is a vendor client able to return bars for a closed time range.
type BarFetcher interface {
	FetchBars(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, to time.Time) ([]types.Bar, error)
}

// Normalize sorts bars by time, keeps the last bar for a duplicated
// timestamp, drops bars outside [start, end) and stamps every bar with symbol.
func Normalize(symbol string, bars []types.Bar, start optional.Option[time.Time], end optional.Option[time.Time]) []types.Bar {
	sorted := slices.Clone(bars)
	slices.SortStableFunc(sorted, func(a, b types.Bar) int {
		return a.Time.Compare(b.Time)
	})

	result := make([]types.Bar, 0, len(sorted))

	for _, bar := range sorted {
		if start.IsSome() && bar.Time.Before(start.Unwrap()) {
			continue
		}

		if end.IsSome() && !bar.Time.Before(end.Unwrap()) {
			continue
		}

		bar.Symbol = symbol

		if n := len(result); n > 0 && result[n-1].Time.Equal(bar.Time) {
			result[n-1] = bar

			continue
		}

		result = append(result, bar)
	}

	return result
}
