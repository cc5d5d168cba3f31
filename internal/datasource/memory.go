package datasource

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// MemoryLoader serves bars held in memory, keyed by symbol.
type MemoryLoader struct {
	series map[string][]types.Bar
}

// NewMemoryLoader groups bars by their Symbol field.
func NewMemoryLoader(bars []types.Bar) *MemoryLoader {
	series := make(map[string][]types.Bar)
	for _, bar := range bars {
		series[bar.Symbol] = append(series[bar.Symbol], bar)
	}

	return &MemoryLoader{series: series}
}

// LoadBars implements BarLoader.
func (m *MemoryLoader) LoadBars(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Normalize(symbol, m.series[symbol], start, end), nil
}
