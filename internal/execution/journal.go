package execution

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"go.uber.org/zap"
)

// Journal records every order it receives and never fills anything, so the
// account it reports stays at its opening state. Positions are valued at the
// latest close the feed has replayed.
type Journal struct {
	mu         sync.Mutex
	cash       float64
	positions  types.Positions
	lastTrades map[string]float64
	prices     feed.BarReader
	market     []types.Order
	limit      []types.Order
	logger     *logger.Logger
}

var (
	_ Executor = (*Journal)(nil)
	_ Account  = (*Journal)(nil)
)

// NewJournal opens an account with cash and positions. lastTrades holds the
// price each position was entered at and may be nil.
func NewJournal(cash float64, positions types.Positions, lastTrades map[string]float64, prices feed.BarReader, logger *logger.Logger) *Journal {
	if positions == nil {
		positions = types.Positions{}
	}

	if lastTrades == nil {
		lastTrades = map[string]float64{}
	}

	return &Journal{
		cash:       cash,
		positions:  maps.Clone(positions),
		lastTrades: maps.Clone(lastTrades),
		prices:     prices,
		logger:     logger,
	}
}

// ExecuteMarket implements Executor.
func (j *Journal) ExecuteMarket(ctx context.Context, order types.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	j.market = append(j.market, order)
	j.mu.Unlock()

	j.logger.Info("Market order received",
		zap.String("id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", order.Quantity),
		zap.Float64("reference_price", order.ReferencePrice),
	)

	return nil
}

// SubmitLimit implements Executor.
func (j *Journal) SubmitLimit(ctx context.Context, order types.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	j.limit = append(j.limit, order)
	j.mu.Unlock()

	j.logger.Info("Limit order queued",
		zap.String("id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", order.Quantity),
		zap.Float64("limit", order.ReferencePrice),
	)

	return nil
}

// Snapshot implements Account.
func (j *Journal) Snapshot(at time.Time) (types.Snapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	values := make(map[string]float64, len(j.positions))

	for symbol, quantity := range j.positions {
		price := j.lastTrades[symbol]
		if j.prices != nil {
			if bar, ok := j.prices.LatestBar(symbol); ok && !bar.IsEmpty() {
				price = bar.Close
			}
		}

		values[symbol] = quantity * price
	}

	snapshot := types.Snapshot{
		Timestamp: at,
		Positions: j.positions,
		Holdings: types.Holdings{
			Timestamp:    at,
			Cash:         j.cash,
			MarketValues: values,
		},
		LastTradePrices: j.lastTrades,
	}

	return snapshot.Clone(), nil
}

// MarketOrders returns the market orders received so far.
func (j *Journal) MarketOrders() []types.Order {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]types.Order, len(j.market))
	copy(out, j.market)

	return out
}

// LimitOrders returns the limit orders received so far.
func (j *Journal) LimitOrders() []types.Order {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]types.Order, len(j.limit))
	copy(out, j.limit)

	return out
}
