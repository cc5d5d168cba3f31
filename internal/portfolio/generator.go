package portfolio

import (
	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// OrderGenerator sizes signals into orders of one order type, priced at the
// latest close the feed has replayed.
type OrderGenerator struct {
	orderType  types.OrderType
	targetSize float64
	prices     feed.BarReader
}

// NewOrderGenerator returns a generator for orderType. Use the limit or
// market constructors unless the type comes from configuration.
func NewOrderGenerator(orderType types.OrderType, targetSize float64, prices feed.BarReader) (*OrderGenerator, error) {
	if orderType != types.OrderTypeLimit && orderType != types.OrderTypeMarket {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported order type %q", orderType)
	}

	if targetSize < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "order size must not be negative, got %v", targetSize)
	}

	return &OrderGenerator{orderType: orderType, targetSize: targetSize, prices: prices}, nil
}

// NewLimitOrderGenerator builds LIMIT orders whose limit is the reference price.
func NewLimitOrderGenerator(targetSize float64, prices feed.BarReader) *OrderGenerator {
	return &OrderGenerator{orderType: types.OrderTypeLimit, targetSize: targetSize, prices: prices}
}

// NewMarketOrderGenerator builds MARKET orders.
func NewMarketOrderGenerator(targetSize float64, prices feed.BarReader) *OrderGenerator {
	return &OrderGenerator{orderType: types.OrderTypeMarket, targetSize: targetSize, prices: prices}
}

// OrderType returns the type of every order this generator builds.
func (g *OrderGenerator) OrderType() types.OrderType {
	return g.orderType
}

// Generate sizes signal against positions. A non-zero order needs a usable
// latest close; without one it fails with ErrCodeMarketDataMissing.
func (g *OrderGenerator) Generate(signal types.SignalEvent, positions types.Positions) (types.Order, error) {
	side, quantity, ok := SizeOrder(signal.Direction, positions.Quantity(signal.Symbol), g.targetSize)
	if !ok {
		return types.Order{}, errors.Newf(errors.ErrCodeInvalidOrder, "unknown signal direction %q", signal.Direction)
	}

	var price float64
	if bar, found := g.prices.LatestBar(signal.Symbol); found && !bar.IsEmpty() {
		price = bar.Close
	}

	if price <= 0 && quantity > 0 {
		return types.Order{}, errors.Newf(errors.ErrCodeMarketDataMissing, "no reference price for %s", signal.Symbol)
	}

	order := types.Order{
		ID:             uuid.New().String(),
		Symbol:         signal.Symbol,
		Time:           signal.Time,
		OrderType:      g.orderType,
		Side:           side,
		Quantity:       quantity,
		ReferencePrice: price,
		Source:         signal.Source,
	}

	if err := order.Validate(); err != nil {
		return types.Order{}, err
	}

	return order, nil
}
