package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestOrderValidate(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		order       Order
		shouldError bool
	}{
		{
			name: "valid market order",
			order: Order{
				ID: uuid.New().String(), Symbol: "AAPL", Time: now,
				OrderType: OrderTypeMarket, Side: PurchaseTypeBuy, Quantity: 10, ReferencePrice: 150,
			},
		},
		{
			name: "zero quantity is a valid no-op",
			order: Order{
				ID: uuid.New().String(), Symbol: "AAPL", Time: now,
				OrderType: OrderTypeLimit, Side: PurchaseTypeBuy, Quantity: 0, ReferencePrice: 150,
			},
		},
		{
			name: "negative quantity",
			order: Order{
				ID: uuid.New().String(), Symbol: "AAPL", Time: now,
				OrderType: OrderTypeMarket, Side: PurchaseTypeSell, Quantity: -1, ReferencePrice: 150,
			},
			shouldError: true,
		},
		{
			name: "unknown order type",
			order: Order{
				ID: uuid.New().String(), Symbol: "AAPL", Time: now,
				OrderType: "STOP", Side: PurchaseTypeSell, Quantity: 1, ReferencePrice: 150,
			},
			shouldError: true,
		},
		{
			name: "missing id",
			order: Order{
				Symbol: "AAPL", Time: now,
				OrderType: OrderTypeMarket, Side: PurchaseTypeSell, Quantity: 1, ReferencePrice: 150,
			},
			shouldError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.order.Validate()
			if tc.shouldError {
				assert.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidOrder))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderNotional(t *testing.T) {
	order := Order{Quantity: 25, ReferencePrice: 50}
	assert.Equal(t, 1250.0, order.Notional())
}
