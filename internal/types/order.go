package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type PurchaseType string

type OrderType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Order is a sized instruction produced from a signal.
type Order struct {
	ID        string       `yaml:"id" json:"id" csv:"id" validate:"required,uuid"`
	Symbol    string       `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Time      time.Time    `yaml:"time" json:"time" csv:"time"`
	OrderType OrderType    `yaml:"order_type" json:"order_type" csv:"order_type" validate:"required,oneof=MARKET LIMIT"`
	Side      PurchaseType `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	// Quantity zero is a valid no-op order.
	Quantity float64 `yaml:"quantity" json:"quantity" csv:"quantity" validate:"gte=0"`
	// ReferencePrice is the latest close when the order was built. Limit
	// orders use it as their limit.
	ReferencePrice float64 `yaml:"reference_price" json:"reference_price" csv:"reference_price" validate:"gte=0"`
	// Source is copied from the signal that produced the order.
	Source string `yaml:"source" json:"source" csv:"source"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()

	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	return nil
}

// Notional is quantity times reference price.
func (o Order) Notional() float64 {
	return o.Quantity * o.ReferencePrice
}

// OrderEvent carries an admitted order to the executor.
type OrderEvent struct {
	Order Order
}

func (OrderEvent) Type() EventType {
	return EventTypeOrder
}
