package portfolio

import (
	"github.com/rxtech-lab/argo-replay/internal/audit"
	"github.com/rxtech-lab/argo-replay/internal/events"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/metrics"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ReasonInsufficientCash     = "insufficient_cash"
	ReasonInsufficientHoldings = "insufficient_holdings"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Admitted bool
	// Reason is set when the order was rejected.
	Reason   string
	Notional decimal.Decimal
}

// Admission checks orders against the account and routes the ones it can
// afford: LIMIT orders to the pending sink, MARKET orders to the immediate sink.
type Admission struct {
	pendingLimit events.Sink
	immediate    events.Sink
	audit        audit.Recorder
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewAdmission(pendingLimit events.Sink, immediate events.Sink, recorder audit.Recorder, m *metrics.Metrics, logger *logger.Logger) *Admission {
	return &Admission{
		pendingLimit: pendingLimit,
		immediate:    immediate,
		audit:        recorder,
		metrics:      m,
		logger:       logger,
	}
}

// Check applies the cash rule without routing anything. Zero quantity is
// always admitted. A BUY needs cash strictly above the notional; a SELL needs
// the sum of all holdings strictly above it.
func Check(order types.Order, holdings types.Holdings) Decision {
	notional := decimal.NewFromFloat(order.Quantity).Mul(decimal.NewFromFloat(order.ReferencePrice))

	if order.Quantity == 0 {
		return Decision{Admitted: true, Notional: notional}
	}

	switch order.Side {
	case types.PurchaseTypeBuy:
		if decimal.NewFromFloat(holdings.Cash).GreaterThan(notional) {
			return Decision{Admitted: true, Notional: notional}
		}

		return Decision{Reason: ReasonInsufficientCash, Notional: notional}
	default:
		if holdings.Total().GreaterThan(notional) {
			return Decision{Admitted: true, Notional: notional}
		}

		return Decision{Reason: ReasonInsufficientHoldings, Notional: notional}
	}
}

// Admit checks order and, when admitted, puts it on the sink for its type.
// Rejected orders are dropped after being logged and audited.
func (a *Admission) Admit(order types.Order, holdings types.Holdings) Decision {
	decision := Check(order, holdings)

	entry := audit.Entry{
		Timestamp:      order.Time,
		Symbol:         order.Symbol,
		Side:           string(order.Side),
		OrderType:      string(order.OrderType),
		OrderID:        order.ID,
		Quantity:       order.Quantity,
		ReferencePrice: order.ReferencePrice,
		Source:         order.Source,
	}

	if !decision.Admitted {
		entry.Kind = audit.KindOrderRejected
		entry.Reason = decision.Reason
		entry.Fields = map[string]string{
			"notional": decision.Notional.String(),
			"cash":     decimal.NewFromFloat(holdings.Cash).String(),
			"total":    holdings.Total().String(),
		}

		a.logger.Info("Order rejected",
			zap.String("symbol", order.Symbol),
			zap.String("side", string(order.Side)),
			zap.Float64("quantity", order.Quantity),
			zap.Float64("reference_price", order.ReferencePrice),
			zap.String("reason", decision.Reason),
		)
		a.metrics.Rejected(string(order.Side))
		a.record(entry)

		return decision
	}

	entry.Kind = audit.KindOrderAdmitted
	a.metrics.Admitted(string(order.Side), string(order.OrderType))
	a.record(entry)

	if order.OrderType == types.OrderTypeLimit {
		a.pendingLimit.Put(types.OrderEvent{Order: order})
	} else {
		a.immediate.Put(types.OrderEvent{Order: order})
	}

	return decision
}

func (a *Admission) record(entry audit.Entry) {
	if a.audit == nil {
		return
	}

	if err := a.audit.Record(entry); err != nil {
		a.logger.Warn("Failed to record audit entry", zap.Error(err))
	}
}
