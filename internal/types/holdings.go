package types

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// Positions maps a symbol to its signed quantity. Negative is short.
type Positions map[string]float64

// Quantity returns the position for symbol, zero when flat or unknown.
func (p Positions) Quantity(symbol string) float64 {
	return p[symbol]
}

// Holdings is the cash and per-symbol market value at a point in time.
type Holdings struct {
	Timestamp    time.Time          `json:"timestamp" yaml:"timestamp"`
	Cash         float64            `json:"cash" yaml:"cash"`
	MarketValues map[string]float64 `json:"market_values" yaml:"market_values"`
}

// Total sums cash and every market value.
func (h Holdings) Total() decimal.Decimal {
	total := decimal.NewFromFloat(h.Cash)
	for _, value := range h.MarketValues {
		total = total.Add(decimal.NewFromFloat(value))
	}

	return total
}

// Snapshot is the read-only account view handed to triggers and admission.
type Snapshot struct {
	Timestamp       time.Time
	Positions       Positions
	Holdings        Holdings
	LastTradePrices map[string]float64
}

// Clone returns a deep copy so callers cannot mutate the account's maps.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Positions = maps.Clone(s.Positions)
	out.Holdings.MarketValues = maps.Clone(s.Holdings.MarketValues)
	out.LastTradePrices = maps.Clone(s.LastTradePrices)

	if out.Positions == nil {
		out.Positions = Positions{}
	}

	return out
}
