package types

import "time"

// Bar is one OHLCV observation for a symbol.
type Bar struct {
	Symbol string    `json:"symbol" yaml:"symbol" csv:"symbol"`
	Time   time.Time `json:"time" yaml:"time" csv:"time"`
	Open   float64   `json:"open" yaml:"open" csv:"open"`
	High   float64   `json:"high" yaml:"high" csv:"high"`
	Low    float64   `json:"low" yaml:"low" csv:"low"`
	Close  float64   `json:"close" yaml:"close" csv:"close"`
	Volume float64   `json:"volume" yaml:"volume" csv:"volume"`
}

// IsEmpty reports whether the bar carries no prices or volume. The aligner
// uses such bars for calendar slots before a symbol's first observation.
func (b Bar) IsEmpty() bool {
	return b.Open == 0 && b.High == 0 && b.Low == 0 && b.Close == 0 && b.Volume == 0
}

// At returns a copy of the bar stamped with t.
func (b Bar) At(t time.Time) Bar {
	b.Time = t

	return b
}

// EmptyBar is the placeholder for a symbol at a calendar slot it has no history for yet.
func EmptyBar(symbol string, t time.Time) Bar {
	return Bar{Symbol: symbol, Time: t}
}
