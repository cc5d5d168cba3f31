package feed

import (
	"slices"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// BarWindow keeps the bars handed to strategies so far, per symbol, oldest
// first. maxSize 0 keeps everything.
type BarWindow struct {
	maxSize int
	data    map[string][]types.Bar
}

func NewBarWindow(maxSize int) *BarWindow {
	return &BarWindow{
		maxSize: maxSize,
		data:    make(map[string][]types.Bar),
	}
}

// Track registers symbol so reads return an empty slice instead of a miss.
func (w *BarWindow) Track(symbol string) {
	if _, ok := w.data[symbol]; !ok {
		w.data[symbol] = nil
	}
}

// Has reports whether symbol is tracked.
func (w *BarWindow) Has(symbol string) bool {
	_, ok := w.data[symbol]

	return ok
}

// Append adds bar at the end of its symbol's window, evicting the oldest
// bar when the window is bounded and full.
func (w *BarWindow) Append(bar types.Bar) {
	bars := append(w.data[bar.Symbol], bar)
	if w.maxSize > 0 && len(bars) > w.maxSize {
		bars = bars[len(bars)-w.maxSize:]
	}

	w.data[bar.Symbol] = bars
}

// Replace swaps the whole window of symbol, trimming to maxSize.
func (w *BarWindow) Replace(symbol string, bars []types.Bar) {
	if w.maxSize > 0 && len(bars) > w.maxSize {
		bars = bars[len(bars)-w.maxSize:]
	}

	w.data[symbol] = slices.Clone(bars)
}

// Last returns a copy of the final min(n, len) bars of symbol.
func (w *BarWindow) Last(symbol string, n int) []types.Bar {
	bars := w.data[symbol]
	if n <= 0 || len(bars) == 0 {
		return []types.Bar{}
	}

	if n > len(bars) {
		n = len(bars)
	}

	return slices.Clone(bars[len(bars)-n:])
}

// Len returns the number of bars held for symbol.
func (w *BarWindow) Len(symbol string) int {
	return len(w.data[symbol])
}
