package feed

import "github.com/rxtech-lab/argo-replay/internal/types"

// ReplayCursor walks one symbol's aligned bars forward only.
type ReplayCursor struct {
	bars []types.Bar
	pos  int
}

func NewReplayCursor(bars []types.Bar) *ReplayCursor {
	return &ReplayCursor{bars: bars}
}

// Next returns the next bar, or false once every bar was handed out.
func (c *ReplayCursor) Next() (types.Bar, bool) {
	if c.Exhausted() {
		return types.Bar{}, false
	}

	bar := c.bars[c.pos]
	c.pos++

	return bar, true
}

// Exhausted reports whether Next has nothing left.
func (c *ReplayCursor) Exhausted() bool {
	return c.pos >= len(c.bars)
}

// Remaining is the number of bars not yet returned.
func (c *ReplayCursor) Remaining() int {
	return len(c.bars) - c.pos
}
