package types

import (
	"time"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// Timeframe is the bar interval a feed replays or polls.
type Timeframe string

const (
	Timeframe1Min  Timeframe = "1Min"
	Timeframe5Min  Timeframe = "5Min"
	Timeframe15Min Timeframe = "15Min"
	TimeframeDay   Timeframe = "day"
	Timeframe1D    Timeframe = "1D"
)

// Timeframes lists every accepted timeframe.
var Timeframes = []Timeframe{Timeframe1Min, Timeframe5Min, Timeframe15Min, TimeframeDay, Timeframe1D}

// ParseTimeframe accepts exactly the values listed in Timeframes.
func ParseTimeframe(s string) (Timeframe, error) {
	for _, tf := range Timeframes {
		if string(tf) == s {
			return tf, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q, expected one of 1Min, 5Min, 15Min, day, 1D", s)
}

// Duration is the wall-clock length of one bar.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Timeframe1Min:
		return time.Minute
	case Timeframe5Min:
		return 5 * time.Minute
	case Timeframe15Min:
		return 15 * time.Minute
	case TimeframeDay, Timeframe1D:
		return 24 * time.Hour
	default:
		return 0
	}
}

// IsDaily reports whether tf is one of the daily spellings.
func (tf Timeframe) IsDaily() bool {
	return tf == TimeframeDay || tf == Timeframe1D
}

func (tf Timeframe) String() string {
	return string(tf)
}
