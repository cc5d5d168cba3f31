package types

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		input    string
		expected Timeframe
		duration time.Duration
		wantErr  bool
	}{
		{"1Min", Timeframe1Min, time.Minute, false},
		{"5Min", Timeframe5Min, 5 * time.Minute, false},
		{"15Min", Timeframe15Min, 15 * time.Minute, false},
		{"day", TimeframeDay, 24 * time.Hour, false},
		{"1D", Timeframe1D, 24 * time.Hour, false},
		{"1H", "", 0, true},
		{"1min", "", 0, true},
		{"", "", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			tf, err := ParseTimeframe(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTimeframe))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, tf)
			assert.Equal(t, tc.duration, tf.Duration())
		})
	}
}

func TestTimeframeIsDaily(t *testing.T) {
	assert.True(t, TimeframeDay.IsDaily())
	assert.True(t, Timeframe1D.IsDaily())
	assert.False(t, Timeframe15Min.IsDaily())
}
