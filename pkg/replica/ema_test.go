package replica

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEMACalculator(t *testing.T) {
	assert := require.New(t)

	ema := newEMACalculator()
	assert.False(ema.HasSamples())

	// The first sample initializes the average.
	assert.Equal(100.0, ema.Add(100))
	assert.True(ema.HasSamples())

	// 0.3 * 200 + 0.7 * 100
	assert.InDelta(130.0, ema.Add(200), 0.0001)

	// Converges toward a stable series.
	for i := 0; i < 50; i++ {
		ema.Add(10)
	}
	assert.InDelta(10.0, ema.Average(), 0.5)
}
