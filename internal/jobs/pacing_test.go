package jobs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelaySecondsEndpoints(t *testing.T) {
	assert.Equal(t, 5.0, DelaySeconds(0))
	assert.InDelta(t, 0.0916, DelaySeconds(0.5), 1e-4)
	assert.InDelta(t, 0.00168, DelaySeconds(1), 1e-5)
}

func TestDelaySecondsStrictlyDecreasing(t *testing.T) {
	prev := math.Inf(1)
	for i := 0; i <= 1000; i++ {
		d := DelaySeconds(float64(i) / 1000)
		assert.Less(t, d, prev, "i=%d", i)
		prev = d
	}
}

func TestDelaySecondsClampsInput(t *testing.T) {
	assert.Equal(t, DelaySeconds(0), DelaySeconds(-3))
	assert.Equal(t, DelaySeconds(1), DelaySeconds(7))
	assert.Equal(t, DelaySeconds(0), DelaySeconds(math.NaN()))
}

func TestDelayDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, Delay(0))
	assert.InDelta(t, float64(1680*time.Microsecond), float64(Delay(1)), float64(10*time.Microsecond))
}
