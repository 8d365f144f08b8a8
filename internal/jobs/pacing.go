package jobs

import (
	"math"
	"time"
)

const (
	initialDelaySeconds = 5.0
	delayDecay          = 8.0
)

// DelaySeconds は進捗割合 f における次の桁までの待ち時間（秒）を返します。
// delay(f) = 5.0 * exp(-8.0 * f)。f は [0, 1] に丸められます。
func DelaySeconds(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return initialDelaySeconds * math.Exp(-delayDecay*f)
}

// Delay は DelaySeconds を time.Duration に変換したものです。
func Delay(f float64) time.Duration {
	return time.Duration(DelaySeconds(f) * float64(time.Second))
}
