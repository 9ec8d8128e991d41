package worker

import (
	"math"
	"math/rand"
	"time"
)

// Backoff is the wait before retrying the queue after attempt consecutive
// failures: 500ms doubling up to 30s, plus up to 250ms of jitter.
func Backoff(attempt int) time.Duration {
	base := 500 * time.Millisecond
	capDelay := 30 * time.Second

	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if delay > capDelay || delay <= 0 {
		delay = capDelay
	}

	// small jitter to keep a fleet of workers from reconnecting in lockstep
	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
