package worker

import (
	"math/rand/v2"
	"time"
)

const (
	backoffBase = 2 * time.Second
	backoffCap  = 5 * time.Minute
)

// ExponentialBackoff doubles from 2s per attempt, capped at 5m, plus up to 250ms of jitter.
// attempt is the count of attempts already made.
func ExponentialBackoff(attempt int) time.Duration {
	return backoffDelay(attempt) + time.Duration(rand.IntN(250))*time.Millisecond
}

func backoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := backoffBase
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= backoffCap {
			return backoffCap
		}
	}
	return delay
}
