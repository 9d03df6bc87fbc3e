package workflow

import (
	"math/rand"
	"time"
)

// Policy is the uniform exponential-backoff-with-jitter retry discipline
// applied to every stage. A job is attempted MaxRetries+1 times in total.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     bool
}

// Delay computes the redelivery delay for a given zero-based attempt:
// base × 2^attempt, capped at MaxDelay, with ±25% jitter to avoid
// thundering herds.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter && delay > 0 {
		spread := int64(delay) / 4
		delay += time.Duration(rand.Int63n(2*spread+1) - spread)
	}
	return delay
}

// Exhausted reports whether a job that has already run attempt+1 times has
// no retries left.
func (p Policy) Exhausted(attempt int) bool {
	return attempt >= p.MaxRetries
}
