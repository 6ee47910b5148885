package sigv4

import (
	"math/rand"
	"time"
)

// retryPolicy implements exponential backoff: base 100ms,
// factor 2, jitter +/-25%, cap 5s, up to 3 retries. 4xx responses are never retried
// (enforced by the caller, which only invokes this for 5xx throttling responses and,
// on idempotent calls, for transport errors).
const (
	retryBase     = 100 * time.Millisecond
	retryFactor   = 2
	retryCap      = 5 * time.Second
	retryMaxTries = 3
)

// backoffDelay returns the delay before retry attempt n (1-indexed), with jitter.
func backoffDelay(attempt int, rng *rand.Rand) time.Duration {
	d := retryBase
	for i := 1; i < attempt; i++ {
		d *= retryFactor
		if d > retryCap {
			d = retryCap
			break
		}
	}
	if d > retryCap {
		d = retryCap
	}

	jitterFrac := 0.75 + rng.Float64()*0.5 // +/-25%
	return time.Duration(float64(d) * jitterFrac)
}
