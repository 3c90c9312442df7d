package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoffDelay computes the delay to wait after the given attempt
// (1-based) using exponential backoff with jitter.
//
// attempt=1 yields the initial duration, each subsequent attempt multiplies it,
// and the result is capped at the configured maximum before jitter is added.
// Jitter is drawn from the supplied RNG so that callers holding a seeded
// generator get reproducible delays.
func ExponentialBackoffDelay(
	attempt int,
	jitter time.Duration,
	rng rand.Rand,
	param BackoffParam,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	exponent := float64(attempt - 1)
	delay := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), exponent)
	if delay > float64(param.MaxDuration()) {
		delay = float64(param.MaxDuration())
	}

	if jitter > 0 {
		delay += float64(time.Duration(rng.Int63n(int64(jitter))))
	}

	return time.Duration(delay)
}
