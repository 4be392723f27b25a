package utils

import (
	"time"
)

// Backoff retries fn with exponential spacing. Used for startup dependencies
// (e.g. waiting for redis), never for upstream fetches: those degrade through
// the cache's fallback tiers instead of re-attempting the same tier.
type Backoff struct {
	base       time.Duration
	maxRetries int
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, maxRetries: maxRetries}
}

func (b Backoff) Do(fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		t := time.Duration(1<<i) * b.base
		time.Sleep(t)
	}
	return err
}
