package llm

import "time"

// RetryPolicy is a bounded retry with exponential backoff. The Sleep hook
// exists so tests can observe delays without waiting on a real clock.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(time.Duration)
}

// DefaultRetryPolicy matches the embedding provider's rate-limit budget:
// three attempts total, sleeping 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is exhausted. The last error is returned. The backoff delay
// doubles after each failed attempt.
func (p RetryPolicy) Do(fn func() error, retryable func(error) bool) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	delay := p.BaseDelay
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			sleep(delay)
			delay *= 2
		}
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
	}
	return err
}
