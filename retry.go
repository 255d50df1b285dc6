package clubio

import (
	"net/http"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryInitial  = 250 * time.Millisecond
	defaultRetryMax      = 5 * time.Second
)

// RetryPolicy bounds retries for idempotent GET operations. It is opt-in;
// without one a failed request surfaces immediately as a Result error.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy retries three times with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    defaultRetryAttempts,
		InitialBackoff: defaultRetryInitial,
		MaxBackoff:     defaultRetryMax,
	}
}

// Backoff returns the delay before the given zero-based retry.
func (p RetryPolicy) Backoff(retry int) time.Duration {
	delay := p.InitialBackoff
	if delay <= 0 {
		delay = defaultRetryInitial
	}

	max := p.MaxBackoff
	if max <= 0 {
		max = defaultRetryMax
	}

	for i := 0; i < retry; i++ {
		delay *= 2
		if delay > max {
			return max
		}
	}

	if delay > max {
		return max
	}
	return delay
}

// retryableStatus classifies responses worth a second attempt: throttling
// and server-side failures. Client errors are final.
func retryableStatus(status int) bool {
	switch {
	case status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}
