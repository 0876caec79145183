package extract

import (
	"context"
	"time"
)

// RetryPolicy bounds calls to the external extraction service: one
// initial attempt plus len(Delays) retries, sleeping Delays[i] before
// retry i+1. The same policy instance is shared by the text and image
// strategies so their failure behavior stays identical.
type RetryPolicy struct {
	Delays []time.Duration
}

// DefaultRetryPolicy retries three times with increasing delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delays: []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}}
}

// Attempts returns the total number of attempts the policy allows.
func (p RetryPolicy) Attempts() int { return len(p.Delays) + 1 }

// Do runs fn until it succeeds or the attempt budget is spent,
// honoring context cancellation between attempts. The last error is
// returned on exhaustion.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var last error
	for attempt := 0; attempt < p.Attempts(); attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(p.Delays[attempt-1])
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err := fn(ctx); err != nil {
			last = err
			continue
		}
		return nil
	}
	return last
}
