package tryon

import (
	"context"
	"math/rand"
	"time"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// RetryPolicy controls how a fallible operation is re-attempted. Every call
// to Retry gets its own attempt budget; policies carry no mutable state and
// may be shared across concurrent requests.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, first attempt included.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay time.Duration
	// MaxJitter caps the uniform random term added to each delay.
	MaxJitter time.Duration

	// Sleep is swappable so tests can observe delays without waiting.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy mirrors the provider contract: three attempts, one
// second base delay, up to one second of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxJitter:   time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.MaxJitter < 0 {
		p.MaxJitter = 0
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

// delay computes the pause before retry number attempt (zero-based):
// BaseDelay * 2^attempt plus a uniform random jitter term.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if p.MaxJitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.MaxJitter)))
	}
	return d
}

// Retry runs op until it succeeds, the error is classified non-retryable, the
// attempt budget is exhausted, or ctx is done. The executor knows nothing
// about what op does; retryability is read off the error itself via
// domain.IsRetryable. The last error is returned as-is after exhaustion.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	p := policy.normalized()

	var zero T
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !domain.IsRetryable(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		if err := p.Sleep(ctx, p.delay(attempt)); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
