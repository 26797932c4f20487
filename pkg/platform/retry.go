package platform

import (
	"context"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/nodeguardian/nodeguardian/internal/ngerrors"
)

// backoffSchedule is the 3-attempt retry budget for PlatformTransient
// failures: 100ms, 500ms, 2s between attempts.
var backoffSchedule = []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second}

// withRetry runs op, retrying on transient platform failures per the
// backoff schedule, and routes the call through the circuit breaker when
// Config.CircuitBreaker is set, so a sustained outage stops being retried
// across ticks once the breaker opens. Without a breaker, fn is called
// directly.
func (b base) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= len(backoffSchedule); attempt++ {
		_, err := b.breakerCall(fn)
		if err == nil {
			return nil
		}
		classified := classify(op, err)
		if _, transient := classified.(*ngerrors.PlatformTransient); !transient {
			return classified
		}
		lastErr = classified
		if attempt == len(backoffSchedule) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffSchedule[attempt]):
		}
	}
	return lastErr
}

func (b base) breakerCall(fn func() error) (struct{}, error) {
	if b.breaker == nil {
		return struct{}{}, fn()
	}
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return struct{}{}, err
}

// classify maps a raw client-go/apimachinery error into the ngerrors
// taxonomy so callers can decide retry vs. skip behavior uniformly.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case apierrors.IsConflict(err), apierrors.IsServerTimeout(err), apierrors.IsTimeout(err),
		apierrors.IsTooManyRequests(err), apierrors.IsServiceUnavailable(err),
		apierrors.IsInternalError(err):
		return &ngerrors.PlatformTransient{Op: op, Err: err}
	case apierrors.IsNotFound(err), apierrors.IsForbidden(err), apierrors.IsUnauthorized(err),
		apierrors.IsInvalid(err), apierrors.IsBadRequest(err):
		return &ngerrors.PlatformFatal{Op: op, Err: err}
	default:
		return &ngerrors.PlatformTransient{Op: op, Err: err}
	}
}
