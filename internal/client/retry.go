package client

import (
	"context"
	"errors"
	"math"
	"time"
)

// Backoff computes exponential delays capped at Cap.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

// Delay returns min(Base * 2^attempt, Cap). attempt starts at 0.
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	d := b.Base
	for i := 0; i < attempt; i++ {
		if b.Cap > 0 && d >= b.Cap {
			break
		}
		if d > math.MaxInt64/2 {
			break
		}
		d *= 2
	}
	if b.Cap > 0 && d > b.Cap {
		d = b.Cap
	}
	return d
}

// SleepFunc waits for d or until ctx ends.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retry calls op up to retries+1 times, sleeping b.Delay(n) after the
// n-th failure. It stops early on permanent errors and when ctx ends,
// and otherwise returns the last error.
func Retry[T any](ctx context.Context, sleep SleepFunc, retries int, b Backoff, op func(context.Context) (T, error)) (T, error) {
	if sleep == nil {
		sleep = Sleep
	}
	if retries < 0 {
		retries = 0
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, errors.Join(lastErr, err)
			}
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if IsPermanent(err) || attempt == retries {
			break
		}
		if err := sleep(ctx, b.Delay(attempt)); err != nil {
			return zero, errors.Join(lastErr, err)
		}
	}
	return zero, lastErr
}
