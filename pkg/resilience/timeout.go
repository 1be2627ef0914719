package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn and stops waiting for it after timeout. fn keeps
// running in the background if it ignores its context, so only use this for
// bounded work such as parsing one uploaded document.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%s: %w (limit %v)", name, ctx.Err(), timeout)
	}
}
