package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout bounds fn by a deadline derived from ctx. fn keeps running in
// its goroutine after the deadline fires; it is expected to observe the
// derived context and return promptly. A non-positive timeout disables the
// bound entirely.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	bounded, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- fn(bounded)
	}()

	select {
	case err := <-result:
		return err
	case <-bounded.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s timed out after %v: %w", name, timeout, context.DeadlineExceeded)
	}
}
