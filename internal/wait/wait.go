// Package wait blocks until a remote resource's observable state matches
// a target. It is a cooperative poll loop: the remote API is the source
// of truth, and the only local discipline is the interval and deadline.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDeadlineExceeded is returned when the target state is not reached
// before the deadline elapses.
var ErrDeadlineExceeded = errors.New("deadline exceeded waiting for target state")

// StateFunc reports the resource's current state.
type StateFunc func(ctx context.Context) (string, error)

// Until polls every interval until poll reports target, the deadline
// elapses, or ctx is done. The first poll error surfaces immediately;
// transient-looking describe failures are not retried here because only
// the caller can classify them.
func Until(ctx context.Context, poll StateFunc, target string, interval, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := poll(ctx)
		if err != nil {
			return err
		}
		if state == target {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("state %q not reached within %s: %w", target, deadline, ErrDeadlineExceeded)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
