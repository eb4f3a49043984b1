// Package retry bounds the re-attempts around delete operations that can
// transiently fail while a dependent resource releases its reference.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vietdv277/stratus/pkg/provider"
)

// OnDependencyConflict runs op up to maxAttempts times, sleeping step
// between attempts. Only errors classified as
// provider.ErrDependencyStillAttached are retried; any other error is
// permanent and propagates on first occurrence. When every attempt fails
// with the dependency class, the last observed error is returned.
func OnDependencyConflict(ctx context.Context, op func() error, maxAttempts int, step time.Duration) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(step), uint64(maxAttempts-1)),
		ctx,
	)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, provider.ErrDependencyStillAttached) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
