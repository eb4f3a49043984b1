package wait

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUntil_TargetReached(t *testing.T) {
	t.Parallel()
	states := []string{"pending", "pending", "running"}
	calls := 0

	err := Until(context.Background(), func(ctx context.Context) (string, error) {
		state := states[calls]
		if calls < len(states)-1 {
			calls++
		}
		return state, nil
	}, "running", time.Millisecond, time.Second)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 transitions before target, got: %d", calls)
	}
}

func TestUntil_DeadlineExceeded(t *testing.T) {
	t.Parallel()
	err := Until(context.Background(), func(ctx context.Context) (string, error) {
		return "pending", nil
	}, "running", time.Millisecond, 20*time.Millisecond)

	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Errorf("Expected ErrDeadlineExceeded, got: %v", err)
	}
}

func TestUntil_PollErrorSurfacesImmediately(t *testing.T) {
	t.Parallel()
	pollErr := errors.New("describe failed")
	calls := 0

	err := Until(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", pollErr
	}, "running", time.Millisecond, time.Second)

	if !errors.Is(err, pollErr) {
		t.Errorf("Expected poll error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 poll before error surfaced, got: %d", calls)
	}
}

func TestUntil_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Until(ctx, func(ctx context.Context) (string, error) {
		return "pending", nil
	}, "running", 50*time.Millisecond, time.Second)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}
