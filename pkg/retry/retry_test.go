package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Wait(t *testing.T) {
	tests := []struct {
		name    string
		backoff Backoff
		attempt int
		want    time.Duration
	}{
		{"fixed", Backoff{Interval: time.Second}, 4, time.Second},
		{"max below interval is fixed", Backoff{Interval: time.Second, Max: time.Millisecond}, 3, time.Second},
		{"first wait", Backoff{Interval: time.Second, Max: 10 * time.Second}, 1, time.Second},
		{"doubles", Backoff{Interval: time.Second, Max: 10 * time.Second}, 3, 4 * time.Second},
		{"capped", Backoff{Interval: time.Second, Max: 10 * time.Second}, 6, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.backoff.Wait(tt.attempt))
		})
	}
}

func TestDo_SuccessAfterFailures(t *testing.T) {
	calls := 0
	n, err := Do(context.Background(), Backoff{Attempts: 5, Interval: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDo_AttemptsExhausted(t *testing.T) {
	boom := errors.New("connection refused")
	n, err := Do(context.Background(), Backoff{Attempts: 3, Interval: time.Millisecond}, func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, n)
}

func TestDo_ZeroAttemptsStillCallsOnce(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Backoff{}, func(ctx context.Context) error {
		calls++
		return errors.New("down")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	denied := errors.New("WRONGPASS invalid username-password pair")
	calls := 0
	n, err := Do(context.Background(), Backoff{Attempts: 5, Interval: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return Permanent(denied)
	})

	assert.Same(t, denied, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, calls)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}

func TestDo_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n, err := Do(ctx, Backoff{Attempts: 5, Interval: time.Hour}, func(ctx context.Context) error {
		cancel()
		return errors.New("down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
}
