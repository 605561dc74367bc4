package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryRecovers(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: connection refused", ErrStorageUnavailable)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhausts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return fmt.Errorf("%w: connection refused", ErrStorageUnavailable)
	})
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 3, calls)
}

func TestWithRetryClientErrorsNotRetried(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return ErrAlreadyClockedIn
	})
	require.ErrorIs(t, err, ErrAlreadyClockedIn)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, 5, 10*time.Second, func() error {
		return fmt.Errorf("%w: down", ErrStorageUnavailable)
	})
	require.ErrorIs(t, err, context.Canceled)
}
