package ledger

import (
	"context"
	"errors"
	"time"
)

// WithRetry runs fn, retrying only on ErrStorageUnavailable with doubling
// backoff, up to attempts tries. Client errors surface immediately. The
// last error is returned when retries exhaust.
func WithRetry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrStorageUnavailable) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
