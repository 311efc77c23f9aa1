package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docoutline/internal/output"
)

// MaxWriteAttempts bounds output writes: the first try plus one retry.
const MaxWriteAttempts = 2

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var ioErr *output.IOError
	return errors.As(err, &ioErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
	if base > 2*time.Second {
		base = 2 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// writeWithRetry writes v to path, retrying retryable failures.
func writeWithRetry(ctx context.Context, path string, v any) error {
	var err error
	for attempt := range MaxWriteAttempts {
		err = output.WriteJSON(path, v)
		if err == nil || !IsRetryable(err) || attempt == MaxWriteAttempts-1 {
			break
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return err
		}
	}
	return err
}
