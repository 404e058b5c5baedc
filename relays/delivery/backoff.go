package delivery

import (
	"context"
	"math/rand"
	"time"
)

// Backoff computes exponentially growing delays with up to 50% jitter.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

func (b Backoff) Delay(attempt int) time.Duration {
	delay := b.Base
	for i := 1; i < attempt && delay < b.Max; i++ {
		delay *= 2
	}
	if delay > b.Max {
		delay = b.Max
	}
	if delay <= 1 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/2)))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
