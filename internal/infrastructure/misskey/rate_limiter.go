package misskey

import (
	"context"
	"sync"
	"time"
)

// tokenBucket allows bursts of up to capacity calls and then one call per
// interval.
type tokenBucket struct {
	mu       sync.Mutex
	tokens   int
	capacity int
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func newTokenBucket(capacity int, interval time.Duration) *tokenBucket {
	return &tokenBucket{
		tokens:   capacity,
		capacity: capacity,
		interval: interval,
		last:     time.Now(),
		now:      time.Now,
	}
}

// Take blocks until a token is available or ctx is done.
func (b *tokenBucket) Take(ctx context.Context) error {
	for {
		wait := b.tryTake()
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryTake consumes a token and returns zero, or returns how long until the
// next refill.
func (b *tokenBucket) tryTake() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if refill := int(now.Sub(b.last) / b.interval); refill > 0 {
		b.tokens = min(b.tokens+refill, b.capacity)
		b.last = b.last.Add(time.Duration(refill) * b.interval)
	}

	if b.tokens > 0 {
		b.tokens--
		return 0
	}
	return b.interval - now.Sub(b.last)
}

func (b *tokenBucket) available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}
