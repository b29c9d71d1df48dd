package chat

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Typist decides how long the bot "types" before a reply is shown.
type Typist interface {
	Delay() time.Duration
}

// RandomDelay waits a uniformly random duration in [Min, Max).
type RandomDelay struct {
	Min time.Duration
	Max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomDelay returns a typist bounded by lo and hi. Swapped bounds are reordered.
func NewRandomDelay(lo, hi time.Duration) *RandomDelay {
	if hi < lo {
		lo, hi = hi, lo
	}
	return &RandomDelay{
		Min: lo,
		Max: hi,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Delay picks the next typing duration.
func (d *RandomDelay) Delay() time.Duration {
	span := d.Max - d.Min
	if span <= 0 {
		return d.Min
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rng == nil {
		d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return d.Min + time.Duration(d.rng.Int64N(int64(span)))
}

// NoDelay replies immediately.
type NoDelay struct{}

func (NoDelay) Delay() time.Duration { return 0 }

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
