package concerts

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Clock abstracts time for pacing and backoff.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// SystemClock returns a Clock backed by the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// Pacer spaces out catalog calls with a token bucket of size one.
//
// A single Pacer is shared by the attraction matcher and the event fetcher
// so that every call against the catalog counts toward the same budget.
// A nil *Pacer never waits.
type Pacer struct {
	limiter *rate.Limiter
	clock   Clock
}

// NewPacer allows one call per interval. interval <= 0 disables pacing.
func NewPacer(interval time.Duration, clock Clock) *Pacer {
	if clock == nil {
		clock = SystemClock()
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		clock:   clock,
	}
}

// Wait blocks until the next call is allowed.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}

	now := p.clock.Now()
	reservation := p.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return fmt.Errorf("pacer: reservation refused")
	}

	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := p.clock.Sleep(ctx, delay); err != nil {
		reservation.CancelAt(p.clock.Now())
		return err
	}
	return nil
}
