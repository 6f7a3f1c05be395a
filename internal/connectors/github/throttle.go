package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"
)

const (
	// requestsPerSecond keeps a full load of paginated lists under the
	// authenticated quota of 5000 requests an hour.
	requestsPerSecond = 1.2

	// reserve is the number of requests left unspent before pausing for the
	// quota window to reset.
	reserve = 100
)

// Throttle spaces requests with a token bucket and, once the quota GitHub
// reports falls to the reserve, holds requests until the window resets.
type Throttle struct {
	bucket  *rate.Limiter
	reserve int

	mu    sync.Mutex
	quota gh.Rate
}

// NewThrottle allows perSecond requests with a burst of one.
func NewThrottle(perSecond rate.Limit) *Throttle {
	return &Throttle{
		bucket:  rate.NewLimiter(perSecond, 1),
		reserve: reserve,
		quota:   gh.Rate{Limit: 5000, Remaining: 5000},
	}
}

// Wait blocks until the next request may be sent.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := t.bucket.Wait(ctx); err != nil {
		return err
	}

	q := t.Quota()
	if q.Remaining >= t.reserve {
		return nil
	}
	pause := time.Until(q.Reset.Time)
	if pause <= 0 {
		return nil
	}
	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe records the quota parsed from a response. Responses without rate
// headers leave the last known quota in place.
func (t *Throttle) Observe(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	t.mu.Lock()
	t.quota = resp.Rate
	t.mu.Unlock()
}

// Quota is the last quota GitHub reported.
func (t *Throttle) Quota() gh.Rate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quota
}
