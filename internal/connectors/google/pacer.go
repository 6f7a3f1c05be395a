package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// readsPerSecond stays under the Sheets API quota of 60 reads a minute per
// user. readBurst lets a handful of sheets load at once on startup.
const (
	readsPerSecond = 0.9
	readBurst      = 5
)

// defaultPause applies when a 429 carries no Retry-After.
const defaultPause = time.Minute

// pacer spaces Sheets reads and holds them back after the API reports its
// quota exhausted.
type pacer struct {
	reads *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
}

func newPacer(perSecond rate.Limit, burst int) *pacer {
	return &pacer{reads: rate.NewLimiter(perSecond, burst)}
}

// wait blocks until a read may be sent.
func (p *pacer) wait(ctx context.Context) error {
	if d := time.Until(p.resumeAt()); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return p.reads.Wait(ctx)
}

// pause holds reads for d, or defaultPause when d is not positive. A pause
// never shortens one already in effect.
func (p *pacer) pause(d time.Duration) {
	if d <= 0 {
		d = defaultPause
	}
	until := time.Now().Add(d)

	p.mu.Lock()
	defer p.mu.Unlock()
	if until.After(p.pausedUntil) {
		p.pausedUntil = until
	}
}

// paused reports whether reads are currently held back.
func (p *pacer) paused() bool {
	return time.Now().Before(p.resumeAt())
}

func (p *pacer) resumeAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pausedUntil
}
