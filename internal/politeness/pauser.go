// Package politeness implements the mandatory pause between successive
// requests to the origin site.
package politeness

import (
	"context"
	"time"
)

// Pauser abstracts how the scraper waits between fetches.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// TimerPauser waits on a real timer, returning early when the context is
// done.
type TimerPauser struct{}

// Pause blocks for delay or until ctx finishes, whichever comes first.
func (TimerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// NoopPauser skips the delay entirely. For tests.
type NoopPauser struct{}

// Pause returns immediately.
func (NoopPauser) Pause(context.Context, time.Duration) {}
