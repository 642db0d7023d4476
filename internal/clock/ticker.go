package clock

import (
	"context"
	"time"
)

// DefaultInterval is the live display refresh interval.
const DefaultInterval = time.Millisecond

// Ticker is a cancellable repeating task for the live display. Ticks the
// consumer has not drained are dropped; the channel is closed once the
// loop exits.
type Ticker struct {
	c      chan time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker starts a loop that ticks every interval until ctx is done or
// Stop is called. A non-positive interval uses DefaultInterval.
func NewTicker(ctx context.Context, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{
		c:      make(chan time.Time, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.run(ctx, interval)
	return t
}

// C returns the tick channel.
func (t *Ticker) C() <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.c
}

// Stop cancels the loop and waits for it to exit. Safe to call repeatedly
// and on a nil Ticker.
func (t *Ticker) Stop() {
	if t == nil {
		return
	}
	t.cancel()
	<-t.done
}

func (t *Ticker) run(ctx context.Context, interval time.Duration) {
	defer close(t.done)
	defer close(t.c)
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tk.C:
			select {
			case t.c <- now:
			default:
			}
		}
	}
}
