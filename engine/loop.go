package engine

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Loop is a repeating task: it calls onUpdate once when started and then on
// every tick until stopped. onUpdate receives the wall-clock time since the
// previous call.
type Loop struct {
	clock    clock.WithTicker
	tickRate time.Duration
	onUpdate func(delta time.Duration)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a loop that is not yet running.
func New(c clock.WithTicker, tickRate time.Duration, onUpdate func(delta time.Duration)) *Loop {
	return &Loop{
		clock:    c,
		tickRate: tickRate,
		onUpdate: onUpdate,
	}
}

func (l *Loop) TickRate() time.Duration {
	return l.tickRate
}

// Start runs the loop until Stop is called or ctx is done. It returns false
// if the loop is already running.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	ticker := l.clock.NewTicker(l.tickRate)
	go l.run(ctx, ticker, done)
	return true
}

func (l *Loop) run(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	defer l.release(done)

	last := l.clock.Now()
	l.onUpdate(0)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C():
			delta := now.Sub(last)
			last = now
			l.onUpdate(delta)
		}
	}
}

// release forgets the cancel func of a loop that ended through its parent
// context, unless a newer loop has already replaced it.
func (l *Loop) release(done chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == done && l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Stop cancels the loop. It does not wait for an in-flight update; use Done
// for that.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel == nil {
		return
	}
	l.cancel()
	l.cancel = nil
}

// Running reports whether the loop has been started and not stopped.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Done returns a channel closed when the most recently started loop
// goroutine has exited. It is nil if the loop was never started.
func (l *Loop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}
