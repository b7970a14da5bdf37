package bridge

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopStopped is returned when work is posted to a stopped loop
var ErrLoopStopped = errors.New("bridge loop stopped")

// Loop runs posted functions one at a time on a single goroutine
type Loop struct {
	tasks chan func()
	done  chan struct{}

	stopOnce sync.Once
	mu       sync.RWMutex
	stopped  bool
}

// NewLoop creates a loop with room for backlog queued functions
func NewLoop(backlog int) *Loop {
	if backlog <= 0 {
		backlog = 256
	}
	return &Loop{
		tasks: make(chan func(), backlog),
		done:  make(chan struct{}),
	}
}

// Run executes posted functions until ctx is cancelled or Stop is called.
// Functions already queued when the loop stops are discarded.
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn. It blocks while the backlog is full.
func (l *Loop) Post(fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return ErrLoopStopped
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Do runs fn on the loop and waits for it to return. It must not be
// called from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop ends Run. Later posts fail with ErrLoopStopped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
	})
}

// Done is closed once the loop has stopped
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
