package fetcher

import (
	"context"
	"sync"
)

// Executor runs the network part of a fetch.
type Executor interface {
	Go(fn func())
}

// Async runs each fetch on its own goroutine.
type Async struct{}

// Go implements Executor.
func (Async) Go(fn func()) { go fn() }

// Sync runs the fetch on the calling goroutine, so Fetch returns only after
// the completion chain has been dispatched.
type Sync struct{}

// Go implements Executor.
func (Sync) Go(fn func()) { fn() }

// Dispatcher delivers completion callbacks to the context that consumes them.
type Dispatcher interface {
	Dispatch(fn func())
}

// Inline runs callbacks on whichever goroutine finished the fetch.
type Inline struct{}

// Dispatch implements Dispatcher.
func (Inline) Dispatch(fn func()) { fn() }

// Loop queues callbacks for a single consumer goroutine, which drains them
// either through Run or by selecting on Wake and calling Drain from its own
// event loop. Callbacks run in the order they were dispatched.
//
// After Stop, Dispatch runs callbacks immediately on the dispatching
// goroutine so that no completion is lost.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	stopped bool
	wake    chan struct{}
}

// NewLoop creates an empty Loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Dispatch implements Dispatcher.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		fn()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Wake is signalled whenever callbacks are waiting to be drained.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// Drain runs every queued callback on the calling goroutine and returns how
// many ran.
func (l *Loop) Drain() int {
	l.mu.Lock()
	fns := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Stop marks the loop as stopped and runs any callbacks still queued.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	fns := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Run drains callbacks until ctx is cancelled, then stops the loop.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.wake:
			l.Drain()
		}
	}
}
