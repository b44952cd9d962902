// Package asyncqueue implements the bounded, single-consumer envelope queue
// (component C4) that backs both handler flavors with an async dispatch
// path: a core-owned queue for KindAsyncFn, and the caller-supplied queue a
// KindAsyncTask subscription pushes onto. Producers (any number of
// publishing goroutines) push envelopes; exactly one consumer goroutine
// drains them.
package asyncqueue

import (
	"sync"

	"github.com/lattice-io/evhub/subscription"
)

// Wakeup is the abstraction a Queue uses to notify its single consumer that
// new work is available. It is coalesced: the queue calls Wake only on the
// empty-to-non-empty transition, never once per push, so a consumer that
// drains in a loop until empty never misses work and is never woken more
// than once per idle period.
type Wakeup interface {
	Wake()
}

// WakeupFunc adapts a plain function to Wakeup.
type WakeupFunc func()

// Wake calls f.
func (f WakeupFunc) Wake() { f() }

// Queue is a bounded FIFO of *subscription.Envelope values. It implements
// subscription.Pusher, so a *Queue can be installed directly as a
// Descriptor's Queue (KindAsyncTask) or wired in by the dispatcher as the
// core-owned queue behind a KindAsyncFn worker.
type Queue struct {
	wake Wakeup
	cap  int

	mu    sync.Mutex
	items []*subscription.Envelope
}

// New constructs a Queue with room for maxDepth outstanding envelopes. wake
// is called exactly when a push transitions the queue from empty to
// non-empty; it must not block.
func New(wake Wakeup, maxDepth int) *Queue {
	return &Queue{wake: wake, cap: maxDepth}
}

// TryPush enqueues env, returning false if the queue is already at
// capacity. Safe for concurrent use by any number of producers.
func (q *Queue) TryPush(env *subscription.Envelope) bool {
	q.mu.Lock()
	if len(q.items) >= q.cap {
		q.mu.Unlock()
		return false
	}
	wasEmpty := len(q.items) == 0
	q.items = append(q.items, env)
	q.mu.Unlock()

	if wasEmpty && q.wake != nil {
		q.wake.Wake()
	}
	return true
}

// Pop removes and returns the oldest envelope, or (nil, false) if the queue
// is empty. Must only be called from the single consumer goroutine.
func (q *Queue) Pop() (*subscription.Envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	env := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return env, true
}

// Len reports the current number of enqueued envelopes, for diagnostics.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// ChanWakeup is a Wakeup backed by a buffered, capacity-1 channel — the
// natural pairing for a consumer goroutine blocked in a select on C().
// Because the channel has capacity 1, repeated Wake calls while the
// consumer is busy coalesce into a single pending wakeup rather than
// piling up.
type ChanWakeup struct {
	c chan struct{}
}

// NewChanWakeup constructs a ready-to-use ChanWakeup.
func NewChanWakeup() *ChanWakeup {
	return &ChanWakeup{c: make(chan struct{}, 1)}
}

// Wake signals the channel, non-blocking: if a signal is already pending it
// is a no-op.
func (w *ChanWakeup) Wake() {
	select {
	case w.c <- struct{}{}:
	default:
	}
}

// C returns the channel a consumer should select on. A received value means
// "check the queue"; it carries no other information.
func (w *ChanWakeup) C() <-chan struct{} {
	return w.c
}
