// Package subscription implements the reference-counted subscription record
// (component C2): its handler descriptor, its event filter, its async
// envelope lifecycle, and the exactly-once private-data release and
// exactly-once SubEnd emission invariants that make the dispatcher safe.
package subscription

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lattice-io/evhub/evtype"
	"github.com/lattice-io/evhub/payload"
)

// ErrNoQueue is returned by PushEnvelope when the subscription's handler
// flavor has no associated async queue (a sync-only descriptor).
var ErrNoQueue = errors.New("subscription: handler has no async queue")

// ErrQueueFull is returned by PushEnvelope when the queue rejects the push
// (see Pusher). It models the spec's "allocation failure" error kind.
var ErrQueueFull = errors.New("subscription: async queue at capacity")

// ErrInactive is returned by PushEnvelope when the subscription was
// deactivated between the dispatcher's active check and the push itself.
// The dispatcher treats it as "never matched", not as a delivery failure.
var ErrInactive = errors.New("subscription: already inactive")

// SubID is the internal, monotonically assigned handle every subscription
// receives at birth, independent of any caller-supplied identified id.
type SubID uint64

// Kind enumerates the three HandlerDescriptor shapes.
type Kind int

const (
	// KindSync invokes Descriptor.SyncFn inline on the publishing goroutine.
	KindSync Kind = iota
	// KindAsyncFn enqueues onto a core-owned queue drained by a core-owned
	// worker that calls Descriptor.AsyncFn.
	KindAsyncFn
	// KindAsyncTask enqueues onto the caller-supplied Descriptor.Queue and
	// wakes the caller's own task; this is the only flavor that receives a
	// terminal SubEnd envelope.
	KindAsyncTask
)

// SyncFunc is invoked inline on the publisher's goroutine. It may read the
// payload's Unsafe region.
type SyncFunc func(ctx context.Context, mgmt *Subscription, et evtype.EventType, p payload.Payload) error

// AsyncFunc is invoked with a frozen copy of the payload's Safe region by a
// consumer goroutine (core-owned for KindAsyncFn, user-owned for
// KindAsyncTask). It must never attempt to read an Unsafe region — none is
// available here.
type AsyncFunc func(ctx context.Context, et evtype.EventType, safe any) error

// Pusher is the minimal interface an async queue implementation must
// satisfy to back a subscription. It is implemented by *asyncqueue.Queue;
// kept as a local interface here (rather than importing asyncqueue) so the
// two packages do not form an import cycle — asyncqueue imports
// subscription for the Envelope type, not the reverse.
type Pusher interface {
	// TryPush attempts to enqueue env, returning false if the queue refuses
	// it (e.g. at capacity). It must call its configured Wakeup exactly when
	// the queue transitions from empty to non-empty.
	TryPush(env *Envelope) bool
}

// Descriptor is the tagged union over the three handler flavors (spec
// §4.1's HandlerDescriptor). Construct one via the sibling handler package's
// Sync/AsyncFn/AsyncTask factories rather than building it by hand.
type Descriptor struct {
	Kind        Kind
	ID          uint64 // 0 = anonymous, cannot be looked up
	Private     any
	PrivateFree func(any)
	SyncFn      SyncFunc
	AsyncFn     AsyncFunc
	Queue       Pusher // required for KindAsyncTask; ignored for the others
}

// Lister is implemented by the owning sublist. Unsub/Unsubscribe forward
// into it so the subscription is unlinked from the membership slice at
// once; a publish walk in progress keeps iterating its own snapshot (see
// sublist package). It reports whether the id was found active and unlinked, so external
// callers (Ref.Unsubscribe) can distinguish a real transition from a
// no-op on an already-gone subscription.
type Lister interface {
	Unsubscribe(id SubID) bool
}

// Subscription is the refcounted record described by spec §3. It is created
// only by the dispatcher (via sublist.List.Insert, which wires Lister) and
// is never copied after construction.
type Subscription struct {
	id     SubID
	extID  uint64
	owner  Lister
	desc   Descriptor
	queue  Pusher // resolved: desc.Queue for AsyncTask, core-owned for AsyncFn

	filterMu sync.RWMutex
	filter   evtype.EventType

	refcount    atomic.Int64
	outstanding atomic.Int64
	active      atomic.Bool
	released    atomic.Bool // set once PrivateFree has run

	// pushMu serializes envelope pushes against the deactivation
	// transition. Without it, a publisher that read a stale active flag
	// could enqueue a data envelope after the terminal SubEnd, or after a
	// core-owned worker's final drain — stranding the envelope and the
	// private data it pins.
	pushMu sync.Mutex

	onDeactivate func() // optional, core-internal (AsyncFn worker shutdown hook)
	onSubEnd     func() // optional, core-internal (KindAsyncTask SubEnd logging hook)
}

// New constructs a Subscription born active with refcount 1 (the sublist's
// own membership reference). queue, if non-nil, overrides desc.Queue — used
// by the dispatcher to wire the core-owned queue for KindAsyncFn.
func New(id SubID, filter evtype.EventType, desc Descriptor, owner Lister, queue Pusher) *Subscription {
	s := &Subscription{
		id:     id,
		extID:  desc.ID,
		owner:  owner,
		desc:   desc,
		filter: filter,
	}
	if queue != nil {
		s.queue = queue
	} else {
		s.queue = desc.Queue
	}
	s.active.Store(true)
	s.refcount.Store(1)
	return s
}

// ID returns the subscription's internal monotonic handle.
func (s *Subscription) ID() SubID { return s.id }

// ExtID returns the caller-supplied identified id (0 if anonymous).
func (s *Subscription) ExtID() uint64 { return s.extID }

// Kind returns the handler flavor.
func (s *Subscription) Kind() Kind { return s.desc.Kind }

// Active reports whether the subscription is still reachable from its
// owning sublist.
func (s *Subscription) Active() bool { return s.active.Load() }

// Outstanding returns the number of envelopes enqueued but not yet freed.
func (s *Subscription) Outstanding() int64 { return s.outstanding.Load() }

// Refcount returns the current reference count, for tests and diagnostics.
func (s *Subscription) Refcount() int64 { return s.refcount.Load() }

// Filter returns the current event type filter (sub-mgmt's get_sub).
func (s *Subscription) Filter() evtype.EventType {
	s.filterMu.RLock()
	defer s.filterMu.RUnlock()
	return s.filter
}

// Resub atomically replaces the filter (sub-mgmt's resub). It fails if the
// new filter's family differs from the current one's — family change is
// never permitted, since it would silently change the payload type a
// handler expects.
func (s *Subscription) Resub(newFilter evtype.EventType) error {
	s.filterMu.Lock()
	defer s.filterMu.Unlock()
	if s.filter.Family() != newFilter.Family() {
		return errFamilyChange
	}
	s.filter = newFilter
	return nil
}

var errFamilyChange = errors.New("subscription: resub may not change filter family")

// ErrFamilyChange is returned by Resub/Resubscribe when the new filter's
// family differs from the subscription's current family.
func ErrFamilyChange() error { return errFamilyChange }

// SetOnDeactivate installs a one-shot hook invoked the moment Deactivate
// transitions this subscription from active to inactive. It exists so the
// dispatcher can signal a core-owned AsyncFn worker to wind down; it is
// never used by the AsyncTask flavor, which instead observes the SubEnd
// envelope emitted below.
func (s *Subscription) SetOnDeactivate(fn func()) {
	s.onDeactivate = fn
}

// SetOnSubEnd installs a one-shot hook invoked immediately after Deactivate
// successfully enqueues the terminal SubEnd envelope for a KindAsyncTask
// subscription. It exists so the dispatcher can log the emission without
// the subscription package depending on hublog; never called for the other
// two flavors, since only KindAsyncTask ever emits SubEnd.
func (s *Subscription) SetOnSubEnd(fn func()) {
	s.onSubEnd = fn
}

// Unsub is the in-handler sub-mgmt facade: mark inactive and request unlink
// from the owning sublist. Idempotent; safe from any thread, including the
// subscription's own running handler. Reports whether this call performed
// the unlink.
func (s *Subscription) Unsub() bool {
	return s.owner.Unsubscribe(s.id)
}

// Deactivate performs the active -> inactive transition exactly once,
// regardless of how many callers race to trigger it (handler self-unsub,
// external Unsubscribe, or sublist Destroy). It reports whether this call
// performed the transition. On a successful transition it drops the
// sublist's own membership reference and, for KindAsyncTask, enqueues the
// terminal SubEnd envelope — satisfying invariant 4 by construction rather
// than by caller discipline.
func (s *Subscription) Deactivate() bool {
	if !s.active.CompareAndSwap(true, false) {
		return false
	}
	if s.desc.Kind == KindAsyncTask {
		// Best-effort: if the queue has no room, the task still observes
		// termination via its own queue going permanently silent. There is
		// no rollback path for a failed terminal envelope (see dispatcher
		// design note on partial-delivery).
		if err := s.pushEnvelope(evtype.SubEnd, nil, true); err == nil && s.onSubEnd != nil {
			s.onSubEnd()
		}
	} else {
		// Barrier: a publisher that read the stale active flag and is
		// mid-push still holds pushMu; wait it out so the onDeactivate
		// hook (and a core-owned worker's final drain) happens strictly
		// after any such envelope lands in the queue.
		s.pushMu.Lock()
		s.pushMu.Unlock()
	}
	if s.onDeactivate != nil {
		s.onDeactivate()
	}
	s.Drop() // release the sublist's membership reference
	return true
}

// Take increments the reference count (external-holder API).
func (s *Subscription) Take() {
	s.refcount.Add(1)
}

// Drop decrements the reference count and releases the subscription's
// storage — running PrivateFree exactly once — the instant refcount reaches
// zero, active is false, and no envelopes remain outstanding. A later
// Take/Drop cycle that brings refcount back to zero does not run it again.
func (s *Subscription) Drop() {
	if s.refcount.Add(-1) != 0 {
		return
	}
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	if s.desc.PrivateFree != nil {
		s.desc.PrivateFree(s.desc.Private)
	}
}

// PushEnvelope builds an envelope carrying a frozen copy of safe, takes a
// reference on s, increments outstanding, and pushes it onto s's queue. On
// queue rejection (modeling allocation failure) the tentative reference and
// outstanding increment are rolled back and ErrQueueFull is returned; no
// envelope is left enqueued. ErrInactive is returned if s was deactivated
// after the dispatcher's walk saw it active.
func (s *Subscription) PushEnvelope(et evtype.EventType, safe any) error {
	return s.pushEnvelope(et, safe, false)
}

// pushEnvelope is the locked push path. terminal is true only for the
// SubEnd envelope Deactivate emits after flipping active to false; every
// other push is rejected once the flag is down, which is what makes SubEnd
// the last envelope a queue ever delivers for s.
func (s *Subscription) pushEnvelope(et evtype.EventType, safe any, terminal bool) error {
	if s.queue == nil {
		return ErrNoQueue
	}
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	if !terminal && !s.active.Load() {
		return ErrInactive
	}
	s.Take()
	s.outstanding.Add(1)
	env := &Envelope{Type: et, Safe: safe, Private: s.desc.Private, sub: s}
	if !s.queue.TryPush(env) {
		s.outstanding.Add(-1)
		s.Drop()
		return ErrQueueFull
	}
	return nil
}

// Descriptor returns the subscription's handler descriptor, for the
// dispatcher's sync-call and worker-spawn paths.
func (s *Subscription) Descriptor() Descriptor { return s.desc }

// Envelope is the dispatcher-allocated, queue-borne record carrying a safe
// payload copy plus a reference to its owning subscription (spec §3).
type Envelope struct {
	// Type is the event type as published (or evtype.SubEnd for the
	// terminal control envelope).
	Type evtype.EventType
	// Safe is the frozen copy of the payload's Safe() region. It is nil for
	// SubEnd.
	Safe any
	// Private is the subscription's private data, visible to the async
	// handler without requiring a second lookup.
	Private any

	sub *Subscription
}

// Free releases the envelope: it decrements the owning subscription's
// outstanding counter and drops the envelope's reference, which may trigger
// storage release and PrivateFree. Consumers must call Free exactly once
// per popped envelope.
func (e *Envelope) Free() {
	e.sub.outstanding.Add(-1)
	e.sub.Drop()
}

// IsSubEnd reports whether this is the terminal control envelope.
func (e *Envelope) IsSubEnd() bool {
	return evtype.Equal(e.Type, evtype.SubEnd)
}
