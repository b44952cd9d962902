// Package sublist implements the ordered subscription set (component C3): a
// copy-on-write membership slice under a RWMutex, chosen specifically so
// that Publish's read-walk never holds the lock while invoking a handler.
// Because every mutation (Insert, Unsubscribe, Destroy) allocates a new
// backing slice rather than editing the live one in place, a Snapshot taken
// before a publish remains valid and stable for the whole iteration even
// while concurrent Insert/Unsubscribe calls proceed under the write lock —
// including a sync handler that calls Unsub on itself or a sibling
// subscription mid-iteration, which would otherwise deadlock Go's
// non-reentrant sync.RWMutex.
package sublist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lattice-io/evhub/evtype"
	"github.com/lattice-io/evhub/subscription"
)

// ErrNotFound is returned by LookupUnsubscribe and LookupResubscribe when no
// subscription matches the requested id (Lookup and LookupTake report a
// miss through their boolean result instead).
var ErrNotFound = errors.New("sublist: subscription not found")

// nextID hands out globally unique internal subscription ids across every
// List in the process, so merging or comparing subscriptions from distinct
// lists (e.g. a diagnostic dump spanning several event families) never
// collides.
var nextID atomic.Uint64

func allocID() subscription.SubID {
	return subscription.SubID(nextID.Add(1))
}

// List is an ordered, reference-counted set of subscriptions sharing a
// publish path. It implements subscription.Lister.
type List struct {
	mu      sync.RWMutex
	members []*subscription.Subscription
}

// New constructs an empty List.
func New() *List {
	return &List{}
}

var global = New()

// Global returns a process-wide List owned by this package. The hub
// package's Default Hub and its package-level functions do not use it; they
// publish against that Hub's own global list (hub.Global).
func Global() *List {
	return global
}

// Insert constructs a new Subscription with the given filter and handler
// descriptor, owned by this list, and adds it to the membership snapshot.
// queue overrides desc.Queue when non-nil (used by the dispatcher to wire a
// core-owned queue for KindAsyncFn).
func (l *List) Insert(filter evtype.EventType, desc subscription.Descriptor, queue subscription.Pusher) *subscription.Subscription {
	return l.insert(filter, desc, queue, false)
}

// InsertTake is Insert plus one extra caller-held reference, taken before
// the subscription becomes visible to concurrent lookups. The
// handle-returning subscribe variant uses it so a racing LookupUnsubscribe
// can never drive the refcount to zero on a subscription whose handle is
// about to be returned.
func (l *List) InsertTake(filter evtype.EventType, desc subscription.Descriptor, queue subscription.Pusher) *subscription.Subscription {
	return l.insert(filter, desc, queue, true)
}

func (l *List) insert(filter evtype.EventType, desc subscription.Descriptor, queue subscription.Pusher, take bool) *subscription.Subscription {
	s := subscription.New(allocID(), filter, desc, l, queue)
	if take {
		s.Take()
	}

	l.mu.Lock()
	next := make([]*subscription.Subscription, len(l.members)+1)
	copy(next, l.members)
	next[len(l.members)] = s
	l.members = next
	l.mu.Unlock()

	return s
}

// Unsubscribe implements subscription.Lister: it unlinks the subscription
// identified by the internal id from this list's membership snapshot and
// deactivates it. It reports false if id is not currently a member (already
// unsubscribed, or never belonged to this list) — an idempotent no-op.
func (l *List) Unsubscribe(id subscription.SubID) bool {
	s, ok := l.unlink(id)
	if !ok {
		return false
	}
	return s.Deactivate()
}

func (l *List) unlink(id subscription.SubID) (*subscription.Subscription, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, m := range l.members {
		if m.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	next := make([]*subscription.Subscription, 0, len(l.members)-1)
	next = append(next, l.members[:idx]...)
	next = append(next, l.members[idx+1:]...)
	s := l.members[idx]
	l.members = next
	return s, true
}

// Snapshot returns the current membership as a stable slice: callers may
// iterate it freely, including invoking handlers that mutate the list,
// without the risk of observing a torn or concurrently-modified view. The
// returned slice must not be modified by the caller.
func (l *List) Snapshot() []*subscription.Subscription {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.members
}

// Len reports the current membership count.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.members)
}

// Lookup finds the active member with the given caller-supplied identified
// id (Subscription.ExtID). extID 0 (anonymous) never matches. The walk is
// linear by design: identified-id lookups are a diagnostic/management-plane
// path, not the hot publish path, so a secondary index is not worth the
// extra bookkeeping this component would otherwise need.
func (l *List) Lookup(extID uint64) (*subscription.Subscription, bool) {
	if extID == 0 {
		return nil, false
	}
	for _, m := range l.Snapshot() {
		if m.ExtID() == extID {
			return m, true
		}
	}
	return nil, false
}

// LookupTake finds the member with the given identified id and takes a
// reference on it before returning, so the caller may safely use it after
// this call returns even if it is concurrently unsubscribed.
func (l *List) LookupTake(extID uint64) (*subscription.Subscription, bool) {
	s, ok := l.Lookup(extID)
	if !ok {
		return nil, false
	}
	s.Take()
	return s, true
}

// LookupUnsubscribe finds the member with the given identified id and
// unsubscribes it, returning ErrNotFound if no such member exists.
func (l *List) LookupUnsubscribe(extID uint64) error {
	s, ok := l.Lookup(extID)
	if !ok {
		return ErrNotFound
	}
	l.Unsubscribe(s.ID())
	return nil
}

// LookupResubscribe finds the member with the given identified id and
// replaces its filter, returning ErrNotFound if no such member exists (the
// family-change rejection itself surfaces as subscription.ErrFamilyChange).
func (l *List) LookupResubscribe(extID uint64, newFilter evtype.EventType) error {
	s, ok := l.Lookup(extID)
	if !ok {
		return ErrNotFound
	}
	return s.Resub(newFilter)
}

// IterForPublish calls fn for every member of the current snapshot that is
// active and whose filter matches eventType, in insertion order. Iteration
// stops early when ctx is cancelled or fn returns false. Because the
// snapshot is never mutated in place, fn may unsubscribe members — itself
// included — without invalidating the walk.
func (l *List) IterForPublish(ctx context.Context, eventType evtype.EventType, fn func(*subscription.Subscription) bool) {
	for _, m := range l.Snapshot() {
		if ctx != nil && ctx.Err() != nil {
			return
		}
		if !m.Active() || !evtype.Matches(m.Filter(), eventType) {
			continue
		}
		if !fn(m) {
			return
		}
	}
}

// Destroy deactivates and unlinks every current member, delivering SubEnd to
// any KindAsyncTask subscriptions and releasing private data for any whose
// refcount reaches zero. It checks ctx between members so a caller racing a
// shutdown deadline can bail out early; the members not yet reached are put
// back on the list, still active, for a subsequent call to deactivate.
func (l *List) Destroy(ctx context.Context) {
	l.mu.Lock()
	members := l.members
	l.members = nil
	l.mu.Unlock()

	for i, m := range members {
		if ctx != nil && ctx.Err() != nil {
			l.mu.Lock()
			l.members = append(l.members, members[i:]...)
			l.mu.Unlock()
			return
		}
		m.Deactivate()
	}
}
