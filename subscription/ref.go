package subscription

import "github.com/lattice-io/evhub/evtype"

// Ref is an external, caller-held reference to a Subscription, returned by
// the pointer-subscribe variant. Its own Take has already been folded into
// the subscription's birth refcount (2: one for the sublist, one for the
// caller) by the dispatcher; callers must eventually Drop it.
type Ref struct {
	s *Subscription
}

// NewRef wraps s in an external Ref. The caller is responsible for having
// already accounted for this reference in s's refcount (the dispatcher does
// this at construction time for the ptr-subscribe variant).
func NewRef(s *Subscription) *Ref {
	return &Ref{s: s}
}

// Sub returns the underlying Subscription, for callers that need direct
// access (e.g. to re-check Active()).
func (r *Ref) Sub() *Subscription { return r.s }

// Take increments the reference count.
func (r *Ref) Take() { r.s.Take() }

// Drop decrements the reference count, possibly releasing storage.
func (r *Ref) Drop() { r.s.Drop() }

// Filter returns the subscription's current event type filter.
func (r *Ref) Filter() evtype.EventType { return r.s.Filter() }

// Unsubscribe requests the owning sublist unlink this subscription. It
// returns false if the subscription was already inactive (idempotent no-op
// per spec §7.4). Unlike calling Deactivate directly, this goes through the
// owning Lister so the sublist's membership slice is actually rebuilt
// without it, rather than leaving a deactivated zombie entry behind.
func (r *Ref) Unsubscribe() bool { return r.s.Unsub() }

// Resubscribe replaces the subscription's filter. It fails if the new
// filter's family differs from the current one.
func (r *Ref) Resubscribe(newFilter evtype.EventType) error { return r.s.Resub(newFilter) }
