// Package handler provides the descriptor factories for the three
// subscription handler flavors (spec §4.1), so callers build a
// subscription.Descriptor by composing Sync/AsyncFn/AsyncTask with the
// optional WithID/WithPrivate modifiers instead of populating the tagged
// union's fields by hand.
package handler

import "github.com/lattice-io/evhub/subscription"

// Sync builds a descriptor invoked inline on the publishing goroutine. fn
// may read the payload's Unsafe region.
func Sync(fn subscription.SyncFunc) subscription.Descriptor {
	return subscription.Descriptor{Kind: subscription.KindSync, SyncFn: fn}
}

// AsyncFn builds a descriptor backed by a core-owned queue and a core-owned
// worker goroutine that calls fn with each event's Safe copy.
func AsyncFn(fn subscription.AsyncFunc) subscription.Descriptor {
	return subscription.Descriptor{Kind: subscription.KindAsyncFn, AsyncFn: fn}
}

// AsyncTask builds a descriptor backed by the caller's own queue. The
// caller is responsible for draining queue and observing the terminal
// SubEnd envelope; no AsyncFunc is invoked by the core for this flavor.
func AsyncTask(queue subscription.Pusher) subscription.Descriptor {
	return subscription.Descriptor{Kind: subscription.KindAsyncTask, Queue: queue}
}

// WithID attaches a caller-chosen identified id to desc, making the
// resulting subscription reachable via a sublist's Lookup* family. Pass 0
// (the default) to leave the subscription anonymous.
func WithID(desc subscription.Descriptor, id uint64) subscription.Descriptor {
	desc.ID = id
	return desc
}

// WithPrivate attaches opaque private data and its release function to
// desc. free is invoked exactly once, when the subscription's reference
// count reaches zero after deactivation — never while any envelope
// referencing it is still outstanding.
func WithPrivate(desc subscription.Descriptor, private any, free func(any)) subscription.Descriptor {
	desc.Private = private
	desc.PrivateFree = free
	return desc
}
