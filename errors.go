package hub

import (
	"errors"

	"github.com/lattice-io/evhub/sublist"
)

// ErrBadArgument marks a programmer error: a malformed event type, a
// family-0 subscribe or publish, an async-task descriptor without a queue,
// or a payload whose Safe() region exceeds the configured envelope
// capacity. A Resub that attempts to change a subscription's family is
// rejected with subscription.ErrFamilyChange(), which does not wrap this.
// Callers are expected to treat a non-nil error wrapping this as a bug to
// fix, not a condition to retry (spec §7.1).
var ErrBadArgument = errors.New("evhub: bad argument")

// ErrAllocFailed marks a publish call that failed because every relevant
// async queue was at capacity; subscribe calls never return it. Publish
// returns it only when
// at least one subscription matched and every matching async enqueue
// failed; a mix of successful and failed enqueues within one publish call
// returns nil (spec §7.2, "no rollback on partial delivery").
var ErrAllocFailed = errors.New("evhub: allocation failed")

// ErrNotFound is returned by a sublist's LookupUnsubscribe and
// LookupResubscribe when no subscription matches the requested id. It aliases sublist.ErrNotFound
// rather than redefining it, so callers can errors.Is against either
// package's sentinel interchangeably.
var ErrNotFound = sublist.ErrNotFound
