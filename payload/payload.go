// Package payload defines the two-region event body contract shared by the
// dispatcher, the async envelope pipeline, and publisher-defined event
// families.
package payload

import "reflect"

// DefaultAsyncCapacity is the default upper bound, in bytes, on the size of
// a payload's Safe() region that the dispatcher will accept into an async
// envelope. A Hub uses this unless the caller overrides it via
// WithEnvelopeCapacity. It is independent of queue depth (see
// WithAsyncQueueDepth), which bounds envelope *count*, not payload size.
const DefaultAsyncCapacity = 384

// Payload is implemented by publisher-defined event bodies. Safe returns the
// portion that is copied by value into async envelopes; Unsafe returns the
// portion reachable only from synchronous handlers — pointers, lock hints,
// anything whose lifetime is tied to the publishing call and must never
// outlive it.
type Payload interface {
	Safe() any
	Unsafe() any
}

// SafeSize reports the in-memory size, in bytes, that v's Safe() region
// would occupy once copied into an envelope. The dispatcher uses it against
// a configured envelope capacity to reject oversized payloads with
// ErrBadArgument before any subscription is touched, rather than discovering
// the problem mid-publish. v may be nil, which reports 0.
func SafeSize(v any) uintptr {
	if v == nil {
		return 0
	}
	return reflect.TypeOf(v).Size()
}

// Bytes is the simplest possible Payload: an opaque safe-only blob with no
// unsafe region. Useful for tests and for publishers that have nothing
// unsafe to offer.
type Bytes []byte

// Safe returns p itself.
func (p Bytes) Safe() any { return p }

// Unsafe always returns nil for Bytes.
func (p Bytes) Unsafe() any { return nil }
