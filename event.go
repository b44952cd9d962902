package hub

import (
	"context"

	"github.com/lattice-io/evhub/evtype"
	"github.com/lattice-io/evhub/payload"
	"github.com/lattice-io/evhub/subscription"
)

// SubscribeEvent registers desc against t on the process-wide default Hub's
// global sublist. See (*Hub).SubscribeEvent.
func SubscribeEvent(t evtype.EventType, desc subscription.Descriptor) (SubID, error) {
	return Default().SubscribeEvent(nil, t, desc)
}

// SubscribeEventPtr is the handle-returning variant of SubscribeEvent,
// against the default Hub's global sublist. See (*Hub).SubscribeEventPtr.
func SubscribeEventPtr(t evtype.EventType, desc subscription.Descriptor) (*subscription.Ref, error) {
	return Default().SubscribeEventPtr(nil, t, desc)
}

// SubscribeFunc wraps a loosely-typed callback and subscribes it on the
// default Hub's global sublist. See (*Hub).SubscribeFunc.
func SubscribeFunc(t evtype.EventType, cb any) (SubID, error) {
	return Default().SubscribeFunc(nil, t, cb)
}

// Publish publishes eventType on the default Hub's global sublist. See
// (*Hub).Publish.
func Publish(ctx context.Context, eventType evtype.EventType, p payload.Payload) error {
	return Default().Publish(ctx, nil, eventType, p)
}

// Unsubscribe removes id from the default Hub's global sublist. See
// (*Hub).Unsubscribe.
func Unsubscribe(id SubID) bool {
	return Default().Unsubscribe(nil, id)
}

// Global returns the default Hub's own global SubList, for callers that
// need to pass it explicitly (e.g. to sublist.List methods not exposed
// through Hub).
func Global() *SubList {
	return Default().global
}
