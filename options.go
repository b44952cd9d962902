package hub

import (
	"context"

	"github.com/lattice-io/evhub/evtype"
	"github.com/lattice-io/evhub/payload"
	"github.com/lattice-io/evhub/subscription"
)

// Once wraps fn so it unsubscribes the delivering subscription after its
// first invocation, win or lose — the single-delivery convenience the donor
// exposed as a SubscribeOption, reshaped here as a SyncFunc combinator since
// sync-vs-async is now a property of the HandlerDescriptor, not a
// publish-time flag.
func Once(fn subscription.SyncFunc) subscription.SyncFunc {
	return func(ctx context.Context, mgmt *subscription.Subscription, et evtype.EventType, p payload.Payload) error {
		mgmt.Unsub()
		return fn(ctx, mgmt, et, p)
	}
}
