package hub

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lattice-io/evhub/hubmetrics"
	"github.com/lattice-io/evhub/subscription"
)

// HubOption configures a Hub at construction time, donor style (small,
// single-method configuration interfaces rather than a struct of optional
// fields).
type HubOption interface {
	apply(h *Hub)
}

type hubOptionFunc func(h *Hub)

func (f hubOptionFunc) apply(h *Hub) { f(h) }

// WithLogger installs a zerolog.Logger the Hub uses for its lifecycle and
// error logging (hublog). A Hub constructed without this option logs
// nothing (hublog.Nop()).
func WithLogger(log zerolog.Logger) HubOption {
	return hubOptionFunc(func(h *Hub) { h.logger = log })
}

// WithMetrics installs a *hubmetrics.Collectors the Hub reports subscription
// and publish counters through. Passing nil (the default) disables metrics
// entirely — every Collectors method is nil-receiver-safe.
func WithMetrics(c *hubmetrics.Collectors) HubOption {
	return hubOptionFunc(func(h *Hub) { h.metrics = c })
}

// WithEnvelopeCapacity overrides the default maximum size, in bytes, a
// payload's Safe() region may occupy before Publish rejects it with
// ErrBadArgument. Defaults to payload.DefaultAsyncCapacity.
func WithEnvelopeCapacity(n uintptr) HubOption {
	return hubOptionFunc(func(h *Hub) { h.envelopeCapacity = n })
}

// WithAsyncQueueDepth overrides how many envelopes a core-owned KindAsyncFn
// queue holds before further PushEnvelope calls fail (modeling an
// allocation failure per spec §7.2). Defaults to defaultAsyncQueueDepth.
// Unrelated to WithEnvelopeCapacity, which bounds a single payload's size.
func WithAsyncQueueDepth(n int) HubOption {
	return hubOptionFunc(func(h *Hub) { h.asyncQueueDepth = n })
}

// WithCallbackConverter registers a custom converter tried, in registration
// order, before the built-in WrapSyncFunc type switch when SubscribeFunc
// wraps a loosely-typed callback. A converter returns (nil, nil) to decline
// and let the next converter (or the built-in fallback) try.
func WithCallbackConverter(conv func(ctx context.Context, cb any) (subscription.SyncFunc, error)) HubOption {
	return hubOptionFunc(func(h *Hub) {
		if conv != nil {
			h.convertToSync = append(h.convertToSync, conv)
		}
	})
}
