// Package hub implements the dispatcher (component C5): the single
// Publish entry point, the typed SubscribeEvent/SubscribeEventPtr surface,
// and the looser convenience facade layered on top of them.
package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lattice-io/evhub/asyncqueue"
	"github.com/lattice-io/evhub/evtype"
	"github.com/lattice-io/evhub/hublog"
	"github.com/lattice-io/evhub/hubmetrics"
	"github.com/lattice-io/evhub/payload"
	"github.com/lattice-io/evhub/pkg/cmap"
	"github.com/lattice-io/evhub/sublist"
	"github.com/lattice-io/evhub/subscription"
)

// Hub is the dispatcher: it owns a default global sublist, its logging and
// metrics configuration, and the core-owned worker lifecycle for
// KindAsyncFn subscriptions. The zero value is not usable; construct one
// with New.
type Hub struct {
	global *sublist.List

	logger           zerolog.Logger
	metrics          *hubmetrics.Collectors
	envelopeCapacity uintptr
	asyncQueueDepth  int
	convertToSync    []func(ctx context.Context, cb any) (subscription.SyncFunc, error)

	debugCounts *cmap.CMap

	topicsMu sync.RWMutex
	topics   map[SubID]*Topic
}

// New constructs a Hub with its own global sublist, configured by opts.
func New(opts ...HubOption) *Hub {
	h := &Hub{
		global:           sublist.New(),
		logger:           hublog.Nop(),
		envelopeCapacity: payload.DefaultAsyncCapacity,
		asyncQueueDepth:  defaultAsyncQueueDepth,
		debugCounts:      cmap.New(),
		topics:           make(map[SubID]*Topic),
	}
	for _, o := range opts {
		o.apply(h)
	}
	return h
}

// defaultAsyncQueueDepth bounds the number of envelopes a core-owned
// KindAsyncFn queue holds before PushEnvelope starts reporting
// ErrAllocFailed. It is intentionally independent of envelopeCapacity
// (which bounds a single payload's byte size, not how many may queue at
// once); override per Hub via WithAsyncQueueDepth.
const defaultAsyncQueueDepth = 1024

var (
	defaultHub     *Hub
	defaultHubOnce sync.Once
)

// Default returns the process-wide Hub singleton, lazily constructed on
// first use with no options (see spec §9 "global state"). Package-level
// sugar functions (SubscribeEvent, SubscribeFunc, Publish, Unsubscribe, ...)
// delegate to it.
func Default() *Hub {
	defaultHubOnce.Do(func() { defaultHub = New() })
	return defaultHub
}

// Close tears down the Hub's own global sublist: every still-active
// subscription on it is deactivated, any KindAsyncTask member receives its
// terminal SubEnd envelope, and core-owned KindAsyncFn workers are signaled
// to drain and exit. It does not touch sublists the caller created
// explicitly (those are the caller's to Destroy). ctx bounds how long Close
// waits while walking members; a cancelled ctx leaves the members not yet
// reached active on the global list for a subsequent call to finish,
// matching sublist.Destroy's own early-exit contract.
func (h *Hub) Close(ctx context.Context) {
	h.global.Destroy(ctx)
}

func (h *Hub) resolveList(list *SubList) *SubList {
	if list == nil {
		return h.global
	}
	return list
}

// Len reports the number of active subscriptions on list (or the Hub's
// global list, if list is nil).
func (h *Hub) Len(list *SubList) int {
	return h.resolveList(list).Len()
}

// DebugCounts returns a snapshot of per-event-type publish counts observed
// since the Hub was constructed, keyed by evtype.EventType.String().
func (h *Hub) DebugCounts() map[string]int {
	return h.debugCounts.Snapshot()
}

// SubscribeEvent registers desc against t on list (or the Hub's global list
// if list is nil) and returns the new subscription's internal id. For
// KindAsyncFn, the Hub wires its own bounded queue and spawns the
// core-owned worker goroutine that drains it.
func (h *Hub) SubscribeEvent(list *SubList, t evtype.EventType, desc subscription.Descriptor) (SubID, error) {
	s, err := h.subscribe(list, t, desc, false)
	if err != nil {
		return 0, err
	}
	return s.ID(), nil
}

// SubscribeEventPtr is the handle-returning variant of SubscribeEvent: the
// subscription's refcount starts at 2 (one for the sublist, one for the
// caller), and the caller must eventually Drop the returned Ref. The extra
// reference is taken before the subscription is visible to lookups, so a
// concurrent LookupUnsubscribe on the same id can never release storage the
// returned Ref still points at.
func (h *Hub) SubscribeEventPtr(list *SubList, t evtype.EventType, desc subscription.Descriptor) (*subscription.Ref, error) {
	s, err := h.subscribe(list, t, desc, true)
	if err != nil {
		return nil, err
	}
	return subscription.NewRef(s), nil
}

func (h *Hub) subscribe(list *SubList, t evtype.EventType, desc subscription.Descriptor, take bool) (*subscription.Subscription, error) {
	if t.Family() == evtype.ControlFamily {
		return nil, fmt.Errorf("%w: family 0 is reserved for core control events", ErrBadArgument)
	}
	if desc.Kind == subscription.KindAsyncTask && desc.Queue == nil {
		return nil, fmt.Errorf("%w: async-task descriptor requires a queue", ErrBadArgument)
	}

	l := h.resolveList(list)
	var queue subscription.Pusher
	var stop chan struct{}
	var wake *asyncqueue.ChanWakeup
	var q *asyncqueue.Queue
	if desc.Kind == subscription.KindAsyncFn {
		wake = asyncqueue.NewChanWakeup()
		q = asyncqueue.New(wake, h.asyncQueueDepth)
		queue = q
		stop = make(chan struct{})
	}

	var s *subscription.Subscription
	if take {
		s = l.InsertTake(t, desc, queue)
	} else {
		s = l.Insert(t, desc, queue)
	}

	if desc.Kind == subscription.KindAsyncFn {
		s.SetOnDeactivate(func() { close(stop) })
		go h.runAsyncFnWorker(s, q, wake, stop)
	}
	if desc.Kind == subscription.KindAsyncTask {
		s.SetOnSubEnd(func() { hublog.SubEndEmitted(h.logger, uint64(s.ID())) })
	}

	h.metrics.SetActive(t.String(), l.Len())
	hublog.Subscribed(h.logger, uint64(s.ID()), s.ExtID(), t.String(), kindString(desc.Kind))
	return s, nil
}

// Unsubscribe deactivates and unlinks the subscription identified by its
// internal id, on list (or the Hub's global list if list is nil). It
// reports false if id was already inactive — an idempotent no-op.
func (h *Hub) Unsubscribe(list *SubList, id SubID) bool {
	l := h.resolveList(list)
	var et string
	for _, m := range l.Snapshot() {
		if m.ID() == id {
			et = m.Filter().String()
			break
		}
	}
	ok := l.Unsubscribe(id)
	if ok {
		h.forgetTopic(id)
		hublog.Unsubscribed(h.logger, uint64(id), et)
		h.metrics.SetActive(et, l.Len())
	}
	return ok
}

// Publish is the dispatcher's single entry point (spec §4.5). It validates
// eventType and payload, then walks list (or the Hub's global list if list
// is nil): sync subscriptions are invoked inline, in insertion order,
// before any async envelope for this publish call is enqueued. It returns
// nil on success or when there were no matches, and an error wrapping
// ErrAllocFailed only when there was at least one match and every matching
// async enqueue failed (sync matches always count as delivered). A handler
// calling Unsub on itself or a sibling subscription mid-walk is safe: the
// snapshot being walked is never mutated in place (see package sublist).
func (h *Hub) Publish(ctx context.Context, list *SubList, eventType evtype.EventType, p payload.Payload) error {
	start := time.Now()
	defer func() { h.metrics.ObservePublish(time.Since(start).Seconds()) }()

	if !eventType.IsSingleSubtype() {
		err := fmt.Errorf("%w: published event must have exactly one subtype bit set, got %s", ErrBadArgument, eventType)
		hublog.BadArgument(h.logger, eventType.String(), err)
		h.metrics.IncPublish(hubmetrics.ResultFailed)
		return err
	}
	if eventType.Family() == evtype.ControlFamily {
		err := fmt.Errorf("%w: publishers may not emit family 0 (reserved for core control events)", ErrBadArgument)
		hublog.BadArgument(h.logger, eventType.String(), err)
		h.metrics.IncPublish(hubmetrics.ResultFailed)
		return err
	}
	var safe any
	if p != nil {
		safe = p.Safe()
		if sz := payload.SafeSize(safe); sz > h.envelopeCapacity {
			err := fmt.Errorf("%w: payload safe region is %d bytes, exceeds envelope capacity %d", ErrBadArgument, sz, h.envelopeCapacity)
			hublog.BadArgument(h.logger, eventType.String(), err)
			h.metrics.IncPublish(hubmetrics.ResultFailed)
			return err
		}
	}

	l := h.resolveList(list)
	h.debugCounts.Add(eventType.String(), 1)

	// Two passes: every matching sync handler runs before any async
	// envelope of this publish call is enqueued, each pass in insertion
	// order. A sync handler that unsubscribes an async sibling in the first
	// pass makes the second pass skip it. The walk deliberately ignores
	// ctx: dispatch never stops partway on cancellation (ctx is forwarded
	// to sync handlers, which may honor it themselves).
	var matched, notified int
	l.IterForPublish(nil, eventType, func(s *subscription.Subscription) bool {
		if s.Kind() != subscription.KindSync {
			return true
		}
		matched++
		desc := s.Descriptor()
		if desc.SyncFn != nil {
			if err := desc.SyncFn(ctx, s, eventType, p); err != nil {
				hublog.PublishFailed(h.logger, eventType.String(), 1, err)
			}
		}
		notified++
		return true
	})
	l.IterForPublish(nil, eventType, func(s *subscription.Subscription) bool {
		if s.Kind() == subscription.KindSync {
			return true
		}
		matched++
		if err := s.PushEnvelope(eventType, safe); err != nil {
			if errors.Is(err, subscription.ErrInactive) {
				// Lost the race with a concurrent unsubscribe; the same
				// outcome as IterForPublish's active check having seen it
				// first.
				matched--
				return true
			}
			h.metrics.IncDropped(eventType.String())
			return true
		}
		h.metrics.IncEnqueued(eventType.String())
		notified++
		return true
	})

	if matched > 0 && notified == 0 {
		err := fmt.Errorf("%w: %d subscription(s) matched %s but none could be notified", ErrAllocFailed, matched, eventType)
		hublog.PublishFailed(h.logger, eventType.String(), matched, err)
		h.metrics.IncPublish(hubmetrics.ResultFailed)
		return err
	}
	if matched == 0 {
		h.metrics.IncPublish(hubmetrics.ResultNoMatch)
	} else {
		h.metrics.IncPublish(hubmetrics.ResultOK)
	}
	return nil
}

// runAsyncFnWorker is the core-owned consumer goroutine behind a
// KindAsyncFn subscription: it blocks on wake until notified, drains q
// until empty (calling the subscription's AsyncFn for each envelope), and
// exits after one final drain once stop is closed by the subscription's
// onDeactivate hook.
func (h *Hub) runAsyncFnWorker(s *subscription.Subscription, q *asyncqueue.Queue, wake *asyncqueue.ChanWakeup, stop chan struct{}) {
	drain := func() {
		desc := s.Descriptor()
		for {
			env, ok := q.Pop()
			if !ok {
				return
			}
			if desc.AsyncFn != nil {
				if err := desc.AsyncFn(context.Background(), env.Type, env.Safe); err != nil {
					hublog.PublishFailed(h.logger, env.Type.String(), 1, err)
				}
			}
			env.Free()
		}
	}

	for {
		select {
		case <-wake.C():
			drain()
		case <-stop:
			drain()
			return
		}
	}
}

func kindString(k subscription.Kind) string {
	switch k {
	case subscription.KindSync:
		return "sync"
	case subscription.KindAsyncFn:
		return "async-fn"
	case subscription.KindAsyncTask:
		return "async-task"
	default:
		return "unknown"
	}
}
