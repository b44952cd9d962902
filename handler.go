package hub

import (
	"context"
	"fmt"

	"github.com/lattice-io/evhub/evtype"
	"github.com/lattice-io/evhub/handler"
	"github.com/lattice-io/evhub/hublog"
	"github.com/lattice-io/evhub/subscription"
)

// SubscribeFunc is the convenience half of the domain stack's "topic/
// attribute sugar" layer (spec §4.6): it wraps a loosely-typed callback via
// WrapSyncFunc (or a registered WithCallbackConverter) into a
// subscription.SyncFunc and subscribes it as a KindSync descriptor on list.
// Pass a nil list to target the Hub's global sublist.
func (h *Hub) SubscribeFunc(list *SubList, t evtype.EventType, cb any) (SubID, error) {
	fn, err := h.toSyncFunc(cb)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return h.SubscribeEvent(list, t, handler.Sync(fn))
}

// toSyncFunc tries every registered converter before falling back to the
// built-in WrapSyncFunc type switch.
func (h *Hub) toSyncFunc(cb any) (subscription.SyncFunc, error) {
	for _, conv := range h.convertToSync {
		fn, err := conv(context.Background(), cb)
		if err != nil {
			return nil, err
		}
		if fn != nil {
			return fn, nil
		}
	}
	return WrapSyncFunc(cb)
}

// SubscribeWithTopic is SubscribeFunc plus a Topic tag recorded against the
// resulting subscription id for diagnostics — e.g. a debug endpoint that
// wants to render "who is subscribed to what" using the donor's key=value
// attribute model without involving Topic in the dispatch path itself (see
// spec §9: the donor's attribute-matching index is deliberately kept out of
// the exact EventType walk). The tag is removed on Unsubscribe.
func (h *Hub) SubscribeWithTopic(list *SubList, t evtype.EventType, topic *Topic, cb any) (SubID, error) {
	id, err := h.SubscribeFunc(list, t, cb)
	if err != nil {
		return 0, err
	}
	if topic != nil {
		h.topicsMu.Lock()
		h.topics[id] = topic
		h.topicsMu.Unlock()
		hublog.TopicTagged(h.logger, uint64(id), topic.String())
	}
	return id, nil
}

// TopicFor returns the Topic tag recorded for id via SubscribeWithTopic, if
// any.
func (h *Hub) TopicFor(id SubID) (*Topic, bool) {
	h.topicsMu.RLock()
	defer h.topicsMu.RUnlock()
	t, ok := h.topics[id]
	return t, ok
}

func (h *Hub) forgetTopic(id SubID) {
	h.topicsMu.Lock()
	delete(h.topics, id)
	h.topicsMu.Unlock()
}
