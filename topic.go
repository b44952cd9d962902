package hub

import "github.com/lattice-io/evhub/pkg/kv"

// Any is the wildcard attribute value: it matches every concrete value on
// the other side of a Topic.Match comparison.
const Any string = "*"

// Topic is an immutable set of key=value attributes a subscription can be
// tagged with via SubscribeWithTopic. Topics never participate in the
// dispatch walk — matching there is strictly by EventType — they exist so
// diagnostic surfaces (structured logs, a "who subscribes to what" dump)
// can describe subscriptions in richer terms than a family/subtype pair.
type Topic struct {
	mp kv.Map
}

// NewTopic builds a Topic from attribute pairs, given either as "key=value"
// strings or as alternating "key", "value" arguments.
func NewTopic(args ...string) (*Topic, error) {
	mp, err := kv.Parse(args...)
	if err != nil {
		return nil, err
	}
	return &Topic{mp: mp}, nil
}

// T is NewTopic that panics on a malformed pair, for tests and static
// initialization where the input is a literal.
func T(args ...string) *Topic {
	t, err := NewTopic(args...)
	if err != nil {
		panic(err)
	}
	return t
}

// With returns a new Topic carrying the receiver's attributes merged with
// args; args win on key collision. Panics on a malformed pair.
func (t *Topic) With(args ...string) *Topic {
	other, err := kv.Parse(args...)
	if err != nil {
		panic(err)
	}
	return &Topic{mp: t.mp.Merge(other)}
}

// Get returns the value stored under k, or "" if k is absent.
func (t *Topic) Get(k string) string {
	return t.mp.Get(k)
}

// Each calls cb for every attribute pair, in sorted key order.
func (t *Topic) Each(cb func(k, v string)) {
	t.mp.Each(cb)
}

// Match reports whether every attribute of t is present in other with an
// equal value, treating Any on either side as equal to anything. Extra keys
// in other are ignored.
func (t *Topic) Match(other *Topic) bool {
	return t.mp.Match(other.mp)
}

// Len returns the number of attribute pairs.
func (t *Topic) Len() int {
	return t.mp.Len()
}

// String renders the attributes in canonical sorted key=value form, for
// structured logging (see hublog.TopicTagged).
func (t *Topic) String() string {
	if t == nil {
		return ""
	}
	return t.mp.String()
}
