package hub

import "github.com/lattice-io/evhub/sublist"

// SubList is the ordered subscription set a Hub publishes against,
// re-exported here so callers need not import the sublist package directly
// for the common case of creating a scoped list with NewSubList.
type SubList = sublist.List

// NewSubList constructs an empty, scoped SubList. Pass nil to any Hub
// method accepting a *SubList to target the Hub's own global list instead.
func NewSubList() *SubList {
	return sublist.New()
}
