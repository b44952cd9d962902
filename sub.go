package hub

import "github.com/lattice-io/evhub/subscription"

// SubID is the internal, monotonically assigned handle every subscription
// receives at birth. It is re-exported here so callers need not import the
// subscription package directly for the common case.
type SubID = subscription.SubID
