// Package hubmetrics wires the dispatcher's publish/enqueue/drop counters
// into Prometheus. All methods are nil-receiver-safe: a Hub constructed
// without WithMetrics carries a nil *Collectors and every call becomes a
// no-op, so instrumentation never has to be conditional at the call site.
package hubmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors holds every metric the dispatcher exports. Labels are keyed by
// the event type's String() form, so registering a name via evtype.Register
// also gives that family/subtype a readable metrics label for free.
type Collectors struct {
	active       *prometheus.GaugeVec
	enqueued     *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	publishNs    prometheus.Histogram
	publishTotal *prometheus.CounterVec
}

// New constructs and registers a Collectors against reg under namespace. reg
// may be prometheus.DefaultRegisterer. Returns nil, err if registration
// fails (e.g. a duplicate namespace already registered).
func New(reg prometheus.Registerer, namespace string) (*Collectors, error) {
	c := &Collectors{
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "evhub",
			Name:      "subscriptions_active",
			Help:      "Number of currently active subscriptions, by event type.",
		}, []string{"event_type"}),
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evhub",
			Name:      "envelopes_enqueued_total",
			Help:      "Total async envelopes successfully enqueued, by event type.",
		}, []string{"event_type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evhub",
			Name:      "envelopes_dropped_total",
			Help:      "Total async envelopes rejected by a full queue, by event type.",
		}, []string{"event_type"}),
		publishNs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evhub",
			Name:      "publish_duration_seconds",
			Help:      "Wall-clock duration of Hub.Publish calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evhub",
			Name:      "publish_total",
			Help:      "Total Publish calls, by result (ok, no_match, failed).",
		}, []string{"result"}),
	}
	for _, coll := range []prometheus.Collector{c.active, c.enqueued, c.dropped, c.publishNs, c.publishTotal} {
		if err := reg.Register(coll); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetActive records the current active-subscription count for eventType.
func (c *Collectors) SetActive(eventType string, n int) {
	if c == nil {
		return
	}
	c.active.WithLabelValues(eventType).Set(float64(n))
}

// IncEnqueued increments the enqueued counter for eventType.
func (c *Collectors) IncEnqueued(eventType string) {
	if c == nil {
		return
	}
	c.enqueued.WithLabelValues(eventType).Inc()
}

// IncDropped increments the dropped counter for eventType.
func (c *Collectors) IncDropped(eventType string) {
	if c == nil {
		return
	}
	c.dropped.WithLabelValues(eventType).Inc()
}

// ObservePublish records one Publish call's duration in seconds.
func (c *Collectors) ObservePublish(seconds float64) {
	if c == nil {
		return
	}
	c.publishNs.Observe(seconds)
}

// Result labels for IncPublish.
const (
	ResultOK      = "ok"
	ResultNoMatch = "no_match"
	ResultFailed  = "failed"
)

// IncPublish increments the publish_total counter for the given result
// label ("ok", "no_match", or "failed"), matching hub.Publish's three
// possible outcomes.
func (c *Collectors) IncPublish(result string) {
	if c == nil {
		return
	}
	c.publishTotal.WithLabelValues(result).Inc()
}
