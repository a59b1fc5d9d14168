package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BidFlowMetrics records the entry workflow's server-side traffic.
type BidFlowMetrics struct {
	lookups    *prometheus.CounterVec
	inventory  prometheus.Counter
	mutations  *prometheus.CounterVec
	mutationMs *prometheus.HistogramVec
}

// NewBidFlowMetrics registers the bid-flow metrics on the provided registerer.
func NewBidFlowMetrics(reg prometheus.Registerer) *BidFlowMetrics {
	if reg == nil {
		return &BidFlowMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lookup_requests_total",
		Help: "Typeahead lookup requests by entity kind.",
	}, []string{"kind"})
	inventory := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_checks_total",
		Help: "Inventory check requests.",
	})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bid_mutations_total",
		Help: "Bid mutation requests by action and outcome.",
	}, []string{"action", "outcome"})
	mutationMs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bid_mutation_duration_seconds",
		Help:    "Duration of bid mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
	reg.MustRegister(lookups, inventory, mutations, mutationMs)
	return &BidFlowMetrics{
		lookups:    lookups,
		inventory:  inventory,
		mutations:  mutations,
		mutationMs: mutationMs,
	}
}

// ObserveLookup counts one lookup for the given entity kind.
func (m *BidFlowMetrics) ObserveLookup(kind string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveInventoryCheck counts one inventory check.
func (m *BidFlowMetrics) ObserveInventoryCheck() {
	if m == nil || m.inventory == nil {
		return
	}
	m.inventory.Inc()
}

// ObserveMutation records one bid mutation with its outcome and duration.
func (m *BidFlowMetrics) ObserveMutation(action string, err error, duration time.Duration) {
	if m == nil || m.mutations == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.mutations.WithLabelValues(normalizeLabel(action), outcome).Inc()
	m.mutationMs.WithLabelValues(normalizeLabel(action)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
