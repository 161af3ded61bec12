package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for the portal workflows.
type PortalMetrics struct {
	invitationResolutions   *prometheus.CounterVec
	relationshipTransitions *prometheus.CounterVec
	terminologyLookups      *prometheus.CounterVec
	terminologyLatency      prometheus.Histogram
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		invitationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "somnolink",
			Subsystem: "invitations",
			Name:      "resolutions_total",
			Help:      "Invitation token resolutions by result",
		}, []string{"result"}),
		relationshipTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "somnolink",
			Subsystem: "invitations",
			Name:      "relationship_transitions_total",
			Help:      "Doctor-patient relationship transitions",
		}, []string{"transition"}),
		terminologyLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "somnolink",
			Subsystem: "terminology",
			Name:      "lookups_total",
			Help:      "Terminology searches by outcome",
		}, []string{"outcome"}),
		terminologyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "somnolink",
			Subsystem: "terminology",
			Name:      "lookup_latency_seconds",
			Help:      "Latency of upstream terminology searches",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.invitationResolutions, m.relationshipTransitions, m.terminologyLookups, m.terminologyLatency)
	return m
}

func (m *PortalMetrics) ObserveResolution(result string) {
	if m == nil {
		return
	}
	m.invitationResolutions.WithLabelValues(result).Inc()
}

func (m *PortalMetrics) ObserveTransition(transition string) {
	if m == nil {
		return
	}
	m.relationshipTransitions.WithLabelValues(transition).Inc()
}

func (m *PortalMetrics) ObserveTerminologyLookup(outcome string) {
	if m == nil {
		return
	}
	m.terminologyLookups.WithLabelValues(outcome).Inc()
}

func (m *PortalMetrics) ObserveTerminologyLatency(seconds float64) {
	if m == nil {
		return
	}
	m.terminologyLatency.Observe(seconds)
}
