package billing

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the billing collectors. A nil *Metrics records nothing.
type Metrics struct {
	webhookEvents     *prometheus.CounterVec
	entitlementWrites *prometheus.CounterVec
	gatewayErrors     *prometheus.CounterVec
}

// NewMetrics registers the billing collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrapmarket",
			Subsystem: "billing",
			Name:      "webhook_events_total",
			Help:      "Inbound billing webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
		entitlementWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrapmarket",
			Subsystem: "billing",
			Name:      "entitlement_writes_total",
			Help:      "Entitlement upserts by resulting premium flag.",
		}, []string{"premium"}),
		gatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrapmarket",
			Subsystem: "billing",
			Name:      "gateway_errors_total",
			Help:      "Failed billing platform calls by operation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.webhookEvents, m.entitlementWrites, m.gatewayErrors)
	return m
}

func (m *Metrics) webhook(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) entitlementWrite(premium bool) {
	if m == nil {
		return
	}
	label := "false"
	if premium {
		label = "true"
	}
	m.entitlementWrites.WithLabelValues(label).Inc()
}

func (m *Metrics) gatewayError(op string) {
	if m == nil {
		return
	}
	m.gatewayErrors.WithLabelValues(op).Inc()
}
