package metrics

import "github.com/prometheus/client_golang/prometheus"

// OutreachMetrics exposes counters for two-way patient SMS.
type OutreachMetrics struct {
	outboundTotal *prometheus.CounterVec
	inboundTotal  *prometheus.CounterVec
}

func NewOutreachMetrics(reg prometheus.Registerer) *OutreachMetrics {
	m := &OutreachMetrics{
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blueprint",
			Subsystem: "outreach",
			Name:      "outbound_total",
			Help:      "Total outbound SMS sends by status",
		}, []string{"status"}),
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blueprint",
			Subsystem: "outreach",
			Name:      "inbound_total",
			Help:      "Total inbound SMS webhooks by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outboundTotal, m.inboundTotal)
	return m
}

func (m *OutreachMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *OutreachMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}
