package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus collectors exposed alongside the stream handler.
// They are registered against a caller-supplied registry so multiple
// handlers in tests don't collide on the global default one. The stream
// handler increments FramesEmitted and UpstreamErrors; ToolCalls and
// RepairFailures are registered and exported, but nothing increments them.
type Metrics struct {
	FramesEmitted   *prometheus.CounterVec
	ToolCalls       prometheus.Counter
	RepairFailures  prometheus.Counter
	UpstreamErrors  prometheus.Counter
}

// NewMetrics registers the collectors against reg and returns them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sseproxy",
			Name:      "frames_emitted_total",
			Help:      "Downstream SSE frames emitted, labelled by the phase of the upstream chunk that produced them.",
		}, []string{"kind"}),
		ToolCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sseproxy",
			Name:      "tool_calls_reconstructed_total",
			Help:      "Tool calls successfully reconstructed from upstream glm_block markup.",
		}),
		RepairFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sseproxy",
			Name:      "arg_repair_failures_total",
			Help:      "Tool-argument repair pipeline failures, where {} was substituted.",
		}),
		UpstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sseproxy",
			Name:      "upstream_errors_total",
			Help:      "Errors opening or reading the upstream SSE stream.",
		}),
	}
	reg.MustRegister(m.FramesEmitted, m.ToolCalls, m.RepairFailures, m.UpstreamErrors)
	return m
}
