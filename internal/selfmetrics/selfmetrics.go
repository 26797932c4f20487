// Package selfmetrics holds the control loop's own Prometheus self-metrics:
// ticks run, actions executed, alerts sent (registered, but no code path
// increments it, so it stays at zero). These describe the operator's
// own health, separate from the cluster metrics the Metrics Resolver
// resolves for rule evaluation.
package selfmetrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles NodeGuardian's self-metrics behind one Prometheus
// registerer, one CounterVec/GaugeVec per metric, constructed and
// registered together at startup.
type Registry struct {
	TicksTotal          *prometheus.CounterVec
	ActionsExecutedTotal *prometheus.CounterVec
	// AlertsSentTotal is registered and exported but not incremented by the
	// dispatcher or any other component.
	AlertsSentTotal      *prometheus.CounterVec
	TriggeredNodesGauge  *prometheus.GaugeVec
}

// New builds and registers the self-metrics against reg.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		TicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodeguardian",
			Name:      "ticks_total",
			Help:      "Number of control loop ticks run, by driver.",
		}, []string{"driver"}),
		ActionsExecutedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodeguardian",
			Name:      "actions_executed_total",
			Help:      "Number of actions executed, by type and outcome.",
		}, []string{"type", "outcome"}),
		AlertsSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodeguardian",
			Name:      "alerts_sent_total",
			Help:      "Number of alerts dispatched, by channel and outcome.",
		}, []string{"channel", "outcome"}),
		TriggeredNodesGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nodeguardian",
			Name:      "triggered_nodes",
			Help:      "Current number of nodes in triggered state, by rule.",
		}, []string{"rule"}),
	}
	reg.MustRegister(r.TicksTotal, r.ActionsExecutedTotal, r.AlertsSentTotal, r.TriggeredNodesGauge)
	return r
}
