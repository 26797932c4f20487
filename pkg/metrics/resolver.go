// Package metrics is the NodeGuardian Metrics Resolver: a three-tier metric
// lookup (Prometheus primary, metrics-server typed client fallback, simple
// inference as a last resort).
package metrics

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/sony/gobreaker"
	"k8s.io/client-go/kubernetes"
	metricsclientset "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/nodeguardian/nodeguardian/internal/ngerrors"
	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// queryDeadline bounds a single Prometheus or metrics-server round trip,
// matching the 10s timeout in common.py's _query_prometheus /
// metrics-server calls.
const queryDeadline = 10 * time.Second

// Resolver resolves a metric key for a node, trying tiers in order and
// returning MetricUnavailable only once every tier has been exhausted.
type Resolver struct {
	prom            promv1.API
	hasProm         bool
	metricsClient   metricsclientset.Interface
	coreClient      kubernetes.Interface
	promBreaker     *gobreaker.CircuitBreaker
	serverBreaker   *gobreaker.CircuitBreaker
	log             logr.Logger
}

// Config bundles the Resolver's dependencies. PrometheusURL may be empty, in
// which case the Prometheus tier is skipped entirely and resolution starts
// at the metrics-server tier.
type Config struct {
	PrometheusURL string
	MetricsClient metricsclientset.Interface
	CoreClient    kubernetes.Interface
	Log           logr.Logger
}

// New builds a Resolver. Each external dependency gets its own circuit
// breaker so a sustained Prometheus outage doesn't also throttle the
// metrics-server fallback tier.
func New(cfg Config) (*Resolver, error) {
	r := &Resolver{
		metricsClient: cfg.MetricsClient,
		coreClient:    cfg.CoreClient,
		log:           cfg.Log.WithName("metrics-resolver"),
		promBreaker:   gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "prometheus"}),
		serverBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "metrics-server"}),
	}
	if cfg.PrometheusURL != "" {
		client, err := api.NewClient(api.Config{Address: cfg.PrometheusURL})
		if err != nil {
			return nil, err
		}
		r.prom = promv1.NewAPI(client)
		r.hasProm = true
	}
	return r, nil
}

// Resolve returns the current value of metric for node, trying Prometheus,
// then the metrics-server tier, then inference. It never returns an error
// for a quiet tier miss — it only errors when every tier is exhausted.
func (r *Resolver) Resolve(ctx context.Context, node string, metric ngv1.MetricKey) (float64, error) {
	log := r.log.WithValues("node", node, "metric", string(metric))

	if r.hasProm {
		v, ok, err := r.queryPrometheus(ctx, node, metric)
		if err != nil {
			log.V(1).Info("prometheus query failed", "error", err.Error())
		} else if ok {
			return v, nil
		}
	}

	v, ok, err := r.queryMetricsServer(ctx, node, metric)
	if err != nil {
		log.V(1).Info("metrics-server query failed", "error", err.Error())
	} else if ok {
		return v, nil
	}

	v, ok = r.infer(ctx, node, metric)
	if ok {
		return v, nil
	}

	return 0, &ngerrors.MetricUnavailable{Node: node, Metric: string(metric)}
}
