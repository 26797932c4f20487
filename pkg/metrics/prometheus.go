package metrics

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/prometheus/common/model"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// promQuery returns the PromQL expression for metric on node. The node name
// is escaped with regexp.QuoteMeta before interpolation into the instance
// regex matcher, since a bare node name can contain characters (such as '.')
// that are regex metacharacters PromQL would otherwise interpret; '-' is not
// one of them and is left as is.
func promQuery(node string, metric ngv1.MetricKey) (string, bool) {
	instance := regexp.QuoteMeta(node)
	switch metric {
	case ngv1.MetricCPUUtilizationPercent:
		return fmt.Sprintf(`100 - (avg by (instance) (irate(node_cpu_seconds_total{mode="idle",instance=~".*%s.*"}[5m])) * 100)`, instance), true
	case ngv1.MetricMemoryUtilizationPercent:
		return fmt.Sprintf(`(1 - (node_memory_MemAvailable_bytes{instance=~".*%s.*"} / node_memory_MemTotal_bytes{instance=~".*%s.*"})) * 100`, instance, instance), true
	case ngv1.MetricDiskUtilizationPercent:
		return fmt.Sprintf(`(1 - (node_filesystem_avail_bytes{instance=~".*%s.*",mountpoint="/"} / node_filesystem_size_bytes{instance=~".*%s.*",mountpoint="/"})) * 100`, instance, instance), true
	case ngv1.MetricCPULoadRatio:
		return fmt.Sprintf(`node_load1{instance=~".*%s.*"} / on(instance) count by (instance) (node_cpu_seconds_total{mode="idle",instance=~".*%s.*"})`, instance, instance), true
	default:
		return "", false
	}
}

// queryPrometheus runs the query for metric/node and extracts the first
// vector sample's value.
func (r *Resolver) queryPrometheus(ctx context.Context, node string, metric ngv1.MetricKey) (float64, bool, error) {
	query, ok := promQuery(node, metric)
	if !ok {
		return 0, false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryDeadline)
	defer cancel()

	result, err := r.promBreaker.Execute(func() (interface{}, error) {
		val, _, err := r.prom.Query(ctx, query, time.Now())
		return val, err
	})
	if err != nil {
		return 0, false, err
	}

	vector, ok := result.(model.Value)
	if !ok {
		return 0, false, nil
	}
	samples, ok := vector.(model.Vector)
	if !ok || len(samples) == 0 {
		return 0, false, nil
	}
	return float64(samples[0].Value), true, nil
}
