package metrics

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

type usageCapacity struct {
	usageCPU, capacityCPU       resource.Quantity
	usageMemory, capacityMemory resource.Quantity
}

// queryMetricsServer resolves cpuUtilizationPercent/memoryUtilizationPercent
// from the typed metrics.k8s.io client (usage) combined with the node's
// allocatable capacity from the core API, replacing common.py's raw
// GET {metrics_server_url}/nodes/{name} call with the typed client the
// pack's dependency stack already carries. diskUtilizationPercent and
// cpuLoadRatio have no metrics-server tier and fall straight through to
// inference.
func (r *Resolver) queryMetricsServer(ctx context.Context, node string, metric ngv1.MetricKey) (float64, bool, error) {
	if r.metricsClient == nil || r.coreClient == nil {
		return 0, false, nil
	}
	if metric != ngv1.MetricCPUUtilizationPercent && metric != ngv1.MetricMemoryUtilizationPercent {
		return 0, false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryDeadline)
	defer cancel()

	result, err := r.serverBreaker.Execute(func() (interface{}, error) {
		usage, err := r.metricsClient.MetricsV1beta1().NodeMetricses().Get(ctx, node, metav1.GetOptions{})
		if err != nil {
			return nil, err
		}
		capNode, err := r.coreClient.CoreV1().Nodes().Get(ctx, node, metav1.GetOptions{})
		if err != nil {
			return nil, err
		}
		return usageCapacity{
			usageCPU:      usage.Usage[corev1.ResourceCPU],
			capacityCPU:   capNode.Status.Allocatable[corev1.ResourceCPU],
			usageMemory:   usage.Usage[corev1.ResourceMemory],
			capacityMemory: capNode.Status.Allocatable[corev1.ResourceMemory],
		}, nil
	})
	if err != nil {
		return 0, false, err
	}

	uc := result.(usageCapacity)

	switch metric {
	case ngv1.MetricCPUUtilizationPercent:
		return percentOf(uc.usageCPU.MilliValue(), uc.capacityCPU.MilliValue()), true, nil
	case ngv1.MetricMemoryUtilizationPercent:
		return percentOf(uc.usageMemory.Value(), uc.capacityMemory.Value()), true, nil
	default:
		return 0, false, nil
	}
}

func percentOf(usage, capacity int64) float64 {
	if capacity <= 0 {
		return 0
	}
	return (float64(usage) / float64(capacity)) * 100
}
