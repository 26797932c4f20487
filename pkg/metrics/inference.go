package metrics

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// infer is the last-resort tier: diskUtilizationPercent infers 90.0 under a
// DiskPressure node condition (matching common.py's "assume high disk usage
// if under pressure" comment), and cpuLoadRatio estimates from
// cpuUtilizationPercent/100 when no other source resolved it.
func (r *Resolver) infer(ctx context.Context, node string, metric ngv1.MetricKey) (float64, bool) {
	switch metric {
	case ngv1.MetricDiskUtilizationPercent:
		if r.coreClient == nil {
			return 0, false
		}
		n, err := r.coreClient.CoreV1().Nodes().Get(ctx, node, metav1.GetOptions{})
		if err != nil {
			return 0, false
		}
		for _, c := range n.Status.Conditions {
			if c.Type == corev1.NodeDiskPressure && c.Status == corev1.ConditionTrue {
				return 90.0, true
			}
		}
		return 0, false
	case ngv1.MetricCPULoadRatio:
		cpu, err := r.Resolve(ctx, node, ngv1.MetricCPUUtilizationPercent)
		if err != nil {
			return 0, false
		}
		return cpu / 100.0, true
	default:
		return 0, false
	}
}
