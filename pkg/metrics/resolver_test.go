package metrics_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/metrics"
)

var _ = Describe("metrics resolver", func() {
	It("computes cpu utilization percent from usage over allocatable", func() {
		ctx := context.Background()

		core := fake.NewSimpleClientset(&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
			Status: corev1.NodeStatus{
				Allocatable: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse("4"),
					corev1.ResourceMemory: resource.MustParse("8Gi"),
				},
			},
		})
		mclient := metricsfake.NewSimpleClientset(&metricsv1beta1.NodeMetrics{
			ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
			Usage: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("2"),
				corev1.ResourceMemory: resource.MustParse("4Gi"),
			},
		})

		r, err := metrics.New(metrics.Config{MetricsClient: mclient, CoreClient: core})
		Expect(err).NotTo(HaveOccurred())

		v, err := r.Resolve(ctx, "node-1", ngv1.MetricCPUUtilizationPercent)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("~", 50.0, 0.01))

		v, err = r.Resolve(ctx, "node-1", ngv1.MetricMemoryUtilizationPercent)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("~", 50.0, 0.01))
	})

	It("infers disk utilization from a DiskPressure condition", func() {
		ctx := context.Background()
		core := fake.NewSimpleClientset(&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
			Status: corev1.NodeStatus{
				Conditions: []corev1.NodeCondition{
					{Type: corev1.NodeDiskPressure, Status: corev1.ConditionTrue},
				},
			},
		})

		r, err := metrics.New(metrics.Config{CoreClient: core})
		Expect(err).NotTo(HaveOccurred())

		v, err := r.Resolve(ctx, "node-1", ngv1.MetricDiskUtilizationPercent)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(90.0))
	})

	It("returns MetricUnavailable once every tier is exhausted", func() {
		ctx := context.Background()
		core := fake.NewSimpleClientset(&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-1"}})

		r, err := metrics.New(metrics.Config{CoreClient: core})
		Expect(err).NotTo(HaveOccurred())

		_, err = r.Resolve(ctx, "node-1", ngv1.MetricDiskUtilizationPercent)
		Expect(err).To(HaveOccurred())
	})
})
