package platform_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/platform"
)

var _ = Describe("node mutation", func() {
	var (
		ctx    context.Context
		client *fake.Clientset
		ad     platform.Adapter
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = fake.NewSimpleClientset(&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{
				Name:   "node-1",
				Labels: map[string]string{"zone": "us-east-1a"},
			},
		})
		ad = platform.New(platform.Config{Clientset: client})
	})

	It("adds a taint and is idempotent on repeat application", func() {
		Expect(ad.TaintNode(ctx, "node-1", "nodeguardian.k8s.io/pressure", "cpu", ngv1.TaintNoSchedule)).To(Succeed())
		Expect(ad.TaintNode(ctx, "node-1", "nodeguardian.k8s.io/pressure", "cpu", ngv1.TaintNoSchedule)).To(Succeed())

		node, err := client.CoreV1().Nodes().Get(ctx, "node-1", metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(node.Spec.Taints).To(HaveLen(1))
		Expect(node.Spec.Taints[0].Key).To(Equal("nodeguardian.k8s.io/pressure"))
	})

	It("removes an absent taint without error", func() {
		Expect(ad.UntaintNode(ctx, "node-1", "does-not-exist")).To(Succeed())
	})

	It("merges labels without clobbering existing ones", func() {
		Expect(ad.LabelNode(ctx, "node-1", map[string]string{"nodeguardian.k8s.io/state": "degraded"})).To(Succeed())

		node, err := client.CoreV1().Nodes().Get(ctx, "node-1", metav1.GetOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(node.Labels).To(HaveKeyWithValue("zone", "us-east-1a"))
		Expect(node.Labels).To(HaveKeyWithValue("nodeguardian.k8s.io/state", "degraded"))
	})

	It("lists nodes by explicit names, skipping ones that don't exist", func() {
		snaps, err := ad.ListNodes(ctx, nil, []string{"node-1", "ghost-node"})
		Expect(err).NotTo(HaveOccurred())
		Expect(snaps).To(HaveLen(1))
		Expect(snaps[0].Name).To(Equal("node-1"))
	})
})
