package platform

import (
	"context"
	"slices"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type podAdapter struct {
	base
}

// ListPodsOnNode lists pods scheduled to node, excluding any pod in a
// namespace named in excludeNamespaces.
func (p podAdapter) ListPodsOnNode(ctx context.Context, node string, excludeNamespaces []string) ([]PodSnapshot, error) {
	var out []PodSnapshot
	err := p.withRetry(ctx, "ListPodsOnNode", func() error {
		list, err := p.clientset.CoreV1().Pods("").List(ctx, metav1.ListOptions{
			FieldSelector: "spec.nodeName=" + node,
		})
		if err != nil {
			return err
		}
		out = make([]PodSnapshot, 0, len(list.Items))
		for _, pod := range list.Items {
			if slices.Contains(excludeNamespaces, pod.Namespace) {
				continue
			}
			owner := ""
			if len(pod.OwnerReferences) > 0 {
				owner = pod.OwnerReferences[0].Kind
			}
			out = append(out, PodSnapshot{
				Name:      pod.Name,
				Namespace: pod.Namespace,
				NodeName:  pod.Spec.NodeName,
				Phase:     string(pod.Status.Phase),
				Owner:     owner,
			})
		}
		return nil
	})
	return out, err
}

// DeletePod evicts a pod with the given grace period. Deleting an
// already-gone pod is treated as success, since the desired end state is
// already reached.
func (p podAdapter) DeletePod(ctx context.Context, namespace, name string, gracePeriod time.Duration) error {
	seconds := int64(gracePeriod / time.Second)
	return p.withRetry(ctx, "DeletePod", func() error {
		err := p.clientset.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{
			GracePeriodSeconds: &seconds,
		})
		if apierrors.IsNotFound(err) {
			return nil
		}
		return err
	})
}
