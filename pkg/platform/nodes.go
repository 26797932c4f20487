package platform

import (
	"context"
	"encoding/json"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/condition"
)

type nodeAdapter struct {
	base
}

// ListNodes resolves a rule's nodeSelector: explicit nodeNames win over
// matchLabels.
func (n nodeAdapter) ListNodes(ctx context.Context, matchLabels map[string]string, nodeNames []string) ([]NodeSnapshot, error) {
	if len(nodeNames) > 0 {
		out := make([]NodeSnapshot, 0, len(nodeNames))
		for _, name := range nodeNames {
			var node *corev1.Node
			err := n.withRetry(ctx, "GetNode", func() error {
				got, err := n.clientset.CoreV1().Nodes().Get(ctx, name, metav1.GetOptions{})
				if err != nil {
					return err
				}
				node = got
				return nil
			})
			if apierrors.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, snapshotNode(node))
		}
		return out, nil
	}

	var list *corev1.NodeList
	err := n.withRetry(ctx, "ListNodes", func() error {
		got, err := n.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{
			LabelSelector: condition.LabelSelector(matchLabels),
		})
		if err != nil {
			return err
		}
		list = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]NodeSnapshot, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, snapshotNode(&list.Items[i]))
	}
	return out, nil
}

func snapshotNode(node *corev1.Node) NodeSnapshot {
	conditions := make(map[string]string, len(node.Status.Conditions))
	for _, c := range node.Status.Conditions {
		conditions[string(c.Type)] = string(c.Status)
	}
	return NodeSnapshot{
		Name:          node.Name,
		Labels:        node.Labels,
		Annotations:   node.Annotations,
		Taints:        node.Spec.Taints,
		Conditions:    conditions,
		Unschedulable: node.Spec.Unschedulable,
	}
}

// TaintNode adds or replaces a taint with the given key, mirroring
// _kubernetes_client.taint_node. It is idempotent: applying the same taint
// twice is a no-op on the second call.
func (n nodeAdapter) TaintNode(ctx context.Context, node, key, value string, effect ngv1.TaintEffect) error {
	return n.patchNode(ctx, node, func(obj *corev1.Node) {
		taints := make([]corev1.Taint, 0, len(obj.Spec.Taints)+1)
		for _, t := range obj.Spec.Taints {
			if t.Key != key {
				taints = append(taints, t)
			}
		}
		taints = append(taints, corev1.Taint{Key: key, Value: value, Effect: corev1.TaintEffect(effect)})
		obj.Spec.Taints = taints
	})
}

// UntaintNode removes any taint with the given key. Removing an absent taint
// is a no-op.
func (n nodeAdapter) UntaintNode(ctx context.Context, node, key string) error {
	return n.patchNode(ctx, node, func(obj *corev1.Node) {
		taints := make([]corev1.Taint, 0, len(obj.Spec.Taints))
		for _, t := range obj.Spec.Taints {
			if t.Key != key {
				taints = append(taints, t)
			}
		}
		obj.Spec.Taints = taints
	})
}

// LabelNode merges labels into the node, overwriting existing keys.
func (n nodeAdapter) LabelNode(ctx context.Context, node string, labels map[string]string) error {
	return n.patchNode(ctx, node, func(obj *corev1.Node) {
		if obj.Labels == nil {
			obj.Labels = map[string]string{}
		}
		for k, v := range labels {
			obj.Labels[k] = v
		}
	})
}

// RemoveNodeLabels deletes the given label keys. Deleting an absent key is a
// no-op.
func (n nodeAdapter) RemoveNodeLabels(ctx context.Context, node string, keys []string) error {
	return n.patchNode(ctx, node, func(obj *corev1.Node) {
		for _, k := range keys {
			delete(obj.Labels, k)
		}
	})
}

// AnnotateNode merges annotations into the node, overwriting existing keys.
func (n nodeAdapter) AnnotateNode(ctx context.Context, node string, annotations map[string]string) error {
	return n.patchNode(ctx, node, func(obj *corev1.Node) {
		if obj.Annotations == nil {
			obj.Annotations = map[string]string{}
		}
		for k, v := range annotations {
			obj.Annotations[k] = v
		}
	})
}

// RemoveNodeAnnotations deletes the given annotation keys.
func (n nodeAdapter) RemoveNodeAnnotations(ctx context.Context, node string, keys []string) error {
	return n.patchNode(ctx, node, func(obj *corev1.Node) {
		for _, k := range keys {
			delete(obj.Annotations, k)
		}
	})
}

// patchNode applies mutate to a fresh read of node and issues a strategic
// merge patch, retrying the whole read-modify-write on optimistic-lock
// conflicts per the platform transient retry budget.
func (n nodeAdapter) patchNode(ctx context.Context, node string, mutate func(*corev1.Node)) error {
	return n.withRetry(ctx, "PatchNode", func() error {
		current, err := n.clientset.CoreV1().Nodes().Get(ctx, node, metav1.GetOptions{})
		if err != nil {
			return err
		}
		original, err := json.Marshal(current)
		if err != nil {
			return err
		}
		modified := current.DeepCopy()
		mutate(modified)
		modifiedBytes, err := json.Marshal(modified)
		if err != nil {
			return err
		}
		patch, err := strategicMergePatch(original, modifiedBytes)
		if err != nil {
			return err
		}
		_, err = n.clientset.CoreV1().Nodes().Patch(ctx, node, types.StrategicMergePatchType, patch, metav1.PatchOptions{})
		return err
	})
}
