package platform

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/strategicpatch"
)

// strategicMergePatch computes the patch between original and modified Node
// documents so node mutations only touch the fields the action actually
// changed, leaving concurrent writers' unrelated fields alone.
func strategicMergePatch(original, modified []byte) ([]byte, error) {
	return strategicpatch.CreateTwoWayMergePatch(original, modified, corev1.Node{})
}
