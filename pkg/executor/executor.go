// Package executor is the NodeGuardian Action Executor: it applies a rule's
// tagged action list to every triggered node in declared order, isolating
// per-action and per-node failures so one bad action never aborts the
// batch.
package executor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"

	"github.com/nodeguardian/nodeguardian/pkg/notification"
	"github.com/nodeguardian/nodeguardian/pkg/platform"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// evictGracePeriod is the fixed grace period the evict action uses.
const evictGracePeriod = 30 * time.Second

// defaultExcludeNamespaces is the evict action's default namespace
// exclusion list when the action doesn't override it.
var defaultExcludeNamespaces = []string{"kube-system", "kube-public"}

// AlertSink is the capability the Executor needs from the Alert Dispatcher.
// Depending on this narrow interface instead of *notification.Dispatcher
// directly avoids an import cycle between the two packages.
type AlertSink interface {
	Dispatch(ctx context.Context, templateName string, channels []string, phase notification.Phase, alertCtx notification.AlertContext) []error
}

// Executor applies actions against the platform.
type Executor struct {
	platform platform.Adapter
	sink     AlertSink
	log      logr.Logger
}

// New builds an Executor.
func New(p platform.Adapter, sink AlertSink, log logr.Logger) *Executor {
	return &Executor{platform: p, sink: sink, log: log.WithName("action-executor")}
}

// Result records the outcome of applying one action on one node.
type Result struct {
	Node       string
	ActionType ngv1.ActionType
	Err        error
}

// ApplyBatch runs actions against every node in nodes, in declared action
// order. It never stops early: a failing action is recorded in the returned
// results and execution continues with the next action/node.
func (e *Executor) ApplyBatch(ctx context.Context, ruleName string, actions []ngv1.Action, nodes []string, phase notification.Phase, alertCtx func(node string) notification.AlertContext) []Result {
	var results []Result
	for _, node := range nodes {
		for _, action := range actions {
			err := e.apply(ctx, ruleName, node, action, phase, alertCtx)
			results = append(results, Result{Node: node, ActionType: action.Type, Err: err})
			if err != nil {
				e.log.Error(err, "action failed", "rule", ruleName, "node", node, "action", action.Type)
			}
		}
	}
	return results
}

func (e *Executor) apply(ctx context.Context, ruleName, node string, action ngv1.Action, phase notification.Phase, alertCtx func(node string) notification.AlertContext) error {
	switch action.Type {
	case ngv1.ActionTaint:
		return e.platform.TaintNode(ctx, node, action.Taint.Key, action.Taint.Value, action.Taint.Effect)
	case ngv1.ActionUntaint:
		return e.platform.UntaintNode(ctx, node, action.Untaint.Key)
	case ngv1.ActionLabel:
		return e.platform.LabelNode(ctx, node, action.Label.Labels)
	case ngv1.ActionRemoveLabel:
		return e.platform.RemoveNodeLabels(ctx, node, action.RemoveLabel.Keys)
	case ngv1.ActionAnnotation:
		return e.platform.AnnotateNode(ctx, node, action.Annotation.Annotations)
	case ngv1.ActionRemoveAnnotation:
		return e.platform.RemoveNodeAnnotations(ctx, node, action.RemoveAnnotation.Keys)
	case ngv1.ActionEvict:
		return e.evict(ctx, node, action.Evict)
	case ngv1.ActionAlert:
		return e.alert(ctx, action.Alert, phase, alertCtx(node))
	default:
		return fmt.Errorf("executor: unknown action type %q", action.Type)
	}
}

// evict lists pods on node, excludes the configured (or default)
// namespaces, and deletes the first maxPods in stable (namespace, name)
// order. It is deliberately best-effort: a single pod delete failure is
// logged and does not stop the remaining deletions.
func (e *Executor) evict(ctx context.Context, node string, spec *ngv1.EvictSpec) error {
	exclude := spec.ExcludeNamespaces
	if len(exclude) == 0 {
		exclude = defaultExcludeNamespaces
	}

	pods, err := e.platform.ListPodsOnNode(ctx, node, exclude)
	if err != nil {
		return err
	}

	sort.Slice(pods, func(i, j int) bool {
		if pods[i].Namespace != pods[j].Namespace {
			return pods[i].Namespace < pods[j].Namespace
		}
		return pods[i].Name < pods[j].Name
	})

	max := spec.MaxPods
	if max > len(pods) {
		max = len(pods)
	}

	var firstErr error
	for _, pod := range pods[:max] {
		if err := e.platform.DeletePod(ctx, pod.Namespace, pod.Name, evictGracePeriod); err != nil {
			e.log.Error(err, "pod eviction failed", "node", node, "namespace", pod.Namespace, "pod", pod.Name)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// alert invokes the Alert Dispatcher unless the action explicitly disables
// it. Receiver-side dedup (the same rendered alert landing twice) is the
// dispatcher's concern, not the executor's — this call is unconditionally
// idempotent from the executor's point of view.
func (e *Executor) alert(ctx context.Context, spec *ngv1.AlertActionSpec, phase notification.Phase, alertCtx notification.AlertContext) error {
	if spec.Enabled != nil && !*spec.Enabled {
		return nil
	}
	errs := e.sink.Dispatch(ctx, spec.Template, spec.Channels, phase, alertCtx)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
