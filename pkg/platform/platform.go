// Package platform is the NodeGuardian Platform Adapter: the only component
// that talks to the orchestration platform's API. Everything above it deals
// in NodeSnapshot/PodSnapshot values and typed CRDs, never raw client-go
// objects, so the rest of the engine is platform-client-agnostic.
package platform

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/sony/gobreaker"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/client"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// NodeSnapshot is the engine-facing view of a node, so condition evaluation
// and alert rendering never hold a live corev1.Node.
type NodeSnapshot struct {
	Name        string
	Labels      map[string]string
	Annotations map[string]string
	Taints      []corev1.Taint
	Conditions  map[string]string // condition type -> status, e.g. "DiskPressure" -> "True"
	Unschedulable bool
}

// PodSnapshot is the engine-facing view of a pod.
type PodSnapshot struct {
	Name      string
	Namespace string
	NodeName  string
	Phase     string
	Owner     string // controller owner reference kind, if any
}

// EventType mirrors the watch-event semantics the Rule Store consumes:
// Added, Modified, Deleted for incremental updates, Synchronization for the
// initial list replay that seeds the store.
type EventType string

const (
	EventAdded          EventType = "Added"
	EventModified       EventType = "Modified"
	EventDeleted        EventType = "Deleted"
	EventSynchronization EventType = "Synchronization"
)

// RuleEvent is a single watch notification for a NodeGuardianRule.
type RuleEvent struct {
	Type EventType
	Rule *ngv1.NodeGuardianRule
}

// TemplateEvent is a single watch notification for an AlertTemplate.
type TemplateEvent struct {
	Type     EventType
	Template *ngv1.AlertTemplate
}

// Adapter is the full capability surface the engine needs from the
// orchestration platform, composing Nodes, Pods, and Rules into one
// interface.
type Adapter interface {
	Nodes
	Pods
	Rules
}

// Nodes is the node mutation/read surface.
type Nodes interface {
	ListNodes(ctx context.Context, matchLabels map[string]string, nodeNames []string) ([]NodeSnapshot, error)
	TaintNode(ctx context.Context, node, key, value string, effect ngv1.TaintEffect) error
	UntaintNode(ctx context.Context, node, key string) error
	LabelNode(ctx context.Context, node string, labels map[string]string) error
	RemoveNodeLabels(ctx context.Context, node string, keys []string) error
	AnnotateNode(ctx context.Context, node string, annotations map[string]string) error
	RemoveNodeAnnotations(ctx context.Context, node string, keys []string) error
}

// Pods is the pod read/eviction surface.
type Pods interface {
	ListPodsOnNode(ctx context.Context, node string, excludeNamespaces []string) ([]PodSnapshot, error)
	DeletePod(ctx context.Context, namespace, name string, gracePeriod time.Duration) error
}

// Rules is the CRD read/watch surface.
type Rules interface {
	ListRules(ctx context.Context) ([]ngv1.NodeGuardianRule, error)
	ListTemplates(ctx context.Context) ([]ngv1.AlertTemplate, error)
	UpdateRuleStatus(ctx context.Context, rule *ngv1.NodeGuardianRule) error
	WatchRules(ctx context.Context) (<-chan RuleEvent, error)
	WatchTemplates(ctx context.Context) (<-chan TemplateEvent, error)
}

// adapter is the concrete Adapter backed by a client-go clientset for node
// and pod operations and a controller-runtime client for the CRDs, embedding
// each sub-adapter's capability surface into one composed interface.
type adapter struct {
	nodeAdapter
	podAdapter
	ruleAdapter
}

// Config bundles the dependencies an Adapter is built from. CtrlClient must
// support Watch (client.WithWatch, as returned by client.NewWithWatch)
// since WatchRules/WatchTemplates stream CRD changes directly rather than
// going through a cache-backed informer.
type Config struct {
	Clientset      kubernetes.Interface
	CtrlClient     client.WithWatch
	Log            logr.Logger
	CircuitBreaker *gobreaker.CircuitBreaker
}

// New builds the production Adapter.
func New(cfg Config) Adapter {
	base := base{
		clientset: cfg.Clientset,
		ctrl:      cfg.CtrlClient,
		log:       cfg.Log.WithName("platform"),
		breaker:   cfg.CircuitBreaker,
	}
	return &adapter{
		nodeAdapter: nodeAdapter{base: base},
		podAdapter:  podAdapter{base: base},
		ruleAdapter: ruleAdapter{base: base},
	}
}

// base holds the shared dependencies every sub-adapter embeds.
type base struct {
	clientset kubernetes.Interface
	ctrl      client.WithWatch
	log       logr.Logger
	breaker   *gobreaker.CircuitBreaker
}
