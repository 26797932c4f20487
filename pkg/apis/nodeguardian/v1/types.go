// Package v1 defines the NodeGuardianRule and AlertTemplate custom resources.
package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GroupName is the API group served by the orchestration platform's CRD
// server for NodeGuardian resources.
const GroupName = "nodeguardian.k8s.io"

// Operator is the closed set of condition comparison operators.
type Operator string

const (
	OpGreaterThan        Operator = "GreaterThan"
	OpGreaterThanOrEqual Operator = "GreaterThanOrEqual"
	OpLessThan           Operator = "LessThan"
	OpLessThanOrEqual    Operator = "LessThanOrEqual"
	OpEqualTo            Operator = "EqualTo"
	OpNotEqualTo         Operator = "NotEqualTo"
)

// MetricKey is the closed set of metrics the Metrics Resolver can resolve.
type MetricKey string

const (
	MetricCPUUtilizationPercent    MetricKey = "cpuUtilizationPercent"
	MetricMemoryUtilizationPercent MetricKey = "memoryUtilizationPercent"
	MetricDiskUtilizationPercent   MetricKey = "diskUtilizationPercent"
	MetricCPULoadRatio             MetricKey = "cpuLoadRatio"
)

// ConditionLogic combines a rule's condition list.
type ConditionLogic string

const (
	LogicAND ConditionLogic = "AND"
	LogicOR  ConditionLogic = "OR"
)

// Condition is a single (metric, operator, threshold) triple with an
// optional sustained-breach duration.
type Condition struct {
	Metric      MetricKey `json:"metric"`
	Operator    Operator  `json:"operator"`
	Value       float64   `json:"value"`
	Duration    string    `json:"duration,omitempty"`
	Description string    `json:"description,omitempty"`
}

// TaintEffect mirrors the closed set of Kubernetes taint effects the taint
// action may apply.
type TaintEffect string

const (
	TaintNoSchedule       TaintEffect = "NoSchedule"
	TaintPreferNoSchedule TaintEffect = "PreferNoSchedule"
	TaintNoExecute        TaintEffect = "NoExecute"
)

// ActionType is the closed set of remediation/recovery action tags.
type ActionType string

const (
	ActionTaint            ActionType = "taint"
	ActionUntaint          ActionType = "untaint"
	ActionLabel            ActionType = "label"
	ActionRemoveLabel      ActionType = "removeLabel"
	ActionAnnotation       ActionType = "annotation"
	ActionRemoveAnnotation ActionType = "removeAnnotation"
	ActionEvict            ActionType = "evict"
	ActionAlert            ActionType = "alert"
)

// TaintSpec is the payload of a taint action.
type TaintSpec struct {
	Key    string      `json:"key"`
	Value  string      `json:"value"`
	Effect TaintEffect `json:"effect"`
}

// UntaintSpec is the payload of an untaint action.
type UntaintSpec struct {
	Key string `json:"key"`
}

// LabelSpec is the payload of a label action.
type LabelSpec struct {
	Labels map[string]string `json:"labels"`
}

// RemoveLabelSpec is the payload of a removeLabel action.
type RemoveLabelSpec struct {
	Keys []string `json:"keys"`
}

// AnnotationSpec is the payload of an annotation action.
type AnnotationSpec struct {
	Annotations map[string]string `json:"annotations"`
}

// RemoveAnnotationSpec is the payload of a removeAnnotation action.
type RemoveAnnotationSpec struct {
	Keys []string `json:"keys"`
}

// EvictSpec is the payload of an evict action.
type EvictSpec struct {
	MaxPods           int      `json:"maxPods"`
	ExcludeNamespaces []string `json:"excludeNamespaces,omitempty"`
}

// AlertActionSpec is the payload of an alert action.
type AlertActionSpec struct {
	Enabled  *bool    `json:"enabled,omitempty"`
	Template string   `json:"template"`
	Channels []string `json:"channels,omitempty"`
}

// Action is a tagged variant: exactly one of the payload fields matching
// Type is populated. Rule ingest validation rejects a rule whose actions
// don't parse into one of these variants; the Action Executor never sees an
// unvalidated tag.
type Action struct {
	Type             ActionType            `json:"type"`
	Taint            *TaintSpec            `json:"taint,omitempty"`
	Untaint          *UntaintSpec          `json:"untaint,omitempty"`
	Label            *LabelSpec            `json:"label,omitempty"`
	RemoveLabel      *RemoveLabelSpec      `json:"removeLabel,omitempty"`
	Annotation       *AnnotationSpec       `json:"annotation,omitempty"`
	RemoveAnnotation *RemoveAnnotationSpec `json:"removeAnnotation,omitempty"`
	Evict            *EvictSpec            `json:"evict,omitempty"`
	Alert            *AlertActionSpec      `json:"alert,omitempty"`
}

// NodeSelector selects the nodes a rule applies to. NodeNames wins when
// set; otherwise MatchLabels is converted to the platform's label-selector
// wire form.
type NodeSelector struct {
	MatchLabels map[string]string `json:"matchLabels,omitempty"`
	NodeNames   []string          `json:"nodeNames,omitempty"`
}

// MonitoringParams holds the per-rule timing parameters.
type MonitoringParams struct {
	CheckInterval           string `json:"checkInterval"`
	CooldownPeriod          string `json:"cooldownPeriod"`
	RecoveryCooldownPeriod  string `json:"recoveryCooldownPeriod"`
}

// RuleMetadata holds descriptive, non-identifying rule fields.
type RuleMetadata struct {
	Priority    int    `json:"priority,omitempty"`
	Enabled     bool   `json:"enabled"`
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description,omitempty"`
}

// NodeGuardianRuleSpec is the desired state of a NodeGuardianRule.
type NodeGuardianRuleSpec struct {
	NodeSelector           NodeSelector     `json:"nodeSelector"`
	Conditions             []Condition      `json:"conditions"`
	ConditionLogic         ConditionLogic   `json:"conditionLogic"`
	Actions                []Action         `json:"actions"`
	RecoveryConditions     []Condition      `json:"recoveryConditions,omitempty"`
	RecoveryActions        []Action         `json:"recoveryActions,omitempty"`
	Monitoring             MonitoringParams `json:"monitoring"`
	Metadata               RuleMetadata     `json:"metadata"`
}

// RulePhase is the coarse-grained phase surfaced on rule status.
type RulePhase string

const (
	PhasePending RulePhase = "Pending"
	PhaseActive  RulePhase = "Active"
	PhaseInvalid RulePhase = "Invalid"
)

// NodeGuardianRuleStatus is the observed state of a NodeGuardianRule.
type NodeGuardianRuleStatus struct {
	Phase          RulePhase   `json:"phase,omitempty"`
	LastTriggered  metav1.Time `json:"lastTriggered,omitempty"`
	TriggeredNodes []string    `json:"triggeredNodes,omitempty"`
	LastError      string      `json:"lastError,omitempty"`
	LastRecovery   metav1.Time `json:"lastRecovery,omitempty"`
}

// NodeGuardianRule is a cluster-scoped declaration of an unhealthy node
// state and the remediation/recovery actions that respond to it.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:subresource:status
type NodeGuardianRule struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   NodeGuardianRuleSpec    `json:"spec"`
	Status NodeGuardianRuleStatus  `json:"status,omitempty"`
}

// NodeGuardianRuleList is a list of NodeGuardianRule.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type NodeGuardianRuleList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []NodeGuardianRule `json:"items"`
}

// ChannelRef names one delivery channel an AlertTemplate defaults to.
type ChannelRef string

// AlertTemplateSpec defines a named subject/body pair with placeholders.
type AlertTemplateSpec struct {
	Subject  string       `json:"subject"`
	Body     string       `json:"body"`
	Severity string       `json:"severity,omitempty"`
	Channels []ChannelRef `json:"channels,omitempty"`
}

// AlertTemplate is a cluster-scoped named alert rendering template.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type AlertTemplate struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec AlertTemplateSpec `json:"spec"`
}

// AlertTemplateList is a list of AlertTemplate.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type AlertTemplateList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AlertTemplate `json:"items"`
}
