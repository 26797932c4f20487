package rulestore

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// DefaultTemplates returns the four built-in alert templates, expressed
// against the dotted-path/each placeholder grammar of pkg/notification's
// renderer. They are seeded as an in-memory fallback so an alert action
// referencing one of these names by convention renders sensibly even before
// an operator has declared an AlertTemplate CRD of the same name.
func DefaultTemplates() []ngv1.AlertTemplate {
	return []ngv1.AlertTemplate{
		{
			ObjectMeta: metav1.ObjectMeta{Name: "default"},
			Spec: ngv1.AlertTemplateSpec{
				Subject:  "[NodeGuardian] Node alert - {{ rule_name }}",
				Severity: "warning",
				Channels: []ngv1.ChannelRef{"email", "chat", "webhook"},
				Body: `Node alert triggered:

Rule: {{ rule_name }}
Description: {{ rule_description }}
Time: {{ timestamp_utc_iso }}

Node metrics:
{{#each triggered_nodes as node}}
Node: {{ node.name }}
  CPU: {{ node.metrics.cpuUtilizationPercent }}%
  Memory: {{ node.metrics.memoryUtilizationPercent }}%
  Disk: {{ node.metrics.diskUtilizationPercent }}%
{{/each}}

Problem pods:
{{#each triggered_nodes as node}}
{{#each node.problem_pods as pod}}
- {{ pod.name }} ({{ pod.namespace }}): {{ pod.phase }}
{{/each}}
{{/each}}

Please investigate.`,
			},
		},
		{
			ObjectMeta: metav1.ObjectMeta{Name: "high-load-alert"},
			Spec: ngv1.AlertTemplateSpec{
				Subject:  "[NodeGuardian] High load alert - {{ rule_name }}",
				Severity: "warning",
				Channels: []ngv1.ChannelRef{"email", "chat"},
				Body: `High node load alert.

Rule: {{ rule_name }}
Time: {{ timestamp_utc_iso }}

Affected nodes:
{{#each triggered_nodes as node}}
Node: {{ node.name }}
  CPU load ratio: {{ node.metrics.cpuLoadRatio }}
  CPU utilization: {{ node.metrics.cpuUtilizationPercent }}%
  Memory utilization: {{ node.metrics.memoryUtilizationPercent }}%
{{/each}}

Actions taken:
- tainted nodes to prevent new pod scheduling
- labeled node state

Please review node resource usage.`,
			},
		},
		{
			ObjectMeta: metav1.ObjectMeta{Name: "emergency-alert"},
			Spec: ngv1.AlertTemplateSpec{
				Subject:  "[NodeGuardian] EMERGENCY - {{ rule_name }}",
				Severity: "critical",
				Channels: []ngv1.ChannelRef{"email", "chat", "webhook"},
				Body: `EMERGENCY ALERT

Rule: {{ rule_name }}
Time: {{ timestamp_utc_iso }}

Affected nodes:
{{#each triggered_nodes as node}}
Node: {{ node.name }}
  Memory utilization: {{ node.metrics.memoryUtilizationPercent }}%
{{/each}}

Emergency actions taken:
- evicted pods to free resources
- applied NoExecute taint
- sent emergency notification

Please act immediately.`,
			},
		},
		{
			ObjectMeta: metav1.ObjectMeta{Name: "recovery-alert"},
			Spec: ngv1.AlertTemplateSpec{
				Subject:  "[NodeGuardian] Node recovered - {{ rule_name }}",
				Severity: "info",
				Channels: []ngv1.ChannelRef{"email"},
				Body: `Node state recovered.

Rule: {{ rule_name }}
Time: {{ timestamp_utc_iso }}

Recovered nodes:
{{#each triggered_nodes as node}}
Node: {{ node.name }}
  CPU utilization: {{ node.metrics.cpuUtilizationPercent }}%
  Memory utilization: {{ node.metrics.memoryUtilizationPercent }}%
{{/each}}

Recovery actions taken:
- removed taints
- cleared labels
- restored normal scheduling

The node has returned to a healthy state.`,
			},
		},
	}
}
