package v1

import (
	"k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies the receiver into out.
func (c *Condition) DeepCopyInto(out *Condition) {
	*out = *c
}

// DeepCopy returns a deep copy of the condition.
func (c *Condition) DeepCopy() *Condition {
	if c == nil {
		return nil
	}
	out := new(Condition)
	c.DeepCopyInto(out)
	return out
}

func deepCopyConditions(in []Condition) []Condition {
	if in == nil {
		return nil
	}
	out := make([]Condition, len(in))
	copy(out, in)
	return out
}

func deepCopyStringSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func deepCopyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// DeepCopyInto copies the receiver into out.
func (a *Action) DeepCopyInto(out *Action) {
	*out = *a
	if a.Taint != nil {
		out.Taint = new(TaintSpec)
		*out.Taint = *a.Taint
	}
	if a.Untaint != nil {
		out.Untaint = new(UntaintSpec)
		*out.Untaint = *a.Untaint
	}
	if a.Label != nil {
		out.Label = &LabelSpec{Labels: deepCopyStringMap(a.Label.Labels)}
	}
	if a.RemoveLabel != nil {
		out.RemoveLabel = &RemoveLabelSpec{Keys: deepCopyStringSlice(a.RemoveLabel.Keys)}
	}
	if a.Annotation != nil {
		out.Annotation = &AnnotationSpec{Annotations: deepCopyStringMap(a.Annotation.Annotations)}
	}
	if a.RemoveAnnotation != nil {
		out.RemoveAnnotation = &RemoveAnnotationSpec{Keys: deepCopyStringSlice(a.RemoveAnnotation.Keys)}
	}
	if a.Evict != nil {
		out.Evict = &EvictSpec{MaxPods: a.Evict.MaxPods, ExcludeNamespaces: deepCopyStringSlice(a.Evict.ExcludeNamespaces)}
	}
	if a.Alert != nil {
		out.Alert = &AlertActionSpec{Template: a.Alert.Template, Channels: deepCopyStringSlice(a.Alert.Channels)}
		if a.Alert.Enabled != nil {
			v := *a.Alert.Enabled
			out.Alert.Enabled = &v
		}
	}
}

func deepCopyActions(in []Action) []Action {
	if in == nil {
		return nil
	}
	out := make([]Action, len(in))
	for i := range in {
		in[i].DeepCopyInto(&out[i])
	}
	return out
}

// DeepCopyInto copies the receiver into out.
func (s *NodeGuardianRuleSpec) DeepCopyInto(out *NodeGuardianRuleSpec) {
	*out = *s
	out.NodeSelector = NodeSelector{
		MatchLabels: deepCopyStringMap(s.NodeSelector.MatchLabels),
		NodeNames:   deepCopyStringSlice(s.NodeSelector.NodeNames),
	}
	out.Conditions = deepCopyConditions(s.Conditions)
	out.Actions = deepCopyActions(s.Actions)
	out.RecoveryConditions = deepCopyConditions(s.RecoveryConditions)
	out.RecoveryActions = deepCopyActions(s.RecoveryActions)
}

// DeepCopyInto copies the receiver into out.
func (s *NodeGuardianRuleStatus) DeepCopyInto(out *NodeGuardianRuleStatus) {
	*out = *s
	out.TriggeredNodes = deepCopyStringSlice(s.TriggeredNodes)
	s.LastTriggered.DeepCopyInto(&out.LastTriggered)
	s.LastRecovery.DeepCopyInto(&out.LastRecovery)
}

// DeepCopyInto copies the receiver into out.
func (r *NodeGuardianRule) DeepCopyInto(out *NodeGuardianRule) {
	*out = *r
	out.TypeMeta = r.TypeMeta
	r.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	r.Spec.DeepCopyInto(&out.Spec)
	r.Status.DeepCopyInto(&out.Status)
}

// DeepCopy returns a deep copy of the rule.
func (r *NodeGuardianRule) DeepCopy() *NodeGuardianRule {
	if r == nil {
		return nil
	}
	out := new(NodeGuardianRule)
	r.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (r *NodeGuardianRule) DeepCopyObject() runtime.Object {
	return r.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (l *NodeGuardianRuleList) DeepCopyInto(out *NodeGuardianRuleList) {
	*out = *l
	out.TypeMeta = l.TypeMeta
	l.ListMeta.DeepCopyInto(&out.ListMeta)
	if l.Items != nil {
		out.Items = make([]NodeGuardianRule, len(l.Items))
		for i := range l.Items {
			l.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy returns a deep copy of the list.
func (l *NodeGuardianRuleList) DeepCopy() *NodeGuardianRuleList {
	if l == nil {
		return nil
	}
	out := new(NodeGuardianRuleList)
	l.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (l *NodeGuardianRuleList) DeepCopyObject() runtime.Object {
	return l.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (s *AlertTemplateSpec) DeepCopyInto(out *AlertTemplateSpec) {
	*out = *s
	if s.Channels != nil {
		out.Channels = make([]ChannelRef, len(s.Channels))
		copy(out.Channels, s.Channels)
	}
}

// DeepCopyInto copies the receiver into out.
func (t *AlertTemplate) DeepCopyInto(out *AlertTemplate) {
	*out = *t
	out.TypeMeta = t.TypeMeta
	t.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	t.Spec.DeepCopyInto(&out.Spec)
}

// DeepCopy returns a deep copy of the template.
func (t *AlertTemplate) DeepCopy() *AlertTemplate {
	if t == nil {
		return nil
	}
	out := new(AlertTemplate)
	t.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (t *AlertTemplate) DeepCopyObject() runtime.Object {
	return t.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (l *AlertTemplateList) DeepCopyInto(out *AlertTemplateList) {
	*out = *l
	out.TypeMeta = l.TypeMeta
	l.ListMeta.DeepCopyInto(&out.ListMeta)
	if l.Items != nil {
		out.Items = make([]AlertTemplate, len(l.Items))
		for i := range l.Items {
			l.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy returns a deep copy of the list.
func (l *AlertTemplateList) DeepCopy() *AlertTemplateList {
	if l == nil {
		return nil
	}
	out := new(AlertTemplateList)
	l.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (l *AlertTemplateList) DeepCopyObject() runtime.Object {
	return l.DeepCopy()
}
