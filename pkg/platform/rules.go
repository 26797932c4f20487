package platform

import (
	"context"

	"k8s.io/apimachinery/pkg/watch"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

type ruleAdapter struct {
	base
}

// ListRules returns every NodeGuardianRule currently on the cluster.
func (r ruleAdapter) ListRules(ctx context.Context) ([]ngv1.NodeGuardianRule, error) {
	var list ngv1.NodeGuardianRuleList
	err := r.withRetry(ctx, "ListRules", func() error {
		return r.ctrl.List(ctx, &list)
	})
	return list.Items, err
}

// ListTemplates returns every AlertTemplate currently on the cluster.
func (r ruleAdapter) ListTemplates(ctx context.Context) ([]ngv1.AlertTemplate, error) {
	var list ngv1.AlertTemplateList
	err := r.withRetry(ctx, "ListTemplates", func() error {
		return r.ctrl.List(ctx, &list)
	})
	return list.Items, err
}

// UpdateRuleStatus persists rule.Status via the status subresource.
func (r ruleAdapter) UpdateRuleStatus(ctx context.Context, rule *ngv1.NodeGuardianRule) error {
	return r.withRetry(ctx, "UpdateRuleStatus", func() error {
		return r.ctrl.Status().Update(ctx, rule)
	})
}

// WatchRules starts a controller-runtime watch and translates its events
// into the Rule Store's Added/Modified/Deleted/Synchronization vocabulary,
// replaying the initial list as Synchronization events before live updates.
func (r ruleAdapter) WatchRules(ctx context.Context) (<-chan RuleEvent, error) {
	initial, err := r.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan RuleEvent, len(initial)+16)
	for i := range initial {
		out <- RuleEvent{Type: EventSynchronization, Rule: &initial[i]}
	}

	w, err := r.ctrl.Watch(ctx, &ngv1.NodeGuardianRuleList{})
	if err != nil {
		close(out)
		return nil, err
	}

	go func() {
		defer close(out)
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.ResultChan():
				if !ok {
					return
				}
				rule, ok := ev.Object.(*ngv1.NodeGuardianRule)
				if !ok {
					continue
				}
				out <- RuleEvent{Type: translateWatchEvent(ev.Type), Rule: rule}
			}
		}
	}()

	return out, nil
}

// WatchTemplates mirrors WatchRules for AlertTemplate.
func (r ruleAdapter) WatchTemplates(ctx context.Context) (<-chan TemplateEvent, error) {
	initial, err := r.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan TemplateEvent, len(initial)+16)
	for i := range initial {
		out <- TemplateEvent{Type: EventSynchronization, Template: &initial[i]}
	}

	w, err := r.ctrl.Watch(ctx, &ngv1.AlertTemplateList{})
	if err != nil {
		close(out)
		return nil, err
	}

	go func() {
		defer close(out)
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.ResultChan():
				if !ok {
					return
				}
				tmpl, ok := ev.Object.(*ngv1.AlertTemplate)
				if !ok {
					continue
				}
				out <- TemplateEvent{Type: translateWatchEvent(ev.Type), Template: tmpl}
			}
		}
	}()

	return out, nil
}

func translateWatchEvent(t watch.EventType) EventType {
	switch t {
	case watch.Added:
		return EventAdded
	case watch.Deleted:
		return EventDeleted
	default:
		return EventModified
	}
}
