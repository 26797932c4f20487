package executor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/executor"
	"github.com/nodeguardian/nodeguardian/pkg/notification"
	"github.com/nodeguardian/nodeguardian/pkg/platform"
)

// fakePlatform records every mutation call it receives, in order, and can be
// told to fail a specific pod delete so evict's partial-failure handling can
// be exercised.
type fakePlatform struct {
	calls       []string
	pods        []platform.PodSnapshot
	failDeletes map[string]bool
}

func (f *fakePlatform) ListNodes(context.Context, map[string]string, []string) ([]platform.NodeSnapshot, error) {
	return nil, nil
}
func (f *fakePlatform) TaintNode(_ context.Context, node, key, value string, effect ngv1.TaintEffect) error {
	f.calls = append(f.calls, "taint:"+node+":"+key)
	return nil
}
func (f *fakePlatform) UntaintNode(_ context.Context, node, key string) error {
	f.calls = append(f.calls, "untaint:"+node+":"+key)
	return nil
}
func (f *fakePlatform) LabelNode(_ context.Context, node string, labels map[string]string) error {
	f.calls = append(f.calls, "label:"+node)
	return nil
}
func (f *fakePlatform) RemoveNodeLabels(_ context.Context, node string, keys []string) error {
	f.calls = append(f.calls, "removeLabel:"+node)
	return nil
}
func (f *fakePlatform) AnnotateNode(_ context.Context, node string, annotations map[string]string) error {
	f.calls = append(f.calls, "annotation:"+node)
	return nil
}
func (f *fakePlatform) RemoveNodeAnnotations(_ context.Context, node string, keys []string) error {
	f.calls = append(f.calls, "removeAnnotation:"+node)
	return nil
}
func (f *fakePlatform) ListPodsOnNode(_ context.Context, node string, excludeNamespaces []string) ([]platform.PodSnapshot, error) {
	var out []platform.PodSnapshot
	for _, p := range f.pods {
		excluded := false
		for _, ns := range excludeNamespaces {
			if p.Namespace == ns {
				excluded = true
			}
		}
		if !excluded {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakePlatform) DeletePod(_ context.Context, namespace, name string, _ time.Duration) error {
	if f.failDeletes[namespace+"/"+name] {
		return errors.New("delete failed")
	}
	f.calls = append(f.calls, "delete:"+namespace+"/"+name)
	return nil
}
func (f *fakePlatform) ListRules(context.Context) ([]ngv1.NodeGuardianRule, error) { return nil, nil }
func (f *fakePlatform) ListTemplates(context.Context) ([]ngv1.AlertTemplate, error) {
	return nil, nil
}
func (f *fakePlatform) UpdateRuleStatus(context.Context, *ngv1.NodeGuardianRule) error { return nil }
func (f *fakePlatform) WatchRules(context.Context) (<-chan platform.RuleEvent, error)  { return nil, nil }
func (f *fakePlatform) WatchTemplates(context.Context) (<-chan platform.TemplateEvent, error) {
	return nil, nil
}

type fakeSink struct {
	calls int
	fail  bool
}

func (s *fakeSink) Dispatch(context.Context, string, []string, notification.Phase, notification.AlertContext) []error {
	s.calls++
	if s.fail {
		return []error{errors.New("dispatch failed")}
	}
	return nil
}

func noAlertCtx(string) notification.AlertContext { return notification.AlertContext{} }

func TestApplyBatch_DeclaredOrderAcrossNodes(t *testing.T) {
	fp := &fakePlatform{}
	e := executor.New(fp, &fakeSink{}, logr.Discard())

	actions := []ngv1.Action{
		{Type: ngv1.ActionTaint, Taint: &ngv1.TaintSpec{Key: "ng/unhealthy", Value: "true", Effect: ngv1.TaintNoSchedule}},
		{Type: ngv1.ActionLabel, Label: &ngv1.LabelSpec{Labels: map[string]string{"ng/flagged": "true"}}},
	}

	results := e.ApplyBatch(context.Background(), "high-cpu", actions, []string{"node-a", "node-b"}, notification.PhaseTrigger, noAlertCtx)

	require.Len(t, results, 4)
	assert.Equal(t, []string{"taint:node-a:ng/unhealthy", "label:node-a", "taint:node-b:ng/unhealthy", "label:node-b"}, fp.calls)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestApplyBatch_OneActionFailureDoesNotAbortBatch(t *testing.T) {
	fp := &fakePlatform{
		pods: []platform.PodSnapshot{
			{Namespace: "default", Name: "pod-b"},
			{Namespace: "default", Name: "pod-a"},
		},
		failDeletes: map[string]bool{"default/pod-a": true},
	}
	e := executor.New(fp, &fakeSink{}, logr.Discard())

	actions := []ngv1.Action{
		{Type: ngv1.ActionEvict, Evict: &ngv1.EvictSpec{MaxPods: 5}},
		{Type: ngv1.ActionLabel, Label: &ngv1.LabelSpec{Labels: map[string]string{"ng/evicted": "true"}}},
	}

	results := e.ApplyBatch(context.Background(), "disk-pressure", actions, []string{"node-a"}, notification.PhaseTrigger, noAlertCtx)

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err, "a failing evict must not block the label action that follows")
	assert.Contains(t, fp.calls, "delete:default/pod-b")
	assert.Contains(t, fp.calls, "label:node-a")
}

func TestEvict_StableOrderAndMaxPodsCap(t *testing.T) {
	fp := &fakePlatform{
		pods: []platform.PodSnapshot{
			{Namespace: "default", Name: "pod-c"},
			{Namespace: "default", Name: "pod-a"},
			{Namespace: "default", Name: "pod-b"},
		},
	}
	e := executor.New(fp, &fakeSink{}, logr.Discard())

	actions := []ngv1.Action{{Type: ngv1.ActionEvict, Evict: &ngv1.EvictSpec{MaxPods: 2}}}
	results := e.ApplyBatch(context.Background(), "mem-pressure", actions, []string{"node-a"}, notification.PhaseTrigger, noAlertCtx)

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, []string{"delete:default/pod-a", "delete:default/pod-b"}, fp.calls)
}

func TestEvict_DefaultExcludeNamespaces(t *testing.T) {
	fp := &fakePlatform{
		pods: []platform.PodSnapshot{
			{Namespace: "kube-system", Name: "coredns"},
			{Namespace: "default", Name: "app"},
		},
	}
	e := executor.New(fp, &fakeSink{}, logr.Discard())

	actions := []ngv1.Action{{Type: ngv1.ActionEvict, Evict: &ngv1.EvictSpec{MaxPods: 5}}}
	e.ApplyBatch(context.Background(), "mem-pressure", actions, []string{"node-a"}, notification.PhaseTrigger, noAlertCtx)

	assert.Equal(t, []string{"delete:default/app"}, fp.calls)
}

func TestAlertAction_DispatchesAndDisabledSkips(t *testing.T) {
	fp := &fakePlatform{}
	sink := &fakeSink{}
	e := executor.New(fp, sink, logr.Discard())

	actions := []ngv1.Action{{Type: ngv1.ActionAlert, Alert: &ngv1.AlertActionSpec{Template: "default"}}}
	results := e.ApplyBatch(context.Background(), "high-cpu", actions, []string{"node-a"}, notification.PhaseTrigger, noAlertCtx)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, sink.calls)

	disabled := false
	actions = []ngv1.Action{{Type: ngv1.ActionAlert, Alert: &ngv1.AlertActionSpec{Template: "default", Enabled: &disabled}}}
	e.ApplyBatch(context.Background(), "high-cpu", actions, []string{"node-a"}, notification.PhaseTrigger, noAlertCtx)
	assert.Equal(t, 1, sink.calls, "disabled alert action must not invoke the sink")
}

func TestAlertAction_SinkFailureSurfaces(t *testing.T) {
	fp := &fakePlatform{}
	sink := &fakeSink{fail: true}
	e := executor.New(fp, sink, logr.Discard())

	actions := []ngv1.Action{{Type: ngv1.ActionAlert, Alert: &ngv1.AlertActionSpec{Template: "default"}}}
	results := e.ApplyBatch(context.Background(), "high-cpu", actions, []string{"node-a"}, notification.PhaseTrigger, noAlertCtx)

	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}
