// Package controlloop is the NodeGuardian Control Loop: two independent
// periodic drivers (trigger and recovery) that tie the Rule Store, Metrics
// Resolver, Condition Evaluator, Cooldown Ledger, Action Executor, and Alert
// Dispatcher together into the engine's actual evaluate-and-remediate cycle.
package controlloop

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nodeguardian/nodeguardian/internal/clock"
	"github.com/nodeguardian/nodeguardian/internal/durationx"
	"github.com/nodeguardian/nodeguardian/internal/selfmetrics"
	"github.com/nodeguardian/nodeguardian/pkg/cooldown"
	"github.com/nodeguardian/nodeguardian/pkg/executor"
	"github.com/nodeguardian/nodeguardian/pkg/notification"
	"github.com/nodeguardian/nodeguardian/pkg/platform"
	"github.com/nodeguardian/nodeguardian/pkg/rulestore"

	"github.com/nodeguardian/nodeguardian/pkg/condition"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// tickFloor is the minimum trigger-driver tick period, regardless of how
// short any enabled rule's checkInterval is.
const tickFloor = 5 * time.Second

// recoveryTickInterval is the recovery driver's fixed tick period.
const recoveryTickInterval = 30 * time.Second

// defaultMaxConcurrentChecks bounds per-tick node-evaluation parallelism
// when Config.MaxConcurrentChecks is left at zero.
const defaultMaxConcurrentChecks = 10

// Evaluator is the capability the loop needs from the Condition Evaluator.
type Evaluator interface {
	EvaluateRule(ctx context.Context, node string, conditions []ngv1.Condition, logic ngv1.ConditionLogic) bool
}

// Config bundles the loop's dependencies. Built once at startup and passed
// by value into New — there is no package-level engine singleton.
type Config struct {
	Platform            platform.Adapter
	Store               *rulestore.Store
	Ledger              *cooldown.Ledger
	Evaluator           Evaluator
	Executor            *executor.Executor
	Resolver            condition.MetricResolver
	Clock               clock.Clock
	Log                 logr.Logger
	MaxConcurrentChecks int
	Metrics             *selfmetrics.Registry
}

// Loop runs the trigger and recovery drivers.
type Loop struct {
	cfg Config
	log logr.Logger
}

// New builds a Loop. It does not start anything; call Run.
func New(cfg Config) *Loop {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.MaxConcurrentChecks <= 0 {
		cfg.MaxConcurrentChecks = defaultMaxConcurrentChecks
	}
	return &Loop{cfg: cfg, log: cfg.Log.WithName("control-loop")}
}

// Run starts both drivers and blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.runTriggerDriver(ctx)
	}()
	go func() {
		defer wg.Done()
		l.runRecoveryDriver(ctx)
	}()
	wg.Wait()
}

// runTriggerDriver re-derives its own wait interval after every tick as
// min(checkInterval) across currently enabled rules, floored at tickFloor,
// since the rule set (and therefore the minimum) can change between ticks.
func (l *Loop) runTriggerDriver(ctx context.Context) {
	for {
		wait := l.triggerInterval()
		select {
		case <-ctx.Done():
			return
		case <-l.cfg.Clock.After(wait):
			l.triggerTick(ctx)
		}
	}
}

func (l *Loop) triggerInterval() time.Duration {
	interval := time.Duration(0)
	for _, rule := range l.cfg.Store.Snapshot() {
		if !rule.Spec.Metadata.Enabled {
			continue
		}
		d := mustParseDuration(rule.Spec.Monitoring.CheckInterval)
		if d <= 0 {
			continue
		}
		if interval == 0 || d < interval {
			interval = d
		}
	}
	if interval < tickFloor {
		interval = tickFloor
	}
	return interval
}

func (l *Loop) runRecoveryDriver(ctx context.Context) {
	ticker := l.cfg.Clock.NewTicker(recoveryTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			l.recoveryTick(ctx)
		}
	}
}

// triggerTick snapshots the rule list and evaluates every enabled rule's
// matching nodes in parallel, up to MaxConcurrentChecks.
func (l *Loop) triggerTick(ctx context.Context) {
	correlationID := uuid.New().String()
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.TicksTotal.WithLabelValues("trigger").Inc()
	}
	rules := l.cfg.Store.Snapshot()

	for _, rule := range rules {
		nodes, err := l.matchingNodes(ctx, rule)
		if err != nil {
			l.log.Error(err, "listing nodes for rule failed", "rule", rule.Name, "tick", correlationID)
			continue
		}

		triggered := l.evaluateNodesInParallel(ctx, rule, nodes, cooldown.PhaseTrigger, rule.Spec.Conditions, rule.Spec.ConditionLogic, mustParseDuration(rule.Spec.Monitoring.CooldownPeriod))
		if len(triggered) == 0 {
			continue
		}

		l.log.Info("rule triggered", "rule", rule.Name, "nodes", triggered, "tick", correlationID)

		alertCtx := func(node string) notification.AlertContext {
			return l.buildAlertContext(ctx, rule, []string{node})
		}
		results := l.cfg.Executor.ApplyBatch(ctx, rule.Name, rule.Spec.Actions, triggered, notification.PhaseTrigger, alertCtx)
		l.recordActionMetrics(results)

		var lastErr error
		for _, node := range triggered {
			for _, r := range results {
				if r.Node == node && r.Err != nil {
					lastErr = r.Err
				}
			}
			if err := l.cfg.Ledger.Mark(ctx, rule.Name, node, cooldown.PhaseTrigger); err != nil {
				l.log.Error(err, "failed to mark trigger cooldown", "rule", rule.Name, "node", node)
			}
		}

		l.patchStatus(ctx, rule, func(status *ngv1.NodeGuardianRuleStatus) {
			status.Phase = ngv1.PhaseActive
			status.TriggeredNodes = mergeTriggeredNodes(status.TriggeredNodes, triggered)
			status.LastTriggered = metav1.NewTime(l.cfg.Clock.Now())
			if lastErr != nil {
				status.LastError = lastErr.Error()
			}
		})
	}
}

// recoveryTick checks every currently-triggered node on every rule with a
// non-empty recovery condition list, running recovery actions and clearing
// the triggered-node status entry when recovery fires.
func (l *Loop) recoveryTick(ctx context.Context) {
	correlationID := uuid.New().String()
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.TicksTotal.WithLabelValues("recovery").Inc()
	}
	rules := l.cfg.Store.Snapshot()

	for _, rule := range rules {
		if len(rule.Spec.RecoveryConditions) == 0 {
			continue
		}
		triggeredNodes := rule.Status.TriggeredNodes
		if len(triggeredNodes) == 0 {
			continue
		}

		recovered := l.evaluateNodesInParallel(ctx, rule, triggeredNodes, cooldown.PhaseRecovery, rule.Spec.RecoveryConditions, rule.Spec.ConditionLogic, mustParseDuration(rule.Spec.Monitoring.RecoveryCooldownPeriod))
		if len(recovered) == 0 {
			continue
		}

		l.log.Info("rule recovered", "rule", rule.Name, "nodes", recovered, "tick", correlationID)

		alertCtx := func(node string) notification.AlertContext {
			return l.buildAlertContext(ctx, rule, []string{node})
		}
		results := l.cfg.Executor.ApplyBatch(ctx, rule.Name, rule.Spec.RecoveryActions, recovered, notification.PhaseRecovery, alertCtx)
		l.recordActionMetrics(results)

		for _, node := range recovered {
			if err := l.cfg.Ledger.Mark(ctx, rule.Name, node, cooldown.PhaseRecovery); err != nil {
				l.log.Error(err, "failed to mark recovery cooldown", "rule", rule.Name, "node", node)
			}
		}

		l.patchStatus(ctx, rule, func(status *ngv1.NodeGuardianRuleStatus) {
			status.TriggeredNodes = removeNodes(status.TriggeredNodes, recovered)
			status.LastRecovery = metav1.NewTime(l.cfg.Clock.Now())
		})
	}
}

// evaluateNodesInParallel checks cooldown + condition satisfaction for each
// candidate node up to MaxConcurrentChecks at a time, returning the nodes
// that should fire.
func (l *Loop) evaluateNodesInParallel(ctx context.Context, rule *ngv1.NodeGuardianRule, nodes []string, phase cooldown.Phase, conditions []ngv1.Condition, logic ngv1.ConditionLogic, period time.Duration) []string {
	sem := make(chan struct{}, l.cfg.MaxConcurrentChecks)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var fire []string

	for _, node := range nodes {
		node := node
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			may, err := l.cfg.Ledger.MayFire(ctx, rule.Name, node, phase, period)
			if err != nil {
				l.log.Error(err, "cooldown check failed", "rule", rule.Name, "node", node)
				return
			}
			if !may {
				return
			}
			if !l.cfg.Evaluator.EvaluateRule(ctx, node, conditions, logic) {
				return
			}

			mu.Lock()
			fire = append(fire, node)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return fire
}

func (l *Loop) matchingNodes(ctx context.Context, rule *ngv1.NodeGuardianRule) ([]string, error) {
	snapshots, err := l.cfg.Platform.ListNodes(ctx, rule.Spec.NodeSelector.MatchLabels, rule.Spec.NodeSelector.NodeNames)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(snapshots))
	for i, n := range snapshots {
		names[i] = n.Name
	}
	return names, nil
}

func (l *Loop) patchStatus(ctx context.Context, rule *ngv1.NodeGuardianRule, mutate func(*ngv1.NodeGuardianRuleStatus)) {
	updated := rule.DeepCopy()
	mutate(&updated.Status)
	if err := l.cfg.Platform.UpdateRuleStatus(ctx, updated); err != nil {
		l.log.Error(err, "rule status patch failed", "rule", rule.Name)
		return
	}
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.TriggeredNodesGauge.WithLabelValues(rule.Name).Set(float64(len(updated.Status.TriggeredNodes)))
	}
}

func (l *Loop) recordActionMetrics(results []executor.Result) {
	if l.cfg.Metrics == nil {
		return
	}
	for _, r := range results {
		outcome := "success"
		if r.Err != nil {
			outcome = "failure"
		}
		l.cfg.Metrics.ActionsExecutedTotal.WithLabelValues(string(r.ActionType), outcome).Inc()
	}
}

// alertMetricKeys is the fixed set of metrics rendered into every alert's
// per-node metrics block, matching notification.NodeMetrics's fields.
var alertMetricKeys = []ngv1.MetricKey{
	ngv1.MetricCPUUtilizationPercent,
	ngv1.MetricMemoryUtilizationPercent,
	ngv1.MetricDiskUtilizationPercent,
	ngv1.MetricCPULoadRatio,
}

// buildAlertContext assembles the alert context for one rule fire across
// the given nodes. Metric snapshotting beyond what's already on a
// NodeSnapshot (problem pods, resolved metrics) is best-effort: a listing
// or resolve failure leaves that part of the context at its zero value
// rather than failing the alert.
func (l *Loop) buildAlertContext(ctx context.Context, rule *ngv1.NodeGuardianRule, nodes []string) notification.AlertContext {
	triggered := make([]notification.TriggeredNode, 0, len(nodes))
	for _, node := range nodes {
		var pods []notification.ProblemPod
		if snaps, err := l.cfg.Platform.ListPodsOnNode(ctx, node, nil); err == nil {
			for _, p := range snaps {
				pods = append(pods, notification.ProblemPod{Namespace: p.Namespace, Name: p.Name, Phase: p.Phase})
			}
		}
		triggered = append(triggered, notification.TriggeredNode{
			Name:        node,
			Metrics:     l.resolveNodeMetrics(ctx, node),
			ProblemPods: notification.CapProblemPods(pods),
		})
	}
	return notification.AlertContext{
		RuleName:        rule.Name,
		RuleDescription: rule.Spec.Metadata.Description,
		Severity:        rule.Spec.Metadata.Severity,
		TimestampUTCISO: l.cfg.Clock.Now().UTC().Format(time.RFC3339),
		TriggeredNodes:  triggered,
	}
}

// resolveNodeMetrics resolves the fixed alert metric set for node. A metric
// the resolver can't produce is left at zero rather than aborting the rest
// of the block, the same tolerance the Condition Evaluator applies.
func (l *Loop) resolveNodeMetrics(ctx context.Context, node string) notification.NodeMetrics {
	var m notification.NodeMetrics
	if l.cfg.Resolver == nil {
		return m
	}
	for _, key := range alertMetricKeys {
		value, err := l.cfg.Resolver.Resolve(ctx, node, key)
		if err != nil {
			l.log.V(1).Info("metric unavailable for alert context", "node", node, "metric", key, "err", err.Error())
			continue
		}
		switch key {
		case ngv1.MetricCPUUtilizationPercent:
			m.CPUUtilizationPercent = value
		case ngv1.MetricMemoryUtilizationPercent:
			m.MemoryUtilizationPercent = value
		case ngv1.MetricDiskUtilizationPercent:
			m.DiskUtilizationPercent = value
		case ngv1.MetricCPULoadRatio:
			m.CPULoadRatio = value
		}
	}
	return m
}

// mustParseDuration parses a rule's already-validated duration field.
// Rule Store ingest validation (pkg/rulestore) rejects any rule whose
// duration fields don't parse, so a failure here can only mean a rule
// reached the loop without going through that validation.
func mustParseDuration(s string) time.Duration {
	d, err := durationx.Parse(s)
	if err != nil {
		return 0
	}
	return d
}

func mergeTriggeredNodes(existing, triggered []string) []string {
	seen := make(map[string]bool, len(existing)+len(triggered))
	out := make([]string, 0, len(existing)+len(triggered))
	for _, n := range existing {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range triggered {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func removeNodes(existing, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, n := range remove {
		drop[n] = true
	}
	out := make([]string, 0, len(existing))
	for _, n := range existing {
		if !drop[n] {
			out = append(out, n)
		}
	}
	return out
}

