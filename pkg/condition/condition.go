// Package condition evaluates a NodeGuardianRule's conditions against a
// node's resolved metrics, and converts node selectors into the platform's
// stable label-selector wire form.
package condition

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

// equalityTolerance is the absolute tolerance applied to EqualTo/NotEqualTo
// comparisons, since resolved metrics are floating point.
const equalityTolerance = 1e-3

// MetricResolver is the capability the evaluator needs from the Metrics
// Resolver: resolve one metric for one node.
type MetricResolver interface {
	Resolve(ctx context.Context, node string, metric ngv1.MetricKey) (float64, error)
}

// Evaluator evaluates conditions against live metric values.
type Evaluator struct {
	metrics MetricResolver
	log     *logrus.Entry
}

// New builds an Evaluator bound to a MetricResolver.
func New(metrics MetricResolver) *Evaluator {
	return &Evaluator{
		metrics: metrics,
		log:     logrus.WithField("component", "condition-evaluator"),
	}
}

// EvaluateRule reports whether the combined condition list for a node is
// satisfied, applying logic's AND/OR semantics. An empty condition list
// always evaluates to false — both for trigger and recovery evaluation,
// since recovery requires an explicit intent rather than an implicit always-true.
func (e *Evaluator) EvaluateRule(ctx context.Context, node string, conditions []ngv1.Condition, logic ngv1.ConditionLogic) bool {
	if len(conditions) == 0 {
		return false
	}

	switch logic {
	case ngv1.LogicOR:
		for _, c := range conditions {
			if e.evaluateCondition(ctx, node, c) {
				return true
			}
		}
		return false
	default: // LogicAND is the default combinator.
		for _, c := range conditions {
			if !e.evaluateCondition(ctx, node, c) {
				return false
			}
		}
		return true
	}
}

// evaluateCondition resolves one condition's metric and applies its
// operator. A metric the resolver could not produce counts as unsatisfied,
// never as an error that aborts the rule.
func (e *Evaluator) evaluateCondition(ctx context.Context, node string, c ngv1.Condition) bool {
	value, err := e.metrics.Resolve(ctx, node, c.Metric)
	if err != nil {
		e.log.WithFields(logrus.Fields{"node": node, "metric": c.Metric}).Debug("metric unavailable, condition unsatisfied")
		return false
	}
	return applyOperator(c.Operator, value, c.Value)
}

func applyOperator(op ngv1.Operator, actual, threshold float64) bool {
	switch op {
	case ngv1.OpGreaterThan:
		return actual > threshold
	case ngv1.OpGreaterThanOrEqual:
		return actual >= threshold
	case ngv1.OpLessThan:
		return actual < threshold
	case ngv1.OpLessThanOrEqual:
		return actual <= threshold
	case ngv1.OpEqualTo:
		return math.Abs(actual-threshold) <= equalityTolerance
	case ngv1.OpNotEqualTo:
		return math.Abs(actual-threshold) > equalityTolerance
	default:
		return false
	}
}

// LabelSelector converts matchLabels into the platform's wire form
// k1=v1,k2=v2,... with lexicographic key ordering so the same selector
// always serializes identically.
func LabelSelector(matchLabels map[string]string) string {
	if len(matchLabels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(matchLabels))
	for k := range matchLabels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+matchLabels[k])
	}
	return strings.Join(parts, ",")
}
