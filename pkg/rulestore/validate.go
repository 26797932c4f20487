package rulestore

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nodeguardian/nodeguardian/internal/durationx"
	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ngduration", func(fl validator.FieldLevel) bool {
		return durationx.Valid(fl.Field().String())
	})
	return v
}

type conditionValidation struct {
	Metric   ngv1.MetricKey `validate:"oneof=cpuUtilizationPercent memoryUtilizationPercent diskUtilizationPercent cpuLoadRatio"`
	Operator ngv1.Operator  `validate:"oneof=GreaterThan GreaterThanOrEqual LessThan LessThanOrEqual EqualTo NotEqualTo"`
	Duration string         `validate:"omitempty,ngduration"`
}

type monitoringValidation struct {
	CheckInterval          string `validate:"required,ngduration"`
	CooldownPeriod         string `validate:"required,ngduration"`
	RecoveryCooldownPeriod string `validate:"omitempty,ngduration"`
}

type actionValidation struct {
	Type ngv1.ActionType `validate:"oneof=taint untaint label removeLabel annotation removeAnnotation evict alert"`
}

// Validate runs the closed-set/duration-grammar ingest checks required
// before a rule can reach the Condition Evaluator. It never mutates rule;
// callers wrap a failure in ConfigError.
func Validate(rule *ngv1.NodeGuardianRule) error {
	if rule.Name == "" {
		return fmt.Errorf("rulestore: rule has no name")
	}

	for i, c := range rule.Spec.Conditions {
		if err := validate.Struct(conditionValidation{Metric: c.Metric, Operator: c.Operator, Duration: c.Duration}); err != nil {
			return fmt.Errorf("conditions[%d]: %w", i, err)
		}
	}
	for i, c := range rule.Spec.RecoveryConditions {
		if err := validate.Struct(conditionValidation{Metric: c.Metric, Operator: c.Operator, Duration: c.Duration}); err != nil {
			return fmt.Errorf("recoveryConditions[%d]: %w", i, err)
		}
	}

	if err := validate.Struct(monitoringValidation{
		CheckInterval:          rule.Spec.Monitoring.CheckInterval,
		CooldownPeriod:         rule.Spec.Monitoring.CooldownPeriod,
		RecoveryCooldownPeriod: rule.Spec.Monitoring.RecoveryCooldownPeriod,
	}); err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}
	if err := validateMonitoringBounds(rule.Spec.Monitoring); err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}

	for i, a := range rule.Spec.Actions {
		if err := validateAction(a); err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
	}
	for i, a := range rule.Spec.RecoveryActions {
		if err := validateAction(a); err != nil {
			return fmt.Errorf("recoveryActions[%d]: %w", i, err)
		}
	}

	return nil
}

// validateMonitoringBounds enforces the numeric floors the duration grammar
// alone can't express: a check interval below one second, and a cooldown
// shorter than the check interval it's meant to throttle. Both parse cleanly
// under ngduration, so grammar validation lets them through silently.
func validateMonitoringBounds(m ngv1.MonitoringParams) error {
	checkInterval, err := durationx.Parse(m.CheckInterval)
	if err != nil {
		return fmt.Errorf("checkInterval: %w", err)
	}
	if checkInterval < time.Second {
		return fmt.Errorf("checkInterval %q must be at least 1s", m.CheckInterval)
	}

	cooldownPeriod, err := durationx.Parse(m.CooldownPeriod)
	if err != nil {
		return fmt.Errorf("cooldownPeriod: %w", err)
	}
	if cooldownPeriod < checkInterval {
		return fmt.Errorf("cooldownPeriod %q must be at least checkInterval %q", m.CooldownPeriod, m.CheckInterval)
	}

	return nil
}

// validateAction checks both the closed action-type set and that the
// payload matching Type is actually populated, since the Action Executor's
// tagged-variant dispatch assumes ingest already guaranteed this.
func validateAction(a ngv1.Action) error {
	if err := validate.Struct(actionValidation{Type: a.Type}); err != nil {
		return err
	}
	var populated bool
	switch a.Type {
	case ngv1.ActionTaint:
		populated = a.Taint != nil
	case ngv1.ActionUntaint:
		populated = a.Untaint != nil
	case ngv1.ActionLabel:
		populated = a.Label != nil
	case ngv1.ActionRemoveLabel:
		populated = a.RemoveLabel != nil
	case ngv1.ActionAnnotation:
		populated = a.Annotation != nil
	case ngv1.ActionRemoveAnnotation:
		populated = a.RemoveAnnotation != nil
	case ngv1.ActionEvict:
		populated = a.Evict != nil
	case ngv1.ActionAlert:
		populated = a.Alert != nil
	}
	if !populated {
		return fmt.Errorf("action type %q has no matching payload", a.Type)
	}
	return nil
}
