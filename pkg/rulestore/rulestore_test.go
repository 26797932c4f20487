package rulestore_test

import (
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nodeguardian/nodeguardian/internal/ngerrors"
	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/platform"
	"github.com/nodeguardian/nodeguardian/pkg/rulestore"
)

func validRule(name string, enabled bool) *ngv1.NodeGuardianRule {
	return &ngv1.NodeGuardianRule{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec: ngv1.NodeGuardianRuleSpec{
			Conditions: []ngv1.Condition{
				{Metric: ngv1.MetricCPUUtilizationPercent, Operator: ngv1.OpGreaterThan, Value: 90},
			},
			ConditionLogic: ngv1.LogicAND,
			Actions: []ngv1.Action{
				{Type: ngv1.ActionTaint, Taint: &ngv1.TaintSpec{Key: "k", Value: "v", Effect: ngv1.TaintNoSchedule}},
			},
			Monitoring: ngv1.MonitoringParams{CheckInterval: "30s", CooldownPeriod: "5m"},
			Metadata:   ngv1.RuleMetadata{Enabled: enabled},
		},
	}
}

var _ = Describe("rule store", func() {
	var (
		dir   string
		store *rulestore.Store
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		store = rulestore.New(dir, logr.Discard())
	})

	It("upserts an enabled rule and mirrors it to disk", func() {
		_, err := store.Apply(platform.RuleEvent{Type: platform.EventAdded, Rule: validRule("high-cpu", true)})
		Expect(err).NotTo(HaveOccurred())

		snap := store.Snapshot()
		Expect(snap).To(HaveLen(1))
		Expect(snap[0].Name).To(Equal("high-cpu"))

		_, err = os.Stat(filepath.Join(dir, "rules", "high-cpu.json"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("removes a rule on disable and deletes its mirror", func() {
		_, err := store.Apply(platform.RuleEvent{Type: platform.EventAdded, Rule: validRule("high-cpu", true)})
		Expect(err).NotTo(HaveOccurred())

		_, err = store.Apply(platform.RuleEvent{Type: platform.EventModified, Rule: validRule("high-cpu", false)})
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Snapshot()).To(BeEmpty())
		_, statErr := os.Stat(filepath.Join(dir, "rules", "high-cpu.json"))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("rejects an invalid rule as a ConfigError without affecting the index", func() {
		bad := validRule("bad-rule", true)
		bad.Spec.Conditions[0].Metric = "not-a-real-metric"

		_, err := store.Apply(platform.RuleEvent{Type: platform.EventAdded, Rule: bad})
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&ngerrors.ConfigError{}))
		Expect(store.Snapshot()).To(BeEmpty())
	})

	It("reconciles a full synchronization snapshot, removing unseen rules", func() {
		_, err := store.Apply(platform.RuleEvent{Type: platform.EventAdded, Rule: validRule("stale-rule", true)})
		Expect(err).NotTo(HaveOccurred())

		removed := store.ReconcileSync([]*ngv1.NodeGuardianRule{validRule("fresh-rule", true)})
		Expect(removed).To(ContainElement("stale-rule"))

		snap := store.Snapshot()
		Expect(snap).To(HaveLen(1))
		Expect(snap[0].Name).To(Equal("fresh-rule"))
	})
})
