package rulestore_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nodeguardian/nodeguardian/pkg/rulestore"
)

var _ = Describe("Validate monitoring bounds", func() {
	It("accepts a checkInterval/cooldownPeriod pair at the floor", func() {
		rule := validRule("at-floor", true)
		rule.Spec.Monitoring.CheckInterval = "1s"
		rule.Spec.Monitoring.CooldownPeriod = "1s"
		Expect(rulestore.Validate(rule)).To(Succeed())
	})

	It("rejects a checkInterval below one second", func() {
		rule := validRule("too-fast", true)
		rule.Spec.Monitoring.CheckInterval = "0s"
		rule.Spec.Monitoring.CooldownPeriod = "5m"
		Expect(rulestore.Validate(rule)).To(MatchError(ContainSubstring("checkInterval")))
	})

	It("rejects a cooldownPeriod shorter than checkInterval", func() {
		rule := validRule("short-cooldown", true)
		rule.Spec.Monitoring.CheckInterval = "30s"
		rule.Spec.Monitoring.CooldownPeriod = "10s"
		Expect(rulestore.Validate(rule)).To(MatchError(ContainSubstring("cooldownPeriod")))
	})

	It("accepts a cooldownPeriod equal to checkInterval", func() {
		rule := validRule("equal-cooldown", true)
		rule.Spec.Monitoring.CheckInterval = "30s"
		rule.Spec.Monitoring.CooldownPeriod = "30s"
		Expect(rulestore.Validate(rule)).To(Succeed())
	})
})
