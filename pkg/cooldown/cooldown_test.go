package cooldown_test

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nodeguardian/nodeguardian/internal/clock"
	"github.com/nodeguardian/nodeguardian/pkg/cooldown"
)

var _ = Describe("cooldown ledger", func() {
	var (
		ctx   context.Context
		fake  *clock.Fake
		l     *cooldown.Ledger
		state string
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		state = GinkgoT().TempDir()
		l = cooldown.New(state, fake, logr.Discard())
	})

	It("allows firing when no entry exists", func() {
		ok, err := l.MayFire(ctx, "high-cpu", "node-1", cooldown.PhaseTrigger, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("blocks firing until the cooldown period elapses", func() {
		Expect(l.Mark(ctx, "high-cpu", "node-1", cooldown.PhaseTrigger)).To(Succeed())

		ok, err := l.MayFire(ctx, "high-cpu", "node-1", cooldown.PhaseTrigger, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		fake.Advance(4 * time.Minute)
		ok, err = l.MayFire(ctx, "high-cpu", "node-1", cooldown.PhaseTrigger, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		fake.Advance(1 * time.Minute)
		ok, err = l.MayFire(ctx, "high-cpu", "node-1", cooldown.PhaseTrigger, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("tracks trigger and recovery phases independently", func() {
		Expect(l.Mark(ctx, "high-cpu", "node-1", cooldown.PhaseTrigger)).To(Succeed())

		ok, err := l.MayFire(ctx, "high-cpu", "node-1", cooldown.PhaseRecovery, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("clears every entry for a rule across nodes and phases", func() {
		Expect(l.Mark(ctx, "high-cpu", "node-1", cooldown.PhaseTrigger)).To(Succeed())
		Expect(l.Mark(ctx, "high-cpu", "node-2", cooldown.PhaseRecovery)).To(Succeed())
		Expect(l.Mark(ctx, "other-rule", "node-1", cooldown.PhaseTrigger)).To(Succeed())

		Expect(l.ClearRule("high-cpu")).To(Succeed())

		ok, err := l.MayFire(ctx, "high-cpu", "node-1", cooldown.PhaseTrigger, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = l.MayFire(ctx, "other-rule", "node-1", cooldown.PhaseTrigger, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
