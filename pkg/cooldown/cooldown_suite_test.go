package cooldown_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCooldown(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cooldown Ledger Suite")
}
