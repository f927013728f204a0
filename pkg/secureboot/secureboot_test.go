package secureboot_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/efiboot/bootmgr-go/pkg/firmware/faketest"
	"github.com/efiboot/bootmgr-go/pkg/secureboot"
)

func TestSecureBootSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "secureboot guard suite")
}

var _ = Describe("Acquire", func() {
	It("installs the override when Shim is present", func() {
		sec := &faketest.Security{Present: true}
		guard, err := secureboot.Acquire(sec)
		Expect(err).ToNot(HaveOccurred())
		Expect(sec.Installed()).To(BeTrue())
		Expect(guard.Release()).To(Succeed())
		Expect(sec.Installed()).To(BeFalse())
	})

	It("returns a no-op guard when Shim is absent (§7 ShimAbsent)", func() {
		sec := &faketest.Security{Present: false}
		guard, err := secureboot.Acquire(sec)
		Expect(err).ToNot(HaveOccurred())
		Expect(sec.Installed()).To(BeFalse())
		Expect(guard.Release()).To(Succeed())
	})

	It("rejects a second acquisition while one is already installed (§8 item 5)", func() {
		sec := &faketest.Security{Present: true}
		first, err := secureboot.Acquire(sec)
		Expect(err).ToNot(HaveOccurred())
		defer first.Release()

		_, err = secureboot.Acquire(&faketest.Security{Present: true})
		Expect(err).To(HaveOccurred())
	})

	It("allows re-acquisition once the prior guard is released", func() {
		sec := &faketest.Security{Present: true}
		first, err := secureboot.Acquire(sec)
		Expect(err).ToNot(HaveOccurred())
		Expect(first.Release()).To(Succeed())

		second, err := secureboot.Acquire(sec)
		Expect(err).ToNot(HaveOccurred())
		Expect(second.Release()).To(Succeed())
	})

	It("tolerates Release being called more than once", func() {
		sec := &faketest.Security{Present: true}
		guard, err := secureboot.Acquire(sec)
		Expect(err).ToNot(HaveOccurred())
		Expect(guard.Release()).To(Succeed())
		Expect(guard.Release()).To(Succeed())
	})
})
