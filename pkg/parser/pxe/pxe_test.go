package pxe_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/efiboot/bootmgr-go/pkg/firmware/faketest"
	"github.com/efiboot/bootmgr-go/pkg/parser/pxe"
)

func TestPXESuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PXE parser suite")
}

var _ = Describe("Produce", func() {
	It("emits a single BootTftp entry tagged with the reported architecture", func() {
		entries, err := pxe.Produce(faketest.Pxe{AvailableFlag: true, Arch: "x64"}, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Architecture).To(Equal("x64"))
	})

	It("produces nothing when PXE reports itself unavailable", func() {
		entries, err := pxe.Produce(faketest.Pxe{AvailableFlag: false}, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("produces nothing when given a nil capability", func() {
		entries, err := pxe.Produce(nil, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})
})
