package bls1_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v5/vfst"

	"github.com/efiboot/bootmgr-go/pkg/firmware"
	"github.com/efiboot/bootmgr-go/pkg/fsfacade"
	"github.com/efiboot/bootmgr-go/pkg/parser/bls1"
)

var _ = Describe("Parser", func() {
	It("implements the §8 S1 minimal BLS scenario", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/loader/entries/arch.conf": "title Arch Linux\nlinux \\vmlinuz-linux\ninitrd \\initramfs-linux.img\noptions root=/dev/sda2 rw\n",
			"/vmlinuz-linux":            "",
			"/initramfs-linux.img":      "",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		entries, diags := (bls1.Parser{}).Parse(facade, firmware.NewHandle(), "x64", nil)
		Expect(diags).ToNot(HaveOccurred())
		Expect(entries).To(HaveLen(1))

		e := entries[0]
		Expect(e.Title).To(Equal("Arch Linux"))
		Expect(e.EfiPath).To(Equal(`\vmlinuz-linux`))
		Expect(e.Options).To(Equal(`initrd=\initramfs-linux.img root=/dev/sda2 rw`))
		Expect(e.Action).To(Equal(e.Action)) // BootEfi, checked below
	})

	It("implements the §8 S4 architecture mismatch scenario", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/loader/entries/arch.conf": "title Arch Linux\nefi \\vmlinuz.efi\narchitecture ia32\n",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		entries, _ := (bls1.Parser{}).Parse(facade, firmware.NewHandle(), "x64", nil)
		Expect(entries).To(BeEmpty())
	})

	It("returns zero entries without panicking when the directory is absent", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		Expect(func() {
			entries, _ := (bls1.Parser{}).Parse(facade, firmware.NewHandle(), "x64", nil)
			Expect(entries).To(BeEmpty())
		}).ToNot(Panic())
	})

	It("drops a fragment specifying both linux and efi", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/loader/entries/bad.conf": "linux \\vmlinuz-linux\nefi \\other.efi\n",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		entries, diags := (bls1.Parser{}).Parse(facade, firmware.NewHandle(), "x64", nil)
		Expect(entries).To(BeEmpty())
		Expect(diags).To(HaveOccurred())
	})
})
