package entry_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

var _ = Describe("Builder", func() {
	It("builds a valid BootEfi Config", func() {
		cfg, err := entry.NewBuilder(entry.BootEfi).
			Filename("arch").
			Title("Arch Linux").
			EfiPath(`\vmlinuz-linux`).
			Options("root=/dev/sda2 rw").
			FsHandle(firmware.NewHandle()).
			Origin(entry.OriginBLS).
			Build()
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Title).To(Equal("Arch Linux"))
		Expect(cfg.Action).To(Equal(entry.BootEfi))
	})

	It("rejects a missing filename", func() {
		_, err := entry.NewBuilder(entry.BootEfi).
			EfiPath(`\vmlinuz-linux`).
			FsHandle(firmware.NewHandle()).
			Build()
		Expect(err).To(HaveOccurred())
		var buildErr *bmerrors.BuildError
		Expect(err.Error()).To(ContainSubstring("filename"))
		_ = buildErr
	})

	It("rejects a BootEfi entry missing efi_path", func() {
		_, err := entry.NewBuilder(entry.BootEfi).
			Filename("arch").
			FsHandle(firmware.NewHandle()).
			Build()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("efi_path"))
	})

	It("rejects an efi_path missing the .efi suffix for non-linux/efi entries", func() {
		b := entry.NewBuilder(entry.BootEfi).Filename("x").EfiPath(`\not-an-image.bin`)
		_, err := b.Build()
		Expect(err).To(HaveOccurred())
	})

	It("rejects a sort_key with disallowed characters", func() {
		b := entry.NewBuilder(entry.BootEfi).
			Filename("x").
			EfiPath(`\x.efi`).
			SortKey("Bad Key!")
		_, err := b.Build()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("sort_key"))
	})

	It("rejects a BootEfi entry with the zero fs_handle", func() {
		b := entry.NewBuilder(entry.BootEfi).
			Filename("x").
			EfiPath(`\x.efi`).
			FsHandle(firmware.Handle{})
		_, err := b.Build()
		Expect(err).To(HaveOccurred())
	})

	It("allows a synthetic action entry without efi_path", func() {
		cfg, err := entry.NewBuilder(entry.Reboot).
			Filename("reboot").
			Origin(entry.OriginAction).
			Build()
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Action.IsSynthetic()).To(BeTrue())
	})

	It("never panics on malformed field input", func() {
		Expect(func() {
			_, _ = entry.NewBuilder(entry.BootEfi).
				Filename("\x00\x00").
				EfiPath("not even close to a path").
				SortKey("!!!").
				Options("a\x00b").
				Architecture("made-up").
				Build()
		}).ToNot(Panic())
	})
})
