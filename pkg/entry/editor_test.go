package entry_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

var _ = Describe("ConfigEditor", func() {
	var base *entry.Config

	BeforeEach(func() {
		var err error
		base, err = entry.NewBuilder(entry.BootEfi).
			Filename("arch").
			Title("Arch Linux").
			EfiPath(`\vmlinuz-linux`).
			Options("root=/dev/sda2 rw").
			FsHandle(firmware.NewHandle()).
			Origin(entry.OriginBLS).
			Build()
		Expect(err).ToNot(HaveOccurred())
	})

	It("commits a new Config leaving the original untouched (§8 S6)", func() {
		editor := entry.NewConfigEditor(*base)
		Expect(editor.SetField("options", "root=/dev/sda3 rw")).To(Succeed())
		next, err := editor.Commit()
		Expect(err).ToNot(HaveOccurred())

		Expect(next.Options).To(Equal("root=/dev/sda3 rw"))
		Expect(base.Options).To(Equal("root=/dev/sda2 rw"))
		Expect(next.Title).To(Equal(base.Title))
		Expect(next.Filename).To(Equal(base.Filename))
	})

	It("rejects an invalid field the same way the Builder would", func() {
		editor := entry.NewConfigEditor(*base)
		err := editor.SetField("sort_key", "NOT VALID")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown field name", func() {
		editor := entry.NewConfigEditor(*base)
		err := editor.SetField("not_a_field", "x")
		Expect(err).To(HaveOccurred())
	})

	It("discards pending edits on Reset", func() {
		editor := entry.NewConfigEditor(*base)
		Expect(editor.SetField("title", "Changed")).To(Succeed())
		editor.Reset()
		next, err := editor.Commit()
		Expect(err).ToNot(HaveOccurred())
		Expect(next.Title).To(Equal(base.Title))
	})
})
