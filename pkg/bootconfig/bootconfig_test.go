package bootconfig_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/efiboot/bootmgr-go/pkg/bootconfig"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

var _ = Describe("Parse", func() {
	It("parses the §6 example file", func() {
		data := []byte("# lines beginning with # are comments\ntimeout 5\ndefault arch\neditor true\nhidden windows-recovery\n")
		cfg, err := bootconfig.Parse(data, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Timeout).To(BeEquivalentTo(5))
		Expect(cfg.Default).To(Equal("arch"))
		Expect(cfg.EditorEnabled).To(BeTrue())
		Expect(cfg.Hidden).To(ConsistOf("windows-recovery"))
	})

	It("treats an empty file as defaults, not an error", func() {
		cfg, err := bootconfig.Parse([]byte(""), nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Timeout).To(BeEquivalentTo(0))
	})

	It("ignores unknown keys with a warning, not an error", func() {
		_, err := bootconfig.Parse([]byte("frobnicate yes\ntimeout 1\n"), nil)
		Expect(err).ToNot(HaveOccurred())
	})

	It("rejects a selector marked both default and bad (§9 open question)", func() {
		_, err := bootconfig.Parse([]byte("default windows-recovery\nbad windows-recovery\n"), nil)
		Expect(err).To(HaveOccurred())
	})

	It("round-trips through Serialize (§8 item 3)", func() {
		original := &bootconfig.BootConfig{
			Timeout:       10,
			Default:       "b",
			EditorEnabled: true,
			Hidden:        []string{"a"},
			Bad:           []string{"c"},
		}
		reparsed, err := bootconfig.Parse(bootconfig.Serialize(original), nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(reparsed).To(Equal(original))
	})
})

var _ = Describe("Apply", func() {
	It("implements the §8 S5 scenario", func() {
		a, err := entry.NewBuilder(entry.BootEfi).Filename("a").EfiPath(`\a.efi`).FsHandle(firmware.NewHandle()).Build()
		Expect(err).ToNot(HaveOccurred())
		b, err := entry.NewBuilder(entry.BootEfi).Filename("b").EfiPath(`\b.efi`).FsHandle(firmware.NewHandle()).Build()
		Expect(err).ToNot(HaveOccurred())

		cfg, err := bootconfig.Parse([]byte("default b\nhidden a\ntimeout 10\n"), nil)
		Expect(err).ToNot(HaveOccurred())

		out, defaultIndex := bootconfig.Apply(cfg, []*entry.Config{a, b})
		Expect(out).To(HaveLen(1))
		Expect(out[0].Filename).To(Equal("b"))
		Expect(defaultIndex).To(Equal(0))
		Expect(cfg.TimeoutSecs()).To(BeEquivalentTo(10))
	})

	It("marks forced-bad entries without hiding them", func() {
		a, err := entry.NewBuilder(entry.BootEfi).Filename("a").EfiPath(`\a.efi`).FsHandle(firmware.NewHandle()).Build()
		Expect(err).ToNot(HaveOccurred())
		cfg := &bootconfig.BootConfig{Bad: []string{"a"}}

		out, _ := bootconfig.Apply(cfg, []*entry.Config{a})
		Expect(out).To(HaveLen(1))
		Expect(out[0].Bad).To(BeTrue())
		Expect(a.Bad).To(BeFalse(), "the original Config must not be mutated")
	})

	It("appends synthetic action entries only when the editor is enabled", func() {
		cfg := &bootconfig.BootConfig{EditorEnabled: true}
		out, _ := bootconfig.Apply(cfg, nil)
		Expect(out).To(HaveLen(3))
		for _, e := range out {
			Expect(e.Action.IsSynthetic()).To(BeTrue())
		}
	})
})

var _ = Describe("SortEntries", func() {
	It("is a total, deterministic ordering (§8 item 4)", func() {
		a, err := entry.NewBuilder(entry.BootEfi).Filename("a").EfiPath(`\a.efi`).SortKey("b").FsHandle(firmware.NewHandle()).Build()
		Expect(err).ToNot(HaveOccurred())
		b, err := entry.NewBuilder(entry.BootEfi).Filename("b").EfiPath(`\b.efi`).SortKey("a").FsHandle(firmware.NewHandle()).Build()
		Expect(err).ToNot(HaveOccurred())
		entries := []*entry.Config{a, b}
		bootconfig.SortEntries(entries)
		Expect(entries[0].Filename).To(Equal("b"))
		Expect(entries[1].Filename).To(Equal("a"))
	})
})
