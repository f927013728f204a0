package uki

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v5/vfst"

	"github.com/efiboot/bootmgr-go/pkg/firmware"
	"github.com/efiboot/bootmgr-go/pkg/fsfacade"
)

func TestUKISuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UKI parser suite")
}

var _ = Describe("parseOSRelease", func() {
	It("parses KEY=VALUE lines, quoted values, and comments", func() {
		data := []byte("NAME=\"Arch Linux\"\n# a comment\nPRETTY_NAME=\"Arch Linux (UKI)\"\nVERSION_ID=20260101\n")
		rel := parseOSRelease(data)
		Expect(rel["NAME"]).To(Equal("Arch Linux"))
		Expect(rel["PRETTY_NAME"]).To(Equal("Arch Linux (UKI)"))
		Expect(rel["VERSION_ID"]).To(Equal("20260101"))
	})

	It("ignores lines without an '=' and trims trailing NUL padding", func() {
		data := []byte("NAME=arch\nnotakeyvalueline\x00\x00\x00")
		rel := parseOSRelease(data)
		Expect(rel).To(HaveLen(1))
		Expect(rel["NAME"]).To(Equal("arch"))
	})
})

var _ = Describe("normalizeCmdline", func() {
	It("collapses whitespace-delimited tokens to a single-space string (§8 S3)", func() {
		data := []byte("quiet   splash\n\x00\x00")
		Expect(normalizeCmdline(data)).To(Equal("quiet splash"))
	})

	It("returns an empty string for empty input", func() {
		Expect(normalizeCmdline(nil)).To(Equal(""))
	})
})

var _ = Describe("normalizeUname", func() {
	It("trims trailing NUL padding and surrounding whitespace", func() {
		Expect(normalizeUname([]byte("6.9.0-kairos\x00\x00\x00"))).To(Equal("6.9.0-kairos"))
	})

	It("returns an empty string for empty input", func() {
		Expect(normalizeUname(nil)).To(Equal(""))
	})
})

var _ = Describe("Parse", func() {
	It("returns zero entries without panicking when \\EFI\\Linux is absent", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		entries, diags := (Parser{}).Parse(facade, firmware.NewHandle(), "x64", nil)
		Expect(entries).To(BeEmpty())
		Expect(diags).ToNot(HaveOccurred())
	})

	It("skips files that do not carry a .efi suffix", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/EFI/Linux/README.txt": "not an image",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		entries, _ := (Parser{}).Parse(facade, firmware.NewHandle(), "x64", nil)
		Expect(entries).To(BeEmpty())
	})

	It("records a diagnostic without stopping the loop when a PE image fails to parse", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/EFI/Linux/bogus.efi": "not a PE image",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		entries, diags := (Parser{}).Parse(facade, firmware.NewHandle(), "x64", nil)
		Expect(entries).To(BeEmpty())
		Expect(diags).To(HaveOccurred())
	})
})
