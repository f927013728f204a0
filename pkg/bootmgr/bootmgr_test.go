package bootmgr_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v5/vfst"

	"github.com/efiboot/bootmgr-go/pkg/bootmgr"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
	"github.com/efiboot/bootmgr-go/pkg/firmware/faketest"
	"github.com/efiboot/bootmgr-go/pkg/fsfacade"
)

func TestBootMgrSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "bootmgr facade suite")
}

var _ = Describe("New", func() {
	It("discovers BLS entries, applies the overlay, and exposes a sorted list", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/loader/entries/arch.conf":  "title Arch Linux\nlinux \\vmlinuz-linux\noptions root=/dev/sda2 rw\n",
			"/loader/entries/debian.conf": "title Debian\nlinux \\vmlinuz-debian\noptions root=/dev/sda3 rw\n",
			"/loader/bootmgr-rs.conf":     "timeout 5\ndefault debian\n",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		handle := firmware.NewHandle()

		capability := faketest.Capability("x64")
		capability.Volumes = faketest.VolumeEnumerator{
			Vols: []firmware.MountedVolume{{Handle: handle, Fs: facade}},
		}

		mgr, err := bootmgr.New(capability, bootmgr.DefaultParsers, nil)
		Expect(err).ToNot(HaveOccurred())

		list := mgr.List()
		Expect(list).To(HaveLen(2))
		Expect(mgr.TimeoutSecs()).To(BeEquivalentTo(5))
		Expect(list[mgr.DefaultIndex()].Filename).To(Equal("debian"))
	})

	It("produces an empty list with zero parsers enabled (§9)", func() {
		capability := faketest.Capability("x64")
		mgr, err := bootmgr.New(capability, nil, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(mgr.List()).To(BeEmpty())
	})

	It("dispatches Load to the underlying loader", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/loader/entries/arch.conf": "title Arch Linux\nlinux \\vmlinuz-linux\noptions root=/dev/sda2 rw\n",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		facade := fsfacade.New(fs, "/", nil)
		handle := firmware.NewHandle()

		capability := faketest.Capability("x64")
		capability.Security.(*faketest.Security).Present = true
		capability.Volumes = faketest.VolumeEnumerator{
			Vols: []firmware.MountedVolume{{Handle: handle, Fs: facade}},
		}

		mgr, err := bootmgr.New(capability, bootmgr.DefaultParsers, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(mgr.List()).To(HaveLen(1))

		res, err := mgr.Load(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Image.IsZero()).To(BeFalse())
	})

	It("rejects an out-of-range Load index", func() {
		capability := faketest.Capability("x64")
		mgr, err := bootmgr.New(capability, nil, nil)
		Expect(err).ToNot(HaveOccurred())
		_, err = mgr.Load(5)
		Expect(err).To(HaveOccurred())
	})
})
