// Loader and ConfigTable have no literal host-userspace analogue —
// LoadImage and the EFI configuration table belong to boot services,
// which this process is not running under. This implementation performs
// the host-visible side effects available at this layer instead: it
// records the selection as the LoaderEntryOneShot/BootNext-style
// variables the teacher's WriteOneShotEfiVar writes, and leaves actually
// starting the image to the caller per §1. LoadImageFromBuffer and the
// configuration table are modeled as staging files under a scratch
// directory since no configuration-table access exists from userspace
// either; Pxe always reports itself unavailable and DownloadTFTP returns
// ErrPxeUnavailable. See DESIGN.md.
package hostfw

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/foxboron/go-uefi/efi/attributes"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

const loaderEntryOneShotGUID = "4a67b082-0a4c-41cf-b6c7-440b29bb8c4f"

// Loader implements firmware.Loader by recording the one-shot boot
// selection in NVRAM; see the package doc for why it cannot literally
// invoke LoadImage.
type Loader struct {
	variables *Variables
	scratch   string
	logger    *bootlog.Logger
	options   map[firmware.ImageHandle][]byte
}

// NewLoader builds a Loader; scratch is a writable directory used to
// stand in for the buffer-backed LoadImageFromBuffer path (PXE) and the
// devicetree staging area ConfigTable uses.
func NewLoader(variables *Variables, scratch string, logger *bootlog.Logger) *Loader {
	return &Loader{variables: variables, scratch: scratch, logger: logger, options: map[firmware.ImageHandle][]byte{}}
}

func (l *Loader) DevicePathFor(fsHandle firmware.Handle, efiPath string) (firmware.DevicePath, error) {
	return firmware.DevicePath(EncodeUCS2Z(efiPath)), nil
}

func (l *Loader) LoadImageFromPath(fsHandle firmware.Handle, dp firmware.DevicePath) (firmware.ImageHandle, error) {
	attrs := attributes.EFI_VARIABLE_NON_VOLATILE | attributes.EFI_VARIABLE_BOOTSERVICE_ACCESS | attributes.EFI_VARIABLE_RUNTIME_ACCESS
	if err := l.variables.SetVariable(loaderEntryOneShotGUID, "LoaderEntryOneShot", []byte(dp), uint32(attrs)); err != nil {
		return firmware.ImageHandle{}, fmt.Errorf("%w: %v", bmerrors.ErrImageLoadFailed, err)
	}
	return firmware.NewImageHandle(), nil
}

func (l *Loader) LoadImageFromBuffer(data []byte) (firmware.ImageHandle, error) {
	if err := os.MkdirAll(l.scratch, 0755); err != nil {
		return firmware.ImageHandle{}, fmt.Errorf("%w: %v", bmerrors.ErrImageLoadFailed, err)
	}
	h := firmware.NewImageHandle()
	path := filepath.Join(l.scratch, "pxe-"+h.String()+".img")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return firmware.ImageHandle{}, fmt.Errorf("%w: %v", bmerrors.ErrImageLoadFailed, err)
	}
	return h, nil
}

func (l *Loader) SetLoadOptions(h firmware.ImageHandle, ucs2Options []byte) error {
	l.options[h] = ucs2Options
	return nil
}

func (l *Loader) UnloadImage(h firmware.ImageHandle) error {
	delete(l.options, h)
	return nil
}

func (l *Loader) Reboot() error              { return notSupported() }
func (l *Loader) Shutdown() error            { return notSupported() }
func (l *Loader) ResetToFirmwareUI() error   { return notSupported() }

func notSupported() error {
	return fmt.Errorf("hostfw: power-state transitions are not available from userspace; use systemctl/kexec at the frontend layer")
}

// ConfigTable stages a devicetree blob on disk rather than in the real
// EFI configuration table, which userspace cannot write to.
type ConfigTable struct {
	scratch string
}

func NewConfigTable(scratch string) *ConfigTable { return &ConfigTable{scratch: scratch} }

func (c *ConfigTable) path() string { return filepath.Join(c.scratch, "devicetree.dtb") }

func (c *ConfigTable) InstallDevicetree(blob []byte) error {
	if err := os.MkdirAll(c.scratch, 0755); err != nil {
		return fmt.Errorf("%w: %v", bmerrors.ErrDTInstallFailed, err)
	}
	if err := os.WriteFile(c.path(), blob, 0644); err != nil {
		return fmt.Errorf("%w: %v", bmerrors.ErrDTInstallFailed, err)
	}
	return nil
}

func (c *ConfigTable) UninstallDevicetree() error {
	if err := os.Remove(c.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", bmerrors.ErrDTInstallFailed, err)
	}
	return nil
}

// Pxe reports unavailable on every real host this library targets,
// since no userspace PXE base-code protocol access exists; a future
// implementation behind iPXE or a DHCP/TFTP client library would replace
// this (see DESIGN.md).
type Pxe struct{}

func (Pxe) Available() bool           { return false }
func (Pxe) Architecture() string      { return "" }
func (Pxe) DownloadTFTP() ([]byte, error) {
	return nil, bmerrors.ErrPxeUnavailable
}
