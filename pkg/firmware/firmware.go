// Package firmware defines the narrow capability surface (§6 of the design
// spec) the core consumes from the firmware: simple filesystem access,
// NVRAM variable storage, image loading, and the EFI configuration table.
// Everything in this package is an interface; pkg/firmware/hostfw supplies
// the implementation that talks to a real UEFI-capable host over
// efivarfs, and pkg/firmware/faketest supplies an in-memory double used by
// every other package's test suite.
package firmware

import "github.com/google/uuid"

// Handle identifies a filesystem volume the firmware enumerated for us.
// It is opaque to callers, exactly as Config.fs_handle is opaque in §3.
type Handle struct {
	id uuid.UUID
}

// NewHandle creates a fresh, unique filesystem handle. Discovery (§4.I)
// calls this once per simple-filesystem protocol instance it finds.
func NewHandle() Handle { return Handle{id: uuid.New()} }

func (h Handle) String() string { return h.id.String() }

// IsZero reports whether h is the zero Handle, used to enforce the §3
// invariant that a Config never mixes BootEfi with a null fs_handle.
func (h Handle) IsZero() bool { return h.id == uuid.Nil }

// DirEntry is a single entry returned by SimpleFileSystem.ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
}

// SimpleFileSystem is the per-volume capability of §4.A: uniform
// read/exists/read-dir over one mounted filesystem. Paths are
// firmware-style absolute strings such as `\loader\entries`; the
// implementation in pkg/fsfacade accepts either '\' or '/' as separator
// and maps them onto the mounted volume.
type SimpleFileSystem interface {
	Exists(path string) (bool, error)
	Read(path string) ([]byte, error)
	ReadInto(path string, buf []byte) (int, error)
	ReadDir(path string) ([]DirEntry, error)
}

// VariableStore is the NVRAM capability used by the host Security
// implementation (to probe for Shim) and by the host Loader's one-shot
// boot selection. GUID is a stringified EFI GUID.
type VariableStore interface {
	GetVariable(guid, name string) (data []byte, attrs uint32, err error)
	SetVariable(guid, name string, data []byte, attrs uint32) error
}

// DevicePath is the firmware-native, tagged binary representation of a
// file or device location (GLOSSARY). It is produced by Loader.DevicePathFor
// and consumed only by LoadImageFromPath.
type DevicePath []byte

// ImageHandle is the opaque handle LoadImage hands back; BootMgr.load
// returns it to the caller, who is responsible for starting it (§1).
type ImageHandle struct {
	id uuid.UUID
}

func NewImageHandle() ImageHandle    { return ImageHandle{id: uuid.New()} }
func (h ImageHandle) String() string { return h.id.String() }

// IsZero reports whether h is the zero ImageHandle, the value a
// synthetic action's Result carries since it never loads an image.
func (h ImageHandle) IsZero() bool { return h.id == uuid.Nil }

// Loader is the image-load capability of §4.H. Reboot/Shutdown/
// ResetToFirmwareUI never return on real firmware; here they return an
// error only to report that the underlying call itself failed to be
// issued (e.g. the host capability is unavailable), not that it was
// "unsuccessful" in a resumable sense.
type Loader interface {
	DevicePathFor(fsHandle Handle, efiPath string) (DevicePath, error)
	LoadImageFromPath(fsHandle Handle, dp DevicePath) (ImageHandle, error)
	LoadImageFromBuffer(data []byte) (ImageHandle, error)
	SetLoadOptions(h ImageHandle, ucs2Options []byte) error
	UnloadImage(h ImageHandle) error

	Reboot() error
	Shutdown() error
	ResetToFirmwareUI() error
}

// ConfigTable is the EFI configuration table capability used by the
// Devicetree Guard (§4.G) to install/remove the FDT blob under the
// devicetree GUID.
type ConfigTable interface {
	InstallDevicetree(blob []byte) error
	UninstallDevicetree() error
}

// PxeBaseCode is the capability surface for the PXE parser/Loader's
// BootTftp action (§4.C, §4.H step 7).
type PxeBaseCode interface {
	Available() bool
	Architecture() string
	DownloadTFTP() ([]byte, error)
}

// SecurityArch is the firmware's SECURITY_ARCH/SECURITY2_ARCH protocol
// surface the Security Override (§4.F) saves and replaces.
type SecurityArch interface {
	InstallShimOverride() (installed bool, err error)
	UninstallOverride() error
	// ShimPresent reports whether a Shim-provided verification protocol
	// was found; when false InstallShimOverride is a documented no-op.
	ShimPresent() bool
}

// MountedVolume pairs a discovered filesystem handle with the facade
// that reads it, the shape BootMgr.New's discovery step needs for each
// handle it enumerates (§4.I: "enumerate handles supporting
// simple-filesystem, wrap each in a Facade").
type MountedVolume struct {
	Handle Handle
	Fs     SimpleFileSystem
}

// VolumeEnumerator is the discovery-time capability that lists every
// handle exposing the simple-filesystem protocol. On a real host this
// corresponds to walking mounted filesystems visible to the process
// (e.g. the ESP and any other FAT volumes); see pkg/firmware/hostfw.
type VolumeEnumerator interface {
	Volumes() ([]MountedVolume, error)
}

// Capability bundles the full surface BootMgr needs, one instance per
// process (§5: the runtime is single-threaded cooperative UEFI boot
// services, so there is exactly one of everything here).
type Capability struct {
	Variables VariableStore
	Load      Loader
	Table     ConfigTable
	Security  SecurityArch
	Pxe       PxeBaseCode
	Volumes   VolumeEnumerator

	// HostArchitecture is the short tag (x64, ia32, aa64, arm) of the
	// running firmware, used to discard architecture-mismatched entries.
	HostArchitecture string
}
