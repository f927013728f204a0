// Package faketest is an in-memory double of the entire pkg/firmware
// capability surface, used by every other package's test suite. This
// mirrors the teacher's own pattern of testing filesystem-touching code
// against an in-memory github.com/twpayne/go-vfs/v5/vfst.TestFS instead
// of a real OS root (pkg/uki/common_test.go, pkg/types/v1/config_test.go).
package faketest

import (
	"errors"

	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// Variables is an in-memory VariableStore.
type Variables struct {
	data map[string][]byte
	attr map[string]uint32
}

// NewVariables builds an empty in-memory variable store.
func NewVariables() *Variables {
	return &Variables{data: map[string][]byte{}, attr: map[string]uint32{}}
}

func key(guid, name string) string { return guid + "/" + name }

func (v *Variables) GetVariable(guid, name string) ([]byte, uint32, error) {
	k := key(guid, name)
	data, ok := v.data[k]
	if !ok {
		return nil, 0, errors.New("faketest: variable not found")
	}
	return data, v.attr[k], nil
}

func (v *Variables) SetVariable(guid, name string, data []byte, attrs uint32) error {
	k := key(guid, name)
	v.data[k] = append([]byte{}, data...)
	v.attr[k] = attrs
	return nil
}

// Seed preloads a variable, for tests that need one already present.
func (v *Variables) Seed(guid, name string, data []byte, attrs uint32) {
	_ = v.SetVariable(guid, name, data, attrs)
}

// Security is a scriptable SecurityArch double.
type Security struct {
	Present      bool
	InstallErr   error
	UninstallErr error
	installed    bool
}

func (s *Security) ShimPresent() bool { return s.Present }

func (s *Security) InstallShimOverride() (bool, error) {
	if !s.Present {
		return false, nil
	}
	if s.InstallErr != nil {
		return false, s.InstallErr
	}
	s.installed = true
	return true, nil
}

func (s *Security) UninstallOverride() error {
	if s.UninstallErr != nil {
		return s.UninstallErr
	}
	s.installed = false
	return nil
}

// Installed reports whether the override is currently held, for test
// assertions.
func (s *Security) Installed() bool { return s.installed }

// ConfigTable is a scriptable ConfigTable double.
type ConfigTable struct {
	Installed  bool
	Blob       []byte
	InstallErr error
}

func (c *ConfigTable) InstallDevicetree(blob []byte) error {
	if c.InstallErr != nil {
		return c.InstallErr
	}
	c.Installed = true
	c.Blob = append([]byte{}, blob...)
	return nil
}

func (c *ConfigTable) UninstallDevicetree() error {
	c.Installed = false
	c.Blob = nil
	return nil
}

// Loader is a scriptable Loader double recording every call so tests
// can assert on the §4.H algorithm's ordering.
type Loader struct {
	Calls         []string
	LoadImageErr  error
	SetOptionsErr error
	images        map[firmware.ImageHandle]bool
}

func NewLoader() *Loader { return &Loader{images: map[firmware.ImageHandle]bool{}} }

func (l *Loader) DevicePathFor(fsHandle firmware.Handle, efiPath string) (firmware.DevicePath, error) {
	l.Calls = append(l.Calls, "device_path:"+efiPath)
	return firmware.DevicePath(efiPath), nil
}

func (l *Loader) LoadImageFromPath(fsHandle firmware.Handle, dp firmware.DevicePath) (firmware.ImageHandle, error) {
	l.Calls = append(l.Calls, "load_from_path")
	if l.LoadImageErr != nil {
		return firmware.ImageHandle{}, l.LoadImageErr
	}
	h := firmware.NewImageHandle()
	l.images[h] = true
	return h, nil
}

func (l *Loader) LoadImageFromBuffer(data []byte) (firmware.ImageHandle, error) {
	l.Calls = append(l.Calls, "load_from_buffer")
	if l.LoadImageErr != nil {
		return firmware.ImageHandle{}, l.LoadImageErr
	}
	h := firmware.NewImageHandle()
	l.images[h] = true
	return h, nil
}

func (l *Loader) SetLoadOptions(h firmware.ImageHandle, ucs2Options []byte) error {
	l.Calls = append(l.Calls, "set_load_options")
	return l.SetOptionsErr
}

func (l *Loader) UnloadImage(h firmware.ImageHandle) error {
	l.Calls = append(l.Calls, "unload")
	delete(l.images, h)
	return nil
}

// ImageLoaded reports whether h is still considered loaded, for test
// assertions that an UnloadImage call actually happened on a failure path.
func (l *Loader) ImageLoaded(h firmware.ImageHandle) bool { return l.images[h] }

func (l *Loader) Reboot() error            { l.Calls = append(l.Calls, "reboot"); return nil }
func (l *Loader) Shutdown() error          { l.Calls = append(l.Calls, "shutdown"); return nil }
func (l *Loader) ResetToFirmwareUI() error { l.Calls = append(l.Calls, "reset"); return nil }

// Pxe is a scriptable PxeBaseCode double.
type Pxe struct {
	AvailableFlag bool
	Arch          string
	Data          []byte
	DownloadErr   error
}

func (p Pxe) Available() bool      { return p.AvailableFlag }
func (p Pxe) Architecture() string { return p.Arch }
func (p Pxe) DownloadTFTP() ([]byte, error) {
	if p.DownloadErr != nil {
		return nil, p.DownloadErr
	}
	return p.Data, nil
}

// VolumeEnumerator is a scriptable VolumeEnumerator double.
type VolumeEnumerator struct {
	Vols []firmware.MountedVolume
	Err  error
}

func (v VolumeEnumerator) Volumes() ([]firmware.MountedVolume, error) { return v.Vols, v.Err }

// Capability builds a full firmware.Capability wired entirely to fakes,
// for tests that exercise pkg/loader or pkg/bootmgr end to end.
func Capability(hostArch string) firmware.Capability {
	return firmware.Capability{
		Variables:        NewVariables(),
		Load:             NewLoader(),
		Table:            &ConfigTable{},
		Security:         &Security{},
		Pxe:              Pxe{},
		Volumes:          VolumeEnumerator{},
		HostArchitecture: hostArch,
	}
}
