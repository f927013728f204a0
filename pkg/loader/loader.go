// Package loader implements §4.H: turning a validated entry.Config into
// a prepared, loaded image ready for the caller to start. It is the
// component that actually exercises firmware.Loader, secureboot.Guard,
// and devicetree.Guard together, in the resource order §5 mandates.
package loader

import (
	"golang.org/x/text/encoding/unicode"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/devicetree"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
	"github.com/efiboot/bootmgr-go/pkg/secureboot"
)

// Volume resolves a firmware.Handle to the facade that reads it, and to
// the SimpleFileSystem capability Loader needs to read a devicetree
// blob before staging it.
type Volume interface {
	firmware.SimpleFileSystem
}

// Loader is constructed once per BootMgr and holds the firmware
// capability surface plus a lookup from fs_handle to the volume that
// backs it.
type Loader struct {
	cap     firmware.Capability
	volumes map[firmware.Handle]Volume
	logger  *bootlog.Logger
}

// New builds a Loader over cap; volumes maps each discovered filesystem
// handle to the Volume that reads it (populated by BootMgr during
// discovery).
func New(cap firmware.Capability, volumes map[firmware.Handle]Volume, logger *bootlog.Logger) *Loader {
	return &Loader{cap: cap, volumes: volumes, logger: logger}
}

// Result is what a successful Load returns: the loaded image handle and,
// if the entry named a devicetree blob, the staged Guard the caller must
// release after starting (or abandoning) the image, per §5's resource
// ordering rule.
type Result struct {
	Image      firmware.ImageHandle
	Devicetree *devicetree.Guard
}

// Load implements the §4.H algorithm. Synthetic actions (Reboot,
// Shutdown, ResetFirmware) are dispatched directly to the firmware and
// return a zero Result with a nil error on success; by construction they
// do not return control to the caller on real firmware.
func (l *Loader) Load(cfg *entry.Config) (Result, error) {
	switch cfg.Action {
	case entry.Reboot:
		return Result{}, l.cap.Load.Reboot()
	case entry.Shutdown:
		return Result{}, l.cap.Load.Shutdown()
	case entry.ResetFirmware:
		return Result{}, l.cap.Load.ResetToFirmwareUI()
	case entry.BootTftp:
		return l.loadTftp(cfg)
	case entry.BootEfi:
		return l.loadEfi(cfg)
	default:
		return Result{}, bmerrors.ErrNoSuchEntry
	}
}

func (l *Loader) loadEfi(cfg *entry.Config) (Result, error) {
	dp, err := l.cap.Load.DevicePathFor(cfg.FsHandle, cfg.EfiPath)
	if err != nil {
		return Result{}, wrap(bmerrors.ErrImageLoadFailed, err)
	}

	guard, err := secureboot.Acquire(l.cap.Security)
	if err != nil {
		return Result{}, err
	}
	defer guard.Release()

	img, err := l.cap.Load.LoadImageFromPath(cfg.FsHandle, dp)
	if err != nil {
		return Result{}, wrap(bmerrors.ErrImageLoadFailed, err)
	}

	var dtGuard *devicetree.Guard
	if cfg.Devicetree != "" {
		dtGuard, err = l.stageDevicetree(cfg)
		if err != nil {
			_ = l.cap.Load.UnloadImage(img)
			return Result{}, err
		}
	}

	if cfg.Options != "" {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
		ucs2, encErr := enc.String(cfg.Options + "\x00")
		if encErr == nil {
			encErr = l.cap.Load.SetLoadOptions(img, []byte(ucs2))
		}
		if encErr != nil {
			if dtGuard != nil {
				_ = dtGuard.Release()
			}
			_ = l.cap.Load.UnloadImage(img)
			return Result{}, wrap(bmerrors.ErrSetOptionsFailed, encErr)
		}
	}

	return Result{Image: img, Devicetree: dtGuard}, nil
}

func (l *Loader) stageDevicetree(cfg *entry.Config) (*devicetree.Guard, error) {
	vol, ok := l.volumes[cfg.FsHandle]
	if !ok {
		return nil, bmerrors.ErrDTInstallFailed
	}
	blob, err := vol.Read(cfg.Devicetree)
	if err != nil {
		return nil, err
	}
	return devicetree.Install(l.cap.Table, blob, cfg.Architecture, l.cap.HostArchitecture)
}

func (l *Loader) loadTftp(cfg *entry.Config) (Result, error) {
	if l.cap.Pxe == nil || !l.cap.Pxe.Available() {
		return Result{}, bmerrors.ErrPxeUnavailable
	}

	guard, err := secureboot.Acquire(l.cap.Security)
	if err != nil {
		return Result{}, err
	}
	defer guard.Release()

	data, err := l.cap.Pxe.DownloadTFTP()
	if err != nil {
		return Result{}, wrap(bmerrors.ErrPxeUnavailable, err)
	}
	img, err := l.cap.Load.LoadImageFromBuffer(data)
	if err != nil {
		return Result{}, wrap(bmerrors.ErrImageLoadFailed, err)
	}
	return Result{Image: img}, nil
}

type wrapped struct {
	kind error
	err  error
}

func wrap(kind, err error) error { return &wrapped{kind: kind, err: err} }
func (e *wrapped) Error() string { return e.err.Error() }
func (e *wrapped) Unwrap() error { return e.kind }
