// Package pxe emits a synthetic BootTftp entry when the active boot
// handle exposes the firmware's PXE base-code protocol (§4.C). Unlike
// the other parsers it does not read a filesystem at all; it is driven
// directly by the firmware.PxeBaseCode capability.
package pxe

import (
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// Produce returns a single BootTftp Config when pxe reports itself
// available, tagging the entry with the firmware's reported network
// boot architecture so the usual architecture-match invariant still
// applies to it uniformly with every other origin.
func Produce(pxe firmware.PxeBaseCode, logger *bootlog.Logger) ([]*entry.Config, error) {
	if pxe == nil || !pxe.Available() {
		return nil, nil
	}

	cfg, buildErr := entry.NewBuilder(entry.BootTftp).
		Filename("pxe").
		Title("Network Boot (PXE)").
		Architecture(pxe.Architecture()).
		Origin(entry.OriginPXE).
		Build()
	if buildErr != nil {
		if logger != nil {
			logger.Warnf("pxe: %v", buildErr)
		}
		return nil, nil
	}
	return []*entry.Config{cfg}, nil
}
