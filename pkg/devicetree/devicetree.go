// Package devicetree implements §4.G: validating and staging a
// flattened devicetree (FDT) blob into the EFI configuration table.
// FDT header layout follows the standard devicetree specification; no
// example repo in the retrieval pack parses FDT, so the header check
// here is hand-rolled against the public format rather than grounded
// on an existing parser (see DESIGN.md).
package devicetree

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// fdtMagic is the devicetree blob's big-endian magic number.
const fdtMagic = 0xd00dfeed

// fdtHeaderSize is the size of the fixed devicetree header fields we
// validate: magic, totalsize (the two fields that matter for §4.G's
// "magic and total-size header" check).
const fdtHeaderSize = 8

// GUID identifies the devicetree entry in the EFI configuration table,
// matching the well-known DTB configuration table GUID.
var GUID = uuid.MustParse("b1b621d5-f19c-41a5-830b-d9152c69aae0")

// Guard is a DevicetreeGuard (§3): owns the staged blob and its
// installation in the configuration table until Release.
type Guard struct {
	table     firmware.ConfigTable
	installed bool
}

// Install validates blob's FDT header and architecture tag against
// hostArch, then installs it via table. A mismatched architecture fails
// with ArchMismatch and never touches the configuration table (§8 item
// 6).
func Install(table firmware.ConfigTable, blob []byte, blobArch, hostArch string) (*Guard, error) {
	if len(blob) < fdtHeaderSize {
		return nil, bmerrors.ErrTruncatedHeader
	}
	magic := binary.BigEndian.Uint32(blob[0:4])
	if magic != fdtMagic {
		return nil, bmerrors.ErrBadMagic
	}
	totalSize := binary.BigEndian.Uint32(blob[4:8])
	if int(totalSize) > len(blob) {
		return nil, bmerrors.ErrTruncatedHeader
	}
	if blobArch != "" && blobArch != hostArch {
		return nil, bmerrors.ErrDTArchMismatch
	}

	if err := table.InstallDevicetree(blob[:totalSize]); err != nil {
		return nil, &wrapErr{err: err}
	}
	return &Guard{table: table, installed: true}, nil
}

// Release removes the table entry and frees the guard's hold on it.
func (g *Guard) Release() error {
	if g == nil || !g.installed {
		return nil
	}
	if err := g.table.UninstallDevicetree(); err != nil {
		return &wrapErr{err: err}
	}
	g.installed = false
	return nil
}

type wrapErr struct{ err error }

func (e *wrapErr) Error() string { return e.err.Error() }
func (e *wrapErr) Unwrap() error { return bmerrors.ErrDTInstallFailed }
