// Package bcd detects a Windows installation by locating its boot
// manager executable (§4.C). No registry-hive library appears anywhere
// in the retrieval pack, and the BCD hive format has no documented
// public layout to parse its object/element tree against, so this
// parser does not attempt to read the hive at all: the title is always
// the well-known default object's description, "Windows Boot Manager".
// See DESIGN.md for the stdlib justification.
package bcd

import (
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

const (
	bootmgfw = `\EFI\Microsoft\Boot\bootmgfw.efi`
	title    = "Windows Boot Manager"
)

// Parser implements parser.Parser for Windows installations.
type Parser struct{}

func (Parser) Name() string { return "bcd" }

func (Parser) Parse(fsys firmware.SimpleFileSystem, handle firmware.Handle, hostArch string, logger *bootlog.Logger) ([]*entry.Config, error) {
	present, err := fsys.Exists(bootmgfw)
	if err != nil || !present {
		return nil, nil
	}

	cfg, buildErr := entry.NewBuilder(entry.BootEfi).
		Filename("bootmgfw").
		Title(title).
		EfiPath(bootmgfw).
		FsHandle(handle).
		Origin(entry.OriginWindows).
		Build()
	if buildErr != nil {
		return nil, buildErr
	}
	return []*entry.Config{cfg}, nil
}
