// Package macos detects a macOS installation by the presence of its
// well-known boot loader path (§4.C).
package macos

import (
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

const bootEfi = `\System\Library\CoreServices\boot.efi`

// Parser implements parser.Parser for macOS installations.
type Parser struct{}

func (Parser) Name() string { return "macos" }

func (Parser) Parse(fsys firmware.SimpleFileSystem, handle firmware.Handle, hostArch string, logger *bootlog.Logger) ([]*entry.Config, error) {
	present, err := fsys.Exists(bootEfi)
	if err != nil || !present {
		return nil, nil
	}
	cfg, buildErr := entry.NewBuilder(entry.BootEfi).
		Filename("macos").
		Title("macOS").
		EfiPath(bootEfi).
		FsHandle(handle).
		Origin(entry.OriginMacOS).
		Build()
	if buildErr != nil {
		return nil, buildErr
	}
	return []*entry.Config{cfg}, nil
}
