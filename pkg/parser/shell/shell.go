// Package shell detects the UEFI Shell by the presence of an
// architecture-appropriate \shell*.efi image (§4.C).
package shell

import (
	"strings"

	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// Parser implements parser.Parser for the UEFI Shell.
type Parser struct{}

func (Parser) Name() string { return "shell" }

func (Parser) Parse(fsys firmware.SimpleFileSystem, handle firmware.Handle, hostArch string, logger *bootlog.Logger) ([]*entry.Config, error) {
	name := "shell" + hostArch + ".efi"
	path := `\` + name
	present, err := fsys.Exists(path)
	if err != nil || !present {
		return nil, nil
	}

	cfg, buildErr := entry.NewBuilder(entry.BootEfi).
		Filename(strings.TrimSuffix(name, ".efi")).
		Title("UEFI Shell").
		EfiPath(path).
		Architecture(hostArch).
		FsHandle(handle).
		Origin(entry.OriginShell).
		Build()
	if buildErr != nil {
		if logger != nil {
			logger.Warnf("shell: %s: %v", name, buildErr)
		}
		return nil, nil
	}
	return []*entry.Config{cfg}, nil
}
