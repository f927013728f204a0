package hostfw

import (
	"runtime"

	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// archTags maps Go's GOARCH to the short architecture tags §3 defines.
var archTags = map[string]string{
	"amd64": "x64",
	"386":   "ia32",
	"arm64": "aa64",
	"arm":   "arm",
}

// NewCapability assembles a firmware.Capability against the real host:
// efivarfs-backed variables, /proc/mounts volume discovery, and the
// best-effort Loader/ConfigTable/Pxe implementations this package
// documents the limits of. scratch is a writable directory for the
// staging paths Loader and ConfigTable use.
func NewCapability(scratch string, logger *bootlog.Logger) firmware.Capability {
	vars := NewVariables()
	return firmware.Capability{
		Variables:        vars,
		Load:             NewLoader(vars, scratch, logger),
		Table:            NewConfigTable(scratch),
		Security:         NewSecurity(vars),
		Pxe:              Pxe{},
		Volumes:          NewMountEnumerator(logger),
		HostArchitecture: archTags[runtime.GOARCH],
	}
}
