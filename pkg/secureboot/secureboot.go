// Package secureboot implements §4.F: the scoped override that hands
// image-signature verification to Shim for the duration of a single
// LoadImage call. Grounded on the teacher's checkArtifactSignatureIsValid
// (pkg/uki/common.go), which is the only place in the teacher that
// inspects Shim/firmware signature state via github.com/foxboron/go-uefi.
package secureboot

import (
	"sync"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// processState is the §5 "process-wide single-cell flag" gating
// re-entrant acquisition; its only transitions are
// {uninstalled -> installed -> uninstalled}.
var processState struct {
	mu        sync.Mutex
	installed bool
}

// Guard is a SecurityOverrideGuard (§3). Acquire installs Shim's
// override; Release restores the firmware's original handlers. At most
// one Guard may be installed process-wide at a time.
type Guard struct {
	sec      firmware.SecurityArch
	noop     bool
	released bool
}

// Acquire installs the override, or returns a no-op Guard if Shim is
// absent (§4.F, §7: ShimAbsent is silently absorbed here). Acquiring
// when a Guard is already installed fails with ErrAlreadyInstalled.
func Acquire(sec firmware.SecurityArch) (*Guard, error) {
	processState.mu.Lock()
	defer processState.mu.Unlock()

	if processState.installed {
		return nil, bmerrors.ErrAlreadyInstalled
	}
	if sec == nil || !sec.ShimPresent() {
		return &Guard{noop: true}, nil
	}

	installed, err := sec.InstallShimOverride()
	if err != nil {
		return nil, &wrapErr{kind: bmerrors.ErrInstallFailed, err: err}
	}
	if !installed {
		return &Guard{sec: sec, noop: true}, nil
	}

	processState.installed = true
	return &Guard{sec: sec}, nil
}

// Release restores the original handlers. Releasing a no-op Guard, or
// an already-released Guard, is a harmless no-op so callers can defer
// Release unconditionally.
func (g *Guard) Release() error {
	if g == nil || g.noop || g.released {
		return nil
	}
	processState.mu.Lock()
	defer processState.mu.Unlock()

	if err := g.sec.UninstallOverride(); err != nil {
		return &wrapErr{kind: bmerrors.ErrUninstallFailed, err: err}
	}
	g.released = true
	processState.installed = false
	return nil
}

type wrapErr struct {
	kind error
	err  error
}

func (e *wrapErr) Error() string { return e.err.Error() }
func (e *wrapErr) Unwrap() error { return e.kind }
