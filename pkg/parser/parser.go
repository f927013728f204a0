// Package parser defines the shared Parser capability of §4.C: one
// method per format that appends zero or more Config records to a
// shared slice. Each concrete parser lives in its own subpackage
// (bls1, uki, bcd, macos, shell, fallback, pxe) so a build can select a
// subset by import, mirroring §9's "feature flags" note — a Go build
// simply omits the import instead of a compile-time flag.
package parser

import (
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// Parser is the capability every concrete format parser implements
// (§9: "each parser is a value implementing the same capability
// {detect, produce}").
type Parser interface {
	// Name identifies the parser for diagnostics.
	Name() string
	// Parse walks fsys (rooted at one discovered volume identified by
	// handle) and returns the Configs it finds. It must never panic and
	// must return a possibly-empty slice instead of erroring on a
	// malformed individual record (§4.C, §8 item 2); non-fatal per-record
	// diagnostics are returned as the second value using
	// hashicorp/go-multierror so callers can log without losing the
	// Configs that did parse.
	Parse(fsys firmware.SimpleFileSystem, handle firmware.Handle, hostArch string, logger *bootlog.Logger) ([]*entry.Config, error)
}

// Set is the static, build-time-known list of enabled parsers. BootMgr
// iterates this in order; order does not affect correctness (the §4.C
// tie-break rule is applied afterward) but does affect diagnostic
// ordering.
type Set []Parser
