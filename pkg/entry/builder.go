package entry

import (
	"strings"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// sortKeyCharset is the §3 constraint: lowercase alphanumerics plus
// ".-_".
func validSortKeyChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_':
		return true
	default:
		return false
	}
}

// knownArchitectures are the short tags §3 recognizes.
var knownArchitectures = map[string]bool{
	"x64": true, "ia32": true, "aa64": true, "arm": true,
}

// Builder is the fluent, fallible constructor of §4.B. Every setter
// validates immediately and records a FieldError on failure instead of
// returning one, so a parser can set every field it has and inspect the
// aggregate result once via Build.
type Builder struct {
	cfg  Config
	errs []*bmerrors.FieldError
}

// NewBuilder starts a Builder for the given action kind; the action
// determines whether EfiPath is required and must end in ".efi"
// (synthetic and PXE entries are exempt, per §3).
func NewBuilder(action Action) *Builder {
	return &Builder{cfg: Config{Action: action}}
}

func (b *Builder) fail(field, reason string) {
	b.errs = append(b.errs, &bmerrors.FieldError{Field: field, Reason: reason})
}

// Filename sets the required, non-empty short identifier.
func (b *Builder) Filename(v string) *Builder {
	if v == "" {
		b.fail("filename", "must not be empty")
		return b
	}
	b.cfg.Filename = v
	return b
}

// EfiPath sets the absolute executable path. Required for BootEfi
// entries and must end in the case-insensitive ".efi" suffix; PXE and
// the synthetic action entries are exempt per §3.
func (b *Builder) EfiPath(v string) *Builder {
	if v == "" {
		if b.cfg.Action == BootEfi {
			b.fail("efi_path", "required for a BootEfi entry")
		}
		return b
	}
	if !strings.HasPrefix(v, `\`) && !strings.HasPrefix(v, "/") {
		b.fail("efi_path", "must be absolute")
		return b
	}
	if b.cfg.Action != BootTftp && !b.cfg.Action.IsSynthetic() {
		if !strings.HasSuffix(strings.ToLower(v), ".efi") {
			b.fail("efi_path", "must end in .efi")
			return b
		}
	}
	b.cfg.EfiPath = v
	return b
}

// Title, Version, MachineID are unconstrained display metadata.
func (b *Builder) Title(v string) *Builder     { b.cfg.Title = v; return b }
func (b *Builder) Version(v string) *Builder   { b.cfg.Version = v; return b }
func (b *Builder) MachineID(v string) *Builder { b.cfg.MachineID = v; return b }

// SortKey validates the §3 charset: lowercase alphanumerics plus ".-_".
func (b *Builder) SortKey(v string) *Builder {
	if v == "" {
		return b
	}
	for _, r := range v {
		if !validSortKeyChar(r) {
			b.fail("sort_key", "must match [a-z0-9.-_]+")
			return b
		}
	}
	b.cfg.SortKey = v
	return b
}

// Options sets the UCS-2-bound command line; validation of the encoding
// itself happens at load time (§4.H step 6), so here we only reject
// embedded NUL bytes, which would truncate the load option silently.
func (b *Builder) Options(v string) *Builder {
	if strings.ContainsRune(v, 0) {
		b.fail("options", "must not contain an embedded NUL")
		return b
	}
	b.cfg.Options = v
	return b
}

// Devicetree sets the optional absolute devicetree blob path.
func (b *Builder) Devicetree(v string) *Builder {
	if v == "" {
		return b
	}
	if !strings.HasPrefix(v, `\`) && !strings.HasPrefix(v, "/") {
		b.fail("devicetree", "must be absolute")
		return b
	}
	b.cfg.Devicetree = v
	return b
}

// Architecture validates against the known short tags; empty is
// allowed (architecture-agnostic entry).
func (b *Builder) Architecture(v string) *Builder {
	if v == "" {
		return b
	}
	if !knownArchitectures[v] {
		b.fail("architecture", "unknown architecture tag "+v)
		return b
	}
	b.cfg.Architecture = v
	return b
}

// FsHandle sets the opaque filesystem handle the entry originated from.
// A BootEfi entry may never carry the zero handle (§3 invariant).
func (b *Builder) FsHandle(h firmware.Handle) *Builder {
	b.cfg.FsHandle = h
	return b
}

// Origin records which parser produced this entry, used for the §4.C
// tie-break rule.
func (b *Builder) Origin(o Origin) *Builder {
	b.cfg.Origin = o
	return b
}

// Bad marks an entry unloadable post-discovery (§3); the UI still
// displays it with a "[BAD] " prefix (§4.I).
func (b *Builder) Bad(v bool) *Builder {
	b.cfg.Bad = v
	return b
}

// Build validates the §3 invariants that span multiple fields and
// returns either a fully valid Config or a *bmerrors.BuildError naming
// every offending field.
func (b *Builder) Build() (*Config, error) {
	errs := append([]*bmerrors.FieldError{}, b.errs...)

	if b.cfg.Filename == "" {
		errs = append(errs, &bmerrors.FieldError{Field: "filename", Reason: "must not be empty"})
	}
	if b.cfg.Action == BootEfi {
		if b.cfg.EfiPath == "" {
			errs = append(errs, &bmerrors.FieldError{Field: "efi_path", Reason: "required for a BootEfi entry"})
		}
		if b.cfg.FsHandle.IsZero() {
			errs = append(errs, &bmerrors.FieldError{Field: "fs_handle", Reason: "must not be the zero handle for a BootEfi entry"})
		}
	}

	if len(errs) > 0 {
		return nil, &bmerrors.BuildError{Fields: errs}
	}
	cfg := b.cfg
	return &cfg, nil
}
