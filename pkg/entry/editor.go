package entry

import (
	"strings"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
)

// ConfigEditor implements §4.E: a field-typed editor seeded from an
// existing Config that never mutates its source. Each SetField call
// validates immediately, exactly like Builder; a rejected value leaves
// the working copy unchanged, and Commit produces a fresh Config value
// from the working copy.
type ConfigEditor struct {
	base Config
	next Config
}

// NewConfigEditor starts an edit session against cfg. cfg itself is
// never modified.
func NewConfigEditor(cfg Config) *ConfigEditor {
	return &ConfigEditor{base: cfg, next: cfg}
}

// SetField validates and applies a single named field against the
// editor's working copy. The field names match the Builder's, lowercase
// snake_case, so diagnostics (e.g. from bootmgrctl) can reuse the same
// vocabulary as BuildError.
func (e *ConfigEditor) SetField(name, value string) error {
	switch name {
	case "title":
		e.next.Title = value
	case "version":
		e.next.Version = value
	case "machine_id":
		e.next.MachineID = value
	case "sort_key":
		if value != "" {
			for _, r := range value {
				if !validSortKeyChar(r) {
					return &bmerrors.FieldError{Field: "sort_key", Reason: "must match [a-z0-9.-_]+"}
				}
			}
		}
		e.next.SortKey = value
	case "options":
		if strings.ContainsRune(value, 0) {
			return &bmerrors.FieldError{Field: "options", Reason: "must not contain an embedded NUL"}
		}
		e.next.Options = value
	case "efi_path":
		if value != "" {
			if !strings.HasPrefix(value, `\`) && !strings.HasPrefix(value, "/") {
				return &bmerrors.FieldError{Field: "efi_path", Reason: "must be absolute"}
			}
			if e.next.Action != BootTftp && !e.next.Action.IsSynthetic() &&
				!strings.HasSuffix(strings.ToLower(value), ".efi") {
				return &bmerrors.FieldError{Field: "efi_path", Reason: "must end in .efi"}
			}
		} else if e.next.Action == BootEfi {
			return &bmerrors.FieldError{Field: "efi_path", Reason: "required for a BootEfi entry"}
		}
		e.next.EfiPath = value
	case "devicetree":
		if value != "" && !strings.HasPrefix(value, `\`) && !strings.HasPrefix(value, "/") {
			return &bmerrors.FieldError{Field: "devicetree", Reason: "must be absolute"}
		}
		e.next.Devicetree = value
	case "architecture":
		if value != "" && !knownArchitectures[value] {
			return &bmerrors.FieldError{Field: "architecture", Reason: "unknown architecture tag " + value}
		}
		e.next.Architecture = value
	case "bad":
		e.next.Bad = value == "true" || value == "1" || value == "yes"
	default:
		return &bmerrors.FieldError{Field: name, Reason: "unknown editable field"}
	}
	return nil
}

// Commit returns the edited Config as a new value, leaving the original
// passed to NewConfigEditor untouched. Filename, FsHandle, and Origin are
// identity fields and are never editable (§4.E: the editor mutates
// presentation and boot-relevant fields, not provenance).
func (e *ConfigEditor) Commit() (*Config, error) {
	if e.next.Filename == "" {
		return nil, &bmerrors.FieldError{Field: "filename", Reason: "must not be empty"}
	}
	out := e.next
	return &out, nil
}

// Reset discards any pending SetField calls.
func (e *ConfigEditor) Reset() {
	e.next = e.base
}
