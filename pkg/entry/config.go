// Package entry implements the §3 Config record together with its
// fallible Builder (§4.B) and the field-typed ConfigEditor (§4.E).
// Parsers (pkg/parser/...) are the Builder's fuzz target: every field
// write is funneled through a validator so a malformed on-disk fragment
// can never reach a finished Config.
package entry

import "github.com/efiboot/bootmgr-go/pkg/firmware"

// Action is the dispatch kind of a Config, mirroring §3's action enum.
type Action int

const (
	BootEfi Action = iota
	BootTftp
	Reboot
	Shutdown
	ResetFirmware
)

func (a Action) String() string {
	switch a {
	case BootEfi:
		return "boot-efi"
	case BootTftp:
		return "boot-tftp"
	case Reboot:
		return "reboot"
	case Shutdown:
		return "shutdown"
	case ResetFirmware:
		return "reset-firmware"
	default:
		return "unknown"
	}
}

// IsSynthetic reports whether the action is one of BootConfig's
// synthetic entries (§4.D) that short-circuits in BootMgr.load instead
// of flowing through the Loader.
func (a Action) IsSynthetic() bool {
	return a == Reboot || a == Shutdown || a == ResetFirmware
}

// Origin tags which parser produced a Config (§3, §4.C).
type Origin string

const (
	OriginBLS      Origin = "bls"
	OriginUKI      Origin = "uki"
	OriginWindows  Origin = "windows"
	OriginMacOS    Origin = "macos"
	OriginShell    Origin = "shell"
	OriginFallback Origin = "fallback"
	OriginPXE      Origin = "pxe"
	OriginAction   Origin = "action"
)

// precedence implements §4.C tie-break rule 4: BLS > UKI > Windows >
// macOS > Shell > Fallback. Lower value wins. PXE and synthetic action
// entries never collide with filesystem-discovered entries so they are
// not ranked.
var precedence = map[Origin]int{
	OriginBLS:      0,
	OriginUKI:      1,
	OriginWindows:  2,
	OriginMacOS:    3,
	OriginShell:    4,
	OriginFallback: 5,
}

// Precedence returns the origin's tie-break rank; unranked origins sort
// last.
func (o Origin) Precedence() int {
	if p, ok := precedence[o]; ok {
		return p
	}
	return len(precedence)
}

// Config is one boot entry (§3). It is never mutated in place after
// construction; ConfigEditor.Commit produces a new value instead.
type Config struct {
	Filename     string
	EfiPath      string
	Title        string
	Version      string
	MachineID    string
	SortKey      string
	Options      string
	Devicetree   string
	Architecture string
	FsHandle     firmware.Handle
	Origin       Origin
	Action       Action
	Bad          bool
}

// PreferredTitle implements §4.I's get_preferred_title: Title, else
// Filename (optionally index-prefixed), else "(unknown)", with a leading
// "[BAD] " marker when Bad is set.
func (c *Config) PreferredTitle(index int, withIndex bool) string {
	base := c.Title
	if base == "" && c.Filename != "" {
		base = c.Filename
		if withIndex {
			base = indexPrefix(index) + base
		}
	}
	if base == "" {
		base = "(unknown)"
	}
	if c.Bad {
		base = "[BAD] " + base
	}
	return base
}

func indexPrefix(i int) string {
	digits := "0123456789"
	if i < 10 {
		return string(digits[i]) + ": "
	}
	// Two-digit indices are rare (discovery is bounded by mounted
	// volumes x parsers) but handled without panicking.
	s := []byte{}
	for n := i; n > 0; n /= 10 {
		s = append([]byte{digits[n%10]}, s...)
	}
	return string(s) + ": "
}
