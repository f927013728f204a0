// Package bootmgr implements §4.I: the facade that orchestrates
// discovery, exposes the normalized entry list, and dispatches load
// actions. This is the single entry point a frontend (cmd/bootmgrctl or
// otherwise) depends on.
package bootmgr

import (
	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/bootconfig"
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
	"github.com/efiboot/bootmgr-go/pkg/loader"
	"github.com/efiboot/bootmgr-go/pkg/parser"
	"github.com/efiboot/bootmgr-go/pkg/parser/bcd"
	"github.com/efiboot/bootmgr-go/pkg/parser/bls1"
	"github.com/efiboot/bootmgr-go/pkg/parser/fallback"
	"github.com/efiboot/bootmgr-go/pkg/parser/macos"
	"github.com/efiboot/bootmgr-go/pkg/parser/pxe"
	"github.com/efiboot/bootmgr-go/pkg/parser/shell"
	"github.com/efiboot/bootmgr-go/pkg/parser/uki"
)

// DefaultParsers is the static, build-time parser set (§9: "the parser
// set is closed and known at build time, selected by feature flags").
// A consumer that wants a narrower build constructs BootMgr with its
// own New call passing a smaller Set; omitting an import is Go's
// equivalent of a compile-time feature flag.
var DefaultParsers = parser.Set{
	bls1.Parser{},
	uki.Parser{},
	bcd.Parser{},
	macos.Parser{},
	shell.Parser{},
}

// BootMgr is the facade of §4.I.
type BootMgr struct {
	entries      []*entry.Config
	defaultIndex int
	timeout      uint32
	loader       *loader.Loader
	logger       *bootlog.Logger
}

// New performs discovery: enumerate volumes, run the parser set over
// each, read BootConfig, sort, and apply the overlay. A zero-length Set
// is accepted; the fallback and PXE detection run on every call
// regardless of the Set, so with no parsers the list is empty only when
// neither of those (nor BootConfig's synthetic actions) contributes.
func New(cap firmware.Capability, parsers parser.Set, logger *bootlog.Logger) (*BootMgr, error) {
	var volumes []firmware.MountedVolume
	if cap.Volumes != nil {
		v, err := cap.Volumes.Volumes()
		if err != nil {
			return nil, err
		}
		volumes = v
	}

	volumeMap := make(map[firmware.Handle]loader.Volume, len(volumes))
	var all []*entry.Config
	var bootConfig *bootconfig.BootConfig

	for _, vol := range volumes {
		volumeMap[vol.Handle] = vol.Fs

		before := len(all)
		for _, p := range parsers {
			found, _ := p.Parse(vol.Fs, vol.Handle, cap.HostArchitecture, logger)
			all = append(all, found...)
		}
		producedHere := len(all) - before

		fb, _ := (fallback.Parser{}).Produce(vol.Fs, vol.Handle, cap.HostArchitecture, producedHere, logger)
		all = append(all, fb...)

		if bootConfig == nil {
			bc, err := bootconfig.Load(vol.Fs, logger)
			if err != nil {
				return nil, err
			}
			if bc.Timeout != 0 || bc.Default != "" || bc.EditorEnabled || len(bc.Hidden) > 0 || len(bc.Bad) > 0 {
				bootConfig = bc
			}
		}
	}

	pxeEntries, _ := pxe.Produce(cap.Pxe, logger)
	for _, e := range pxeEntries {
		if e.Architecture != "" && e.Architecture != cap.HostArchitecture {
			continue
		}
		all = append(all, e)
	}

	all = dedupe(all)

	if bootConfig == nil {
		bootConfig = &bootconfig.BootConfig{}
	}

	bootconfig.SortEntries(all)
	overlaid, defaultIndex := bootconfig.Apply(bootConfig, all)

	ld := loader.New(cap, volumeMap, logger)

	return &BootMgr{
		entries:      overlaid,
		defaultIndex: defaultIndex,
		timeout:      bootConfig.Timeout,
		loader:       ld,
		logger:       logger,
	}, nil
}

// dedupe applies the §4.C tie-break ordering for duplicates: smaller
// sort_key wins, then title, then origin precedence (the `default`
// match tie-break is applied afterward by bootconfig.Apply, which
// operates on filename/title/sort_key directly rather than needing a
// second pass here).
func dedupe(entries []*entry.Config) []*entry.Config {
	seen := map[string]*entry.Config{}
	var order []string
	for _, e := range entries {
		key := e.Filename
		existing, ok := seen[key]
		if !ok {
			seen[key] = e
			order = append(order, key)
			continue
		}
		if better(e, existing) {
			seen[key] = e
		}
	}
	out := make([]*entry.Config, 0, len(order))
	for _, k := range order {
		out = append(out, seen[k])
	}
	return out
}

func better(a, b *entry.Config) bool {
	if a.SortKey != b.SortKey {
		if a.SortKey == "" {
			return false
		}
		if b.SortKey == "" {
			return true
		}
		return a.SortKey < b.SortKey
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.Origin.Precedence() < b.Origin.Precedence()
}

// List returns a read-only view of the discovered, overlaid entries.
func (b *BootMgr) List() []*entry.Config {
	out := make([]*entry.Config, len(b.entries))
	copy(out, b.entries)
	return out
}

// DefaultIndex returns the index BootConfig's `default` selector
// resolved to, or 0 if unset/unmatched.
func (b *BootMgr) DefaultIndex() int { return b.defaultIndex }

// TimeoutSecs returns BootConfig.timeout_secs.
func (b *BootMgr) TimeoutSecs() uint32 { return b.timeout }

// Load dispatches index idx to the Loader.
func (b *BootMgr) Load(idx int) (loader.Result, error) {
	if idx < 0 || idx >= len(b.entries) {
		return loader.Result{}, bmerrors.ErrNoSuchEntry
	}
	return b.loader.Load(b.entries[idx])
}

// GetPreferredTitle implements §4.I's get_preferred_title for the entry
// at idx.
func (b *BootMgr) GetPreferredTitle(idx int) string {
	if idx < 0 || idx >= len(b.entries) {
		return "(unknown)"
	}
	return b.entries[idx].PreferredTitle(idx, true)
}

