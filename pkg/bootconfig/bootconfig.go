// Package bootconfig implements §4.D: the persistent user-preference
// overlay read once from \loader\bootmgr-rs.conf and merged over the
// entries the parser set discovered. Grammar mirrors the teacher's
// line-oriented key=value readers (pkg/utils/fs and pkg/action's
// grubenv handling): '#' comments, whitespace-trimmed, unknown keys
// warn and are skipped.
package bootconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// Path is the well-known location on the ESP, per §6.
const Path = `\loader\bootmgr-rs.conf`

// BootConfig holds the §3 global preferences.
type BootConfig struct {
	Timeout      uint32
	Default      string
	EditorEnabled bool
	Hidden       []string
	Bad          []string
}

// TimeoutSecs matches the §6 core API surface's BootConfig::timeout_secs.
func (c *BootConfig) TimeoutSecs() uint32 { return c.Timeout }

// Load reads and parses Path from fsys. A missing file is non-fatal and
// yields the zero-value defaults (timeout=0, no default, editor
// disabled); any other read or parse error propagates, per §4.D and §7.
func Load(fsys firmware.SimpleFileSystem, logger *bootlog.Logger) (*BootConfig, error) {
	exists, err := fsys.Exists(Path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &BootConfig{}, nil
	}
	data, err := fsys.Read(Path)
	if err != nil {
		return nil, err
	}
	return Parse(data, logger)
}

// Parse implements the §6 grammar over raw bytes so it can be exercised
// directly by tests and by Serialize's round-trip property (§8 item 3).
func Parse(data []byte, logger *bootlog.Logger) (*BootConfig, error) {
	cfg := &BootConfig{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	seenBad := map[string]bool{}

	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if idx := strings.IndexByte(raw, '#'); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		fields := strings.SplitN(raw, " ", 2)
		key := fields[0]
		value := ""
		if len(fields) == 2 {
			value = strings.TrimSpace(fields[1])
		}

		switch key {
		case "timeout":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return nil, &bmerrors.LineError{Line: line, Key: key, Err: bmerrors.ErrBadSyntax}
			}
			cfg.Timeout = uint32(n)
		case "default":
			cfg.Default = value
		case "editor":
			b, ok := parseBool(value)
			if !ok {
				return nil, &bmerrors.LineError{Line: line, Key: key, Err: bmerrors.ErrBadSyntax}
			}
			cfg.EditorEnabled = b
		case "hidden":
			cfg.Hidden = append(cfg.Hidden, value)
		case "bad":
			cfg.Bad = append(cfg.Bad, value)
			seenBad[value] = true
		default:
			if logger != nil {
				logger.Warnf("bootconfig: line %d: unknown key %q, ignoring", line, key)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// §9 Open Question: default-vs-bad precedence is unspecified upstream.
	// We reject a file that marks the same selector both default and bad,
	// per the spec's own guidance to refuse rather than guess.
	if cfg.Default != "" && seenBad[cfg.Default] {
		return nil, &bmerrors.FieldError{Field: "default", Reason: "selector is also marked bad"}
	}

	return cfg, nil
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	default:
		return false, false
	}
}

// Serialize renders cfg back into the §6 grammar; Parse(Serialize(cfg))
// reproduces cfg for any value with valid fields (§8 item 3).
func Serialize(cfg *BootConfig) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "timeout %d\n", cfg.Timeout)
	if cfg.Default != "" {
		fmt.Fprintf(&b, "default %s\n", cfg.Default)
	}
	fmt.Fprintf(&b, "editor %t\n", cfg.EditorEnabled)
	for _, h := range cfg.Hidden {
		fmt.Fprintf(&b, "hidden %s\n", h)
	}
	for _, bad := range cfg.Bad {
		fmt.Fprintf(&b, "bad %s\n", bad)
	}
	return []byte(b.String())
}

// matches reports whether selector names cfg by filename, title, or
// sort_key, the three fields §6 documents as matchable.
func matches(cfg *entry.Config, selector string) bool {
	return selector != "" && (cfg.Filename == selector || cfg.Title == selector || cfg.SortKey == selector)
}

// Apply implements §4.D steps (a)-(d): filter hidden, mark forced-bad,
// append synthetic action entries, and report the default index. The
// input slice is never mutated in place; Apply returns a new slice.
func Apply(cfg *BootConfig, entries []*entry.Config) (out []*entry.Config, defaultIndex int) {
	out = make([]*entry.Config, 0, len(entries))
	for _, e := range entries {
		hidden := false
		for _, h := range cfg.Hidden {
			if matches(e, h) {
				hidden = true
				break
			}
		}
		if hidden {
			continue
		}
		if e.Bad {
			out = append(out, e)
			continue
		}
		forced := false
		for _, b := range cfg.Bad {
			if matches(e, b) {
				forced = true
				break
			}
		}
		if forced {
			marked := *e
			marked.Bad = true
			out = append(out, &marked)
			continue
		}
		out = append(out, e)
	}

	if cfg.EditorEnabled {
		out = append(out, syntheticActions()...)
	}

	defaultIndex = 0
	if cfg.Default != "" {
		for i, e := range out {
			if matches(e, cfg.Default) {
				defaultIndex = i
				break
			}
		}
	}
	return out, defaultIndex
}

func syntheticActions() []*entry.Config {
	actions := []struct {
		action entry.Action
		name   string
	}{
		{entry.Reboot, "reboot"},
		{entry.Shutdown, "shutdown"},
		{entry.ResetFirmware, "reset-to-firmware"},
	}
	out := make([]*entry.Config, 0, len(actions))
	for _, a := range actions {
		cfg, err := entry.NewBuilder(a.action).
			Filename(a.name).
			Title(strings.Title(strings.ReplaceAll(a.name, "-", " "))).
			Origin(entry.OriginAction).
			Build()
		if err == nil {
			out = append(out, cfg)
		}
	}
	return out
}

// SortEntries implements the §4.C tie-break rule as a deterministic,
// total comparator (§8 item 4): default match first (handled by
// defaultIndex, not ordering), then sort_key, then title, then origin
// precedence.
func SortEntries(entries []*entry.Config) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
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
	})
}
