// Package fallback detects the removable-media fallback loader
// \EFI\BOOT\BOOT{X64,IA32,AA64}.efi, contributed only when no other
// parser produced an entry from the same filesystem (§4.C).
package fallback

import (
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

var archSuffix = map[string]string{
	"x64":  "X64",
	"ia32": "IA32",
	"aa64": "AA64",
}

// Parser implements parser.Parser for the fallback loader. Unlike the
// other parsers, it needs to know whether any sibling parser already
// produced an entry from this filesystem; Produce takes that count
// explicitly since the shared parser.Parser interface has no such
// parameter (see pkg/bootmgr, which calls Produce directly instead of
// through the interface for this one parser).
type Parser struct{}

func (Parser) Name() string { return "fallback" }

// Parse always returns nothing through the generic Parser interface;
// BootMgr invokes Produce directly once it knows whether this volume
// already produced entries from another parser.
func (Parser) Parse(fsys firmware.SimpleFileSystem, handle firmware.Handle, hostArch string, logger *bootlog.Logger) ([]*entry.Config, error) {
	return nil, nil
}

// Produce implements the §4.C fallback rule: only contribute an entry
// when otherEntriesOnVolume is zero.
func (Parser) Produce(fsys firmware.SimpleFileSystem, handle firmware.Handle, hostArch string, otherEntriesOnVolume int, logger *bootlog.Logger) ([]*entry.Config, error) {
	if otherEntriesOnVolume > 0 {
		return nil, nil
	}
	suffix, ok := archSuffix[hostArch]
	if !ok {
		return nil, nil
	}
	name := "BOOT" + suffix + ".efi"
	path := `\EFI\BOOT\` + name
	present, err := fsys.Exists(path)
	if err != nil || !present {
		return nil, nil
	}

	title := "Removable Media Boot"
	if csv, err := fsys.Read(`\EFI\BOOT\BOOT` + suffix + `.CSV`); err == nil {
		if label, ok := csvLabel(csv); ok {
			title = label
		}
	}

	cfg, buildErr := entry.NewBuilder(entry.BootEfi).
		Filename(strings.ToLower(strings.TrimSuffix(name, ".efi"))).
		Title(title).
		EfiPath(path).
		Architecture(hostArch).
		FsHandle(handle).
		Origin(entry.OriginFallback).
		Build()
	if buildErr != nil {
		if logger != nil {
			logger.Warnf("fallback: %s: %v", name, buildErr)
		}
		return nil, nil
	}
	return []*entry.Config{cfg}, nil
}

// csvLabel recovers the friendlier label efibootmgr-style tooling writes
// into BOOT{ARCH}.CSV alongside the fallback loader: a single line of
// null-terminated UTF-16LE, comma-separated as
// "filename,label,optional parameters,optional description". Only the
// label (second) field is used here.
func csvLabel(data []byte) (string, bool) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := dec.Bytes(data)
	if err != nil {
		return "", false
	}
	line := strings.TrimRight(string(decoded), "\x00")
	if idx := strings.IndexAny(line, "\r\n"); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return "", false
	}
	label := strings.TrimSpace(fields[1])
	if label == "" {
		return "", false
	}
	return label, true
}
