// Package uki parses BLS type-2 Unified Kernel Images under
// \EFI\Linux\*.efi (§4.C), grounded on the teacher's PE parsing in
// pkg/uki/common.go's checkArtifactSignatureIsValid, which opens the
// same saferwall/pe.File to compute an authentihash.
package uki

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	peparser "github.com/saferwall/pe"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

const ukiDir = `\EFI\Linux`

// Parser implements parser.Parser for UKI PE binaries.
type Parser struct{}

func (Parser) Name() string { return "uki" }

func (Parser) Parse(fsys firmware.SimpleFileSystem, handle firmware.Handle, hostArch string, logger *bootlog.Logger) ([]*entry.Config, error) {
	dirEntries, err := fsys.ReadDir(ukiDir)
	if err != nil {
		return nil, nil
	}

	var names []string
	for _, d := range dirEntries {
		if d.IsDir || !strings.HasSuffix(strings.ToLower(d.Name), ".efi") {
			continue
		}
		names = append(names, d.Name)
	}
	sort.Strings(names)

	var out []*entry.Config
	var diags error

	for _, name := range names {
		path := ukiDir + `\` + name
		data, err := fsys.Read(path)
		if err != nil {
			diags = multierror.Append(diags, err)
			if logger != nil {
				logger.Warnf("uki: %s: %v", name, err)
			}
			continue
		}

		osrel, cmdline, uname, parseErr := sections(data)
		if parseErr != nil {
			diags = multierror.Append(diags, &bmerrors.LineError{Key: name, Err: parseErr})
			if logger != nil {
				logger.Warnf("uki: %s: %v", name, parseErr)
			}
			continue
		}

		rel := parseOSRelease(osrel)
		title := rel["PRETTY_NAME"]
		if title == "" {
			title = rel["NAME"]
		}
		version := rel["VERSION_ID"]
		if version == "" {
			version = normalizeUname(uname)
		}

		cfg, buildErr := entry.NewBuilder(entry.BootEfi).
			Filename(strings.TrimSuffix(name, ".efi")).
			Title(title).
			Version(version).
			EfiPath(path).
			Options(normalizeCmdline(cmdline)).
			FsHandle(handle).
			Origin(entry.OriginUKI).
			Build()
		if buildErr != nil {
			diags = multierror.Append(diags, &bmerrors.LineError{Key: name, Err: buildErr})
			if logger != nil {
				logger.Warnf("uki: %s: %v", name, buildErr)
			}
			continue
		}
		out = append(out, cfg)
	}

	return out, diags
}

// sections opens data as a PE image and extracts the raw bytes of its
// .osrel, .cmdline, and .uname sections, the UKI-defined sections §4.C
// and the GLOSSARY describe. .uname carries the kernel release string
// and is used as a Version fallback when .osrel has no VERSION_ID.
func sections(data []byte) (osrel, cmdline, uname []byte, err error) {
	file, err := peparser.NewBytes(data, &peparser.Options{Fast: true})
	if err != nil {
		return nil, nil, nil, bmerrors.ErrBadSyntax
	}
	if err := file.Parse(); err != nil {
		return nil, nil, nil, bmerrors.ErrBadSyntax
	}
	if file.DOSHeader.Magic != peparser.ImageDOSZMSignature && file.DOSHeader.Magic != peparser.ImageDOSSignature {
		return nil, nil, nil, bmerrors.ErrBadSyntax
	}

	for i := range file.Sections {
		sec := &file.Sections[i]
		name := strings.TrimRight(string(sec.Header.Name[:]), "\x00")
		switch name {
		case ".osrel":
			osrel = sec.Data(0, sec.Header.SizeOfRawData, file)
		case ".cmdline":
			cmdline = sec.Data(0, sec.Header.SizeOfRawData, file)
		case ".uname":
			uname = sec.Data(0, sec.Header.SizeOfRawData, file)
		}
	}
	return osrel, cmdline, uname, nil
}

// normalizeUname trims the .uname section's trailing NUL padding and any
// surrounding whitespace, leaving the bare kernel release string (e.g.
// "6.9.0-kairos").
func normalizeUname(data []byte) string {
	return strings.TrimSpace(strings.TrimRight(string(data), "\x00"))
}

// parseOSRelease implements the freedesktop os-release grammar: KEY=VALUE
// lines, values optionally double-quoted, '#' comments.
func parseOSRelease(data []byte) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\x00")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := line[:eq]
		value := strings.Trim(line[eq+1:], `"`)
		out[key] = value
	}
	return out
}

// normalizeCmdline collapses the whitespace-delimited tokens of .cmdline
// into a single space-separated string, trimming the section's trailing
// NUL padding.
func normalizeCmdline(data []byte) string {
	trimmed := strings.TrimRight(string(data), "\x00")
	fields := strings.Fields(trimmed)
	return strings.Join(fields, " ")
}
