// Package bls1 parses Boot Loader Specification type-1 fragment files
// under \loader\entries\*.conf (§4.C), grounded on the teacher's
// line-oriented config readers in pkg/utils/fs and pkg/action.
package bls1

import (
	"bufio"
	"bytes"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/entry"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

const entriesDir = `\loader\entries`

// Parser implements parser.Parser for BLS type-1 fragments.
type Parser struct{}

func (Parser) Name() string { return "bls1" }

// fragment accumulates the raw key/value lines of one .conf file before
// it is handed to the Builder; multi-valued keys (initrd, options)
// concatenate per §4.C.
type fragment struct {
	title, version, machineID, sortKey string
	linux, efi, devicetree, arch       string
	initrds                           []string
	optionsParts                      []string
}

func (Parser) Parse(fsys firmware.SimpleFileSystem, handle firmware.Handle, hostArch string, logger *bootlog.Logger) ([]*entry.Config, error) {
	dirEntries, err := fsys.ReadDir(entriesDir)
	if err != nil {
		// A missing \loader\entries directory is not an error for the
		// filesystem as a whole — this parser simply contributes nothing.
		return nil, nil
	}

	var names []string
	for _, d := range dirEntries {
		if d.IsDir || !strings.HasSuffix(strings.ToLower(d.Name), ".conf") {
			continue
		}
		names = append(names, d.Name)
	}
	sort.Strings(names)

	var out []*entry.Config
	var diags error

	for _, name := range names {
		data, err := fsys.Read(entriesDir + `\` + name)
		if err != nil {
			diags = multierror.Append(diags, err)
			if logger != nil {
				logger.Warnf("bls1: %s: %v", name, err)
			}
			continue
		}
		frag, parseErr := parseFragment(data)
		if parseErr != nil {
			diags = multierror.Append(diags, &bmerrors.LineError{Key: name, Err: parseErr})
			if logger != nil {
				logger.Warnf("bls1: %s: %v", name, parseErr)
			}
			continue
		}
		if frag.arch != "" && frag.arch != hostArch {
			// §3: architecture mismatch discards the entry entirely.
			continue
		}

		b := entry.NewBuilder(entry.BootEfi).
			Filename(strings.TrimSuffix(name, ".conf")).
			Title(frag.title).
			Version(frag.version).
			MachineID(frag.machineID).
			SortKey(frag.sortKey).
			Devicetree(frag.devicetree).
			Architecture(frag.arch).
			FsHandle(handle).
			Origin(entry.OriginBLS)

		options := strings.Join(frag.optionsParts, " ")
		if frag.linux != "" {
			b = b.EfiPath(frag.linux)
			parts := make([]string, 0, len(frag.initrds)+1)
			for _, initrd := range frag.initrds {
				parts = append(parts, "initrd="+initrd)
			}
			if options != "" {
				parts = append(parts, options)
			}
			options = strings.Join(parts, " ")
		} else {
			b = b.EfiPath(frag.efi)
		}
		b = b.Options(options)

		cfg, buildErr := b.Build()
		if buildErr != nil {
			diags = multierror.Append(diags, &bmerrors.LineError{Key: name, Err: buildErr})
			if logger != nil {
				logger.Warnf("bls1: %s: %v", name, buildErr)
			}
			continue
		}
		out = append(out, cfg)
	}

	return out, diags
}

// parseFragment implements the §4.C key=value grammar for one BLS
// fragment. linux/efi are mutually exclusive; unknown keys are ignored.
func parseFragment(data []byte) (*fragment, error) {
	f := &fragment{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		key := fields[0]
		value := ""
		if len(fields) == 2 {
			value = strings.TrimSpace(fields[1])
		}
		switch key {
		case "title":
			f.title = value
		case "version":
			f.version = value
		case "machine-id":
			f.machineID = value
		case "sort-key":
			f.sortKey = value
		case "linux":
			f.linux = value
		case "efi":
			f.efi = value
		case "initrd":
			f.initrds = append(f.initrds, value)
		case "options":
			f.optionsParts = append(f.optionsParts, value)
		case "devicetree":
			f.devicetree = value
		case "architecture":
			f.arch = value
		default:
			// Unknown keys are ignored per §4.C.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if f.linux != "" && f.efi != "" {
		return nil, bmerrors.ErrBadSyntax
	}
	if f.linux == "" && f.efi == "" {
		return nil, bmerrors.ErrMissingRequired
	}
	return f, nil
}
