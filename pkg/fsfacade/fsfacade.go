// Package fsfacade implements the §4.A Filesystem Facade: a uniform
// read/exists/read-dir view over one mounted simple filesystem, including
// UCS-2 path handling, grounded on the teacher's pkg/utils/fs helpers and
// its mmap-based large-file read path in pkg/uki/common.go.
package fsfacade

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/twpayne/go-vfs/v5"
	"golang.org/x/text/encoding/unicode"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
)

// MaxReadBytes bounds a single Read/ReadInto call, matching §4.A's "reads
// are capped at one gigabyte to avoid pathological allocations".
const MaxReadBytes = 1 << 30

// Facade wraps one mounted volume's root. root is a path inside fsys,
// '/'-separated regardless of host OS, matching the teacher's use of
// twpayne/go-vfs so the same facade runs against a real OS root or an
// in-memory vfst.TestFS fixture.
type Facade struct {
	fsys   vfs.FS
	root   string
	logger *bootlog.Logger
}

// New builds a Facade rooted at root within fsys.
func New(fsys vfs.FS, root string, logger *bootlog.Logger) *Facade {
	return &Facade{fsys: fsys, root: root, logger: logger}
}

// NativePath converts a firmware-style '\'-separated absolute path (as
// used throughout §4.C and §6, e.g. `\loader\entries`) into the facade's
// native '/'-separated join against its root. Accepts either separator on
// input so callers can pass literal spec paths directly.
func (f *Facade) NativePath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	return filepath.Join(f.root, filepath.FromSlash(path))
}

// UCS2Path encodes a firmware-style path into null-terminated UCS-2LE, the
// wire representation firmware file paths use (§4.A). It rewrites '/' to
// '\' and adds a leading '\', so it is for paths only, not for arbitrary
// strings such as load options. It uses the same golang.org/x/text encoder
// canonical/nullboot's efibootmgr package uses for its BOOT*.CSV writer.
func UCS2Path(path string) ([]byte, error) {
	native := strings.ReplaceAll(filepath.ToSlash(path), "/", `\`)
	if !strings.HasPrefix(native, `\`) {
		native = `\` + native
	}
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	encoded, err := enc.String(native + "\x00")
	if err != nil {
		return nil, err
	}
	return []byte(encoded), nil
}

func translateErr(op, path string, err error) error {
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return wrapPath(bmerrors.ErrNotFound, op, path, err)
	case os.IsPermission(err):
		return wrapPath(bmerrors.ErrPermissionDenied, op, path, err)
	case errors.Is(err, os.ErrInvalid):
		return wrapPath(bmerrors.ErrInvalidPath, op, path, err)
	default:
		return wrapPath(bmerrors.ErrDeviceError, op, path, err)
	}
}

type pathErr struct {
	kind error
	op   string
	path string
	err  error
}

func wrapPath(kind error, op, path string, err error) *pathErr {
	return &pathErr{kind: kind, op: op, path: path, err: err}
}

func (e *pathErr) Error() string {
	return e.op + " " + e.path + ": " + e.err.Error()
}
func (e *pathErr) Unwrap() error { return e.kind }

// Exists reports whether path is present on the volume.
func (f *Facade) Exists(path string) (bool, error) {
	_, err := f.fsys.Stat(f.NativePath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, translateErr("stat", path, err)
}

// Read returns the full contents of path, refusing anything over
// MaxReadBytes with bmerrors.ErrReadTooLarge.
func (f *Facade) Read(path string) ([]byte, error) {
	native := f.NativePath(path)
	file, err := f.fsys.Open(native)
	if err != nil {
		return nil, translateErr("open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, translateErr("stat", path, err)
	}
	if info.Size() > MaxReadBytes {
		return nil, wrapPath(bmerrors.ErrReadTooLarge, "read", path, errors.New("file exceeds read cap"))
	}

	if osFile, ok := file.(*os.File); ok && info.Size() > 0 {
		data, mmapErr := mmap.Map(osFile, mmap.RDONLY, 0)
		if mmapErr == nil {
			defer data.Unmap()
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
		if f.logger != nil {
			f.logger.Debugf("fsfacade: mmap %s failed, falling back to buffered read: %s", path, mmapErr)
		}
	}

	limited := io.LimitReader(file, MaxReadBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, translateErr("read", path, err)
	}
	if int64(len(data)) > MaxReadBytes {
		return nil, wrapPath(bmerrors.ErrReadTooLarge, "read", path, errors.New("file exceeds read cap"))
	}
	return data, nil
}

// ReadInto reads path into buf, avoiding an intermediate heap allocation
// for parsers that pre-size their own buffer against untrusted input
// (§4.A rationale).
func (f *Facade) ReadInto(path string, buf []byte) (int, error) {
	native := f.NativePath(path)
	file, err := f.fsys.Open(native)
	if err != nil {
		return 0, translateErr("open", path, err)
	}
	defer file.Close()

	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return n, translateErr("read", path, err)
	}
	return n, nil
}

// ReadDir lists the entries of a directory under this volume.
func (f *Facade) ReadDir(path string) ([]firmware.DirEntry, error) {
	native := f.NativePath(path)
	entries, err := f.fsys.ReadDir(native)
	if err != nil {
		return nil, translateErr("readdir", path, err)
	}
	out := make([]firmware.DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, firmware.DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

var _ firmware.SimpleFileSystem = (*Facade)(nil)
