// Package hostfw is the concrete implementation of the pkg/firmware
// capability surface against a real UEFI-capable Linux host. Variable
// access is grounded directly on the teacher's WriteOneShotEfiVar and
// ReadOneShotEfiVar (pkg/action/bootentries.go), which read and write
// NVRAM variables as plain files under efivarfs rather than through a
// higher-level variable-access library.
package hostfw

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf16"
	"unsafe"

	"github.com/foxboron/go-uefi/efi/attributes"
	"golang.org/x/sys/unix"

	"github.com/efiboot/bootmgr-go/pkg/bmerrors"
)

// efivarfsRoot is the standard Linux mount point for efivarfs.
const efivarfsRoot = "/sys/firmware/efi/efivars"

// Variables is the VariableStore implementation of §6, backed by raw
// reads/writes into efivarfs files named "<Name>-<GUID>".
type Variables struct {
	root string
}

// NewVariables builds a Variables store rooted at the real efivarfs
// mount. Tests substitute a different root via newVariablesAt.
func NewVariables() *Variables { return &Variables{root: efivarfsRoot} }

func newVariablesAt(root string) *Variables { return &Variables{root: root} }

func (v *Variables) path(guid, name string) string {
	return v.root + "/" + name + "-" + strings.ToLower(guid)
}

// GetVariable reads the variable's attribute header (4 bytes, little
// endian) followed by its raw data, mirroring the layout efivarfs
// exposes and ReadOneShotEfiVar consumes without the header split (it
// reads the whole file as string payload because LoaderEntryOneShot has
// no meaningful attrs on read). We split it out here since VariableStore
// is a general-purpose surface, not specific to one variable.
func (v *Variables) GetVariable(guid, name string) ([]byte, uint32, error) {
	path := v.path(guid, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, bmerrors.ErrNotFound
		}
		return nil, 0, fmt.Errorf("hostfw: read %s-%s: %w", name, guid, err)
	}
	if len(raw) < 4 {
		return nil, 0, errors.New("hostfw: truncated efivarfs entry")
	}
	attrs := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
	return raw[4:], attrs, nil
}

// SetVariable writes data under name-guid with the given attributes,
// clearing the immutable inode flag efivarfs sets by default, exactly as
// clearImmutable + WriteOneShotEfiVar do in the teacher.
func (v *Variables) SetVariable(guid, name string, data []byte, attrs uint32) error {
	path := v.path(guid, name)
	if err := clearImmutable(path); err != nil {
		return fmt.Errorf("hostfw: clear immutable flag on %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("hostfw: open %s: %w", path, err)
	}
	defer f.Close()

	header := attributes.Attributes(attrs).Bytes()
	buf := append(append([]byte{}, header...), data...)
	n, err := f.Write(buf)
	if err != nil {
		return fmt.Errorf("hostfw: write %s: %w", path, err)
	}
	if n != len(buf) {
		return errors.New("hostfw: short write to efivarfs entry")
	}
	return nil
}

// EncodeUCS2Z encodes s as null-terminated UTF-16LE, the representation
// efivarfs string-valued variables use (teacher's
// EncondeUtf16LEStringNullTerminated).
func EncodeUCS2Z(s string) []byte {
	u := utf16.Encode([]rune(s))
	u = append(u, 0)
	b := make([]byte, len(u)*2)
	for i, c := range u {
		b[2*i] = byte(c)
		b[2*i+1] = byte(c >> 8)
	}
	return b
}

// DecodeUCS2Z is the inverse of EncodeUCS2Z (teacher's
// ReadUtf16LEStringNullTerminated).
func DecodeUCS2Z(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	end := 0
	for end < len(u) && u[end] != 0 {
		end++
	}
	return string(utf16.Decode(u[:end]))
}

// clearImmutable removes the FS_IMMUTABLE_FL flag efivarfs sets on every
// entry by default, copied verbatim in spirit from the teacher's
// clearImmutable.
func clearImmutable(path string) error {
	const (
		fsIOCGetflags = 0x80086601
		fsIOCSetflags = 0x40086602
		fsImmutableFl = 0x00000010
	)
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer unix.Close(fd)

	var flags int
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), fsIOCGetflags, uintptr(unsafe.Pointer(&flags))); errno != 0 {
		return errno
	}
	flags &^= fsImmutableFl
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), fsIOCSetflags, uintptr(unsafe.Pointer(&flags))); errno != 0 {
		return errno
	}
	return nil
}
