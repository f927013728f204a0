package hostfw

import (
	"bufio"
	"os"
	"strings"

	"github.com/twpayne/go-vfs/v5"

	"github.com/efiboot/bootmgr-go/pkg/bootlog"
	"github.com/efiboot/bootmgr-go/pkg/firmware"
	"github.com/efiboot/bootmgr-go/pkg/fsfacade"
)

// espFilesystemTypes are the filesystem types the ESP and other simple
// UEFI filesystems are formatted as; entries matching these in
// /proc/mounts are treated as simple-filesystem-protocol volumes.
var espFilesystemTypes = map[string]bool{
	"vfat": true,
	"msdos": true,
	"exfat": true,
	"hfsplus": true,
}

// MountEnumerator implements firmware.VolumeEnumerator by reading
// /proc/mounts, the same source of truth the teacher's disk/partition
// utilities (pkg/utils/partitions) consult for mounted filesystems.
type MountEnumerator struct {
	mountsPath string
	logger     *bootlog.Logger
}

// NewMountEnumerator builds an enumerator reading the real /proc/mounts.
func NewMountEnumerator(logger *bootlog.Logger) *MountEnumerator {
	return &MountEnumerator{mountsPath: "/proc/mounts", logger: logger}
}

func (m *MountEnumerator) Volumes() ([]firmware.MountedVolume, error) {
	f, err := os.Open(m.mountsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []firmware.MountedVolume
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mountPoint, fsType := fields[1], fields[2]
		if !espFilesystemTypes[fsType] {
			continue
		}
		facade := fsfacade.New(vfs.OSFS, mountPoint, m.logger)
		out = append(out, firmware.MountedVolume{
			Handle: firmware.NewHandle(),
			Fs:     facade,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
