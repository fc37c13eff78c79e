//go:build linux

package phfmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocateFile reserves size bytes for file and sets its length, so that
// writes through a shared mapping cannot SIGBUS on a full disk.
func preallocateFile(file *os.File, size int64) error {
	fd := int(file.Fd())
	if err := unix.Fallocate(fd, 0, 0, size); err != nil {
		// Some filesystems (NFS, tmpfs on old kernels) reject fallocate.
		return unix.Ftruncate(fd, size)
	}
	return unix.Ftruncate(fd, size)
}
