//go:build darwin

package phfmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocateFile reserves size bytes for file with F_PREALLOCATE and sets
// its length.
func preallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	fd := int(file.Fd())
	if err := unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst); err != nil {
		return unix.Ftruncate(fd, size)
	}
	return unix.Ftruncate(fd, size)
}
