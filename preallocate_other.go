//go:build !linux && !darwin

package phfmap

import "os"

// preallocateFile sets the file length. Disk blocks may not be reserved.
func preallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
