//go:build linux

package phfmap

import "golang.org/x/sys/unix"

// adviseWillNeed asks the kernel to read the mapped table ahead of the first
// lookup. Best-effort: errors are ignored.
func adviseWillNeed(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
}
