//go:build !linux

package phfmap

// adviseWillNeed is a no-op outside Linux.
func adviseWillNeed(data []byte) {}
