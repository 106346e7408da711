//go:build linux

package sasfile

import "golang.org/x/sys/unix"

// AvailableMemory reports the free system memory in bytes, including
// reclaimable buffer cache. Returns 0 when the probe fails; callers should
// treat 0 as "unknown" and fall back to single-chunk processing.
func AvailableMemory() uint64 {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return 0
	}
	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	return (uint64(si.Freeram) + uint64(si.Bufferram)) * unit
}
