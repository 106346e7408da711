//go:build !linux

package sasfile

// AvailableMemory is unsupported off Linux; 0 means "unknown" and disables
// chunked processing.
func AvailableMemory() uint64 { return 0 }
