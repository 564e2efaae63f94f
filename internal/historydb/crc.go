package historydb

import (
	"fmt"
	"hash/crc32"

	"benchforge/internal/report"
)

// ComputeHostCRC hashes the identity-relevant facets of a SystemInfo
// snapshot (CPU name/vendor/cores/threads, memory size, OS name) into a
// CRC32, adapted from builddb.ComputePortCRC's "hash the things that
// determine whether this needs re-doing" approach — repurposed here to
// flag whether two stored runs were taken on comparable hardware rather
// than whether a port's sources changed.
func ComputeHostCRC(info report.SystemInfo) uint32 {
	h := crc32.NewIEEE()
	fmt.Fprintf(h, "%s|%s|%d|%d|%d|%s\n",
		info.CPU.Name, info.CPU.Vendor, info.CPU.Cores, info.CPU.Threads,
		info.Memory.Bytes, info.OS.Name)
	return h.Sum32()
}
