package telemetry

import "golang.org/x/sys/unix"

// CurrentLoadAndSwap reads the 1-minute load average and swap-in-use
// percentage straight from the kernel via unix.Sysinfo, the same
// collaborator used for no other info than feeding a Throttler. Returns
// zero values (meaning "unavailable, don't throttle") if the syscall
// fails rather than propagating an error — a missing reading must never
// block a workload from running at full pool size.
func CurrentLoadAndSwap() (load float64, swapPct int) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0
	}
	// Loads[0] is the 1-minute average in Linux's fixed-point scale
	// (1 << unix.SI_LOAD_SHIFT = 65536 per unit).
	load = float64(info.Loads[0]) / (1 << 16)

	if info.Totalswap > 0 {
		used := info.Totalswap - info.Freeswap
		swapPct = int(100 * used / info.Totalswap)
	}
	return load, swapPct
}
