package capability

import (
	"os"

	"golang.org/x/sys/unix"
)

func init() {
	Register("host", hostProvider{})
}

// hostProvider probes the running machine directly. Each method is a
// best-effort, cheap check — none of them open a scratch file of their
// own; they answer "is the mechanism available here" rather than
// exercising it against real data.
type hostProvider struct{}

// HasDisplayAdapter looks for a DRI render node or an active X/Wayland
// display, the same signals a headless CI runner lacks. Neither check is
// conclusive on every platform, so a false negative here only causes the
// graphics category to Skip, never to report a wrong result.
func (hostProvider) HasDisplayAdapter() bool {
	if _, err := os.Stat("/dev/dri"); err == nil {
		return true
	}
	if os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != "" {
		return true
	}
	return false
}

// CanDropFileCache probes whether posix_fadvise(DONTNEED) is usable by
// issuing it against a throwaway temp file. A failure here is common on
// platforms or filesystems that ignore the advisory call, and simply
// means the large_seq_read workload reads without dropping the cache
// rather than failing.
func (hostProvider) CanDropFileCache() bool {
	f, err := os.CreateTemp("", "benchforge-capprobe-*")
	if err != nil {
		return false
	}
	path := f.Name()
	defer os.Remove(path)
	defer f.Close()

	if _, err := f.WriteString("probe"); err != nil {
		return false
	}
	if err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED); err != nil {
		return false
	}
	return true
}

// DurableSyncSupported probes whether fdatasync succeeds against a
// throwaway temp file. Filesystems mounted with sync disabled or backed
// by certain network mounts can reject it.
func (hostProvider) DurableSyncSupported() bool {
	f, err := os.CreateTemp("", "benchforge-syncprobe-*")
	if err != nil {
		return false
	}
	path := f.Name()
	defer os.Remove(path)
	defer f.Close()

	if _, err := f.WriteString("probe"); err != nil {
		return false
	}
	return unix.Fdatasync(int(f.Fd())) == nil
}
