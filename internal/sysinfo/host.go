package sysinfo

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"benchforge/internal/report"
)

func init() {
	Register("host", probeHost)
}

// probeHost assembles a best-effort SystemInfo snapshot: OS identity via
// unix.Uname (the same call config.GetSystemInfo uses), CPU core/thread
// counts via runtime.NumCPU, and CPU name plus memory size via procfs
// where available. Every read is best-effort — a missing /proc (non-Linux
// unix platforms) leaves those fields at their zero value rather than
// failing the snapshot.
func probeHost() report.SystemInfo {
	info := report.SystemInfo{
		CPU: report.CPUInfo{
			Cores:   runtime.NumCPU(),
			Threads: runtime.NumCPU(),
		},
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		info.OS.Name = trimNull(uts.Sysname[:])
		info.OS.Version = trimNull(uts.Release[:])
		info.OS.Build = trimNull(uts.Version[:])
	}

	if name, vendor := readCPUInfo(); name != "" {
		info.CPU.Name = name
		info.CPU.Vendor = vendor
	}

	if bytes := readMemTotal(); bytes > 0 {
		info.Memory.Bytes = bytes
	}

	return info
}

func trimNull(b []byte) string {
	n := len(b)
	for i, c := range b {
		if c == 0 {
			n = i
			break
		}
	}
	return string(b[:n])
}

// readCPUInfo scrapes /proc/cpuinfo for a model name and vendor id. Returns
// empty strings on any platform without procfs.
func readCPUInfo() (name, vendor string) {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return "", ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case name == "" && strings.HasPrefix(line, "model name"):
			name = fieldAfterColon(line)
		case vendor == "" && strings.HasPrefix(line, "vendor_id"):
			vendor = fieldAfterColon(line)
		}
		if name != "" && vendor != "" {
			break
		}
	}
	return name, vendor
}

// readMemTotal scrapes /proc/meminfo's MemTotal line (reported in KiB) and
// returns it in bytes. Returns 0 on any platform without procfs.
func readMemTotal() int64 {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb * 1024
	}
	return 0
}

func fieldAfterColon(line string) string {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}
