// Package sysinfo implements the external SystemInfo provider named in
// spec.md §6 as a concrete, in-repo collaborator: a backend registry keyed
// by platform, mirroring environment.Register/environment.New, with a
// "host" backend doing real probing (golang.org/x/sys/unix's Uname, the
// same call config.GetSystemInfo uses for OS identity) and a fallback that
// returns a best-effort partial snapshot rather than erroring — SystemInfo
// is advisory metadata here, never a gate on whether a run proceeds.
package sysinfo

import (
	"runtime"

	"benchforge/internal/report"
)

// Probe collects one facet of SystemInfo for a given backend.
type Probe func() report.SystemInfo

var backends = map[string]Probe{}

// Register adds a named backend. Panics on duplicate registration, same
// as environment.Register — a programming error, not a runtime condition.
func Register(name string, probe Probe) {
	if _, exists := backends[name]; exists {
		panic("sysinfo: backend already registered: " + name)
	}
	backends[name] = probe
}

// Collect runs the named backend's probe, falling back to a best-effort
// partial snapshot (CPU core count only, via runtime.NumCPU) when no
// backend is registered for the current platform.
func Collect(backend string) report.SystemInfo {
	if probe, ok := backends[backend]; ok {
		return probe()
	}
	return fallback()
}

// CollectHost is Collect("host") — the default entry point for callers
// that don't need to force a specific backend (tests register their own).
func CollectHost() report.SystemInfo {
	return Collect("host")
}

func fallback() report.SystemInfo {
	return report.SystemInfo{
		CPU: report.CPUInfo{
			Cores:   runtime.NumCPU(),
			Threads: runtime.NumCPU(),
		},
	}
}
