// Package config loads benchforge's configuration: scratch root, worker
// caps, selected profile, and per-workload overrides. Adapted from
// config.LoadConfig's "sensible computed defaults, overridden by an INI
// file section if present" shape, re-targeted from dsynth's ports-tree
// layout to a benchmark engine's workload selection/repetition settings.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/ini.v1"
)

// Config holds all benchforge configuration.
type Config struct {
	// ScratchRoot is read from the scratch_root key. Defaults to
	// os.TempDir(). The built-in workloads do not consult it: they
	// acquire their scratch areas under os.TempDir().
	ScratchRoot string

	// MaxWorkers bounds the internal pool size used by parallel workload
	// kernels. Defaults to runtime.NumCPU().
	MaxWorkers int

	// ThrottleEnabled enables telemetry.Throttler's load/swap-based
	// worker-count reduction. Off by default per spec.md §4.5.
	ThrottleEnabled bool

	// Profile names the active [profile.<name>] section, which overrides
	// the default section's keys (including the workload subset).
	Profile string

	// Selection is the set of workload IDs to run; empty means "all
	// mandatory workloads" (graphics opts in explicitly).
	Selection []string

	// Repetitions overrides a workload's declared repetition count,
	// keyed by workload ID. Absent entries use the workload's default.
	// Load does not read repetition counts from the INI file, so it
	// always returns this map empty.
	Repetitions map[string]int

	// MachineName, Tags, and Notes seed the resulting BenchmarkRun
	// envelope.
	MachineName string
	Tags        []string
	Notes       string

	// HistoryDBPath is where internal/historydb persists past runs.
	HistoryDBPath string

	// LogDir is where internal/benchlog writes a session's log files.
	LogDir string
}

// Load loads configuration from an INI file at path (searching the
// platform default location when path is empty), falling back to computed
// defaults for anything the file doesn't set. A missing file at the
// default location is not an error — it is the same as supplying an empty
// file.
func Load(path, profile string) (*Config, error) {
	hostname, _ := os.Hostname()

	cfg := &Config{
		ScratchRoot:     os.TempDir(),
		MaxWorkers:      runtime.NumCPU(),
		ThrottleEnabled: false,
		Profile:         profile,
		Repetitions:     map[string]int{},
		MachineName:     hostname,
		HistoryDBPath:   defaultHistoryDBPath(),
		LogDir:          defaultLogDir(),
	}

	resolved := path
	if resolved == "" {
		resolved = defaultConfigPath()
	}
	if resolved == "" {
		return cfg, nil
	}
	if _, err := os.Stat(resolved); err != nil {
		return cfg, nil
	}

	iniFile, err := ini.Load(resolved)
	if err != nil {
		return nil, err
	}

	applySection(cfg, iniFile.Section(ini.DefaultSection))
	if profile != "" {
		if sec, err := iniFile.GetSection("profile." + profile); err == nil {
			applySection(cfg, sec)
		}
	}

	return cfg, nil
}

func applySection(cfg *Config, sec *ini.Section) {
	if sec == nil {
		return
	}
	if v := sec.Key("scratch_root").String(); v != "" {
		cfg.ScratchRoot = v
	}
	if v, err := sec.Key("max_workers").Int(); err == nil && v > 0 {
		cfg.MaxWorkers = v
	}
	if v, err := sec.Key("throttle_enabled").Bool(); err == nil {
		cfg.ThrottleEnabled = v
	}
	if v := sec.Key("machine_name").String(); v != "" {
		cfg.MachineName = v
	}
	if v := sec.Key("notes").String(); v != "" {
		cfg.Notes = v
	}
	if vs := sec.Key("tags").Strings(","); len(vs) > 0 {
		cfg.Tags = vs
	}
	if vs := sec.Key("selection").Strings(","); len(vs) > 0 {
		cfg.Selection = vs
	}
	if v := sec.Key("history_db_path").String(); v != "" {
		cfg.HistoryDBPath = v
	}
	if v := sec.Key("log_dir").String(); v != "" {
		cfg.LogDir = v
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "benchforge", "benchforge.ini")
}

func defaultHistoryDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "benchforge", "history.db")
	}
	return filepath.Join(dir, "benchforge", "history.db")
}

func defaultLogDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "benchforge", "logs")
	}
	return filepath.Join(dir, "benchforge", "logs")
}
