package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"benchforge/internal/benchlog"
	"benchforge/internal/cliui"
	"benchforge/internal/config"
	"benchforge/internal/historydb"
	"benchforge/internal/orchestrator"
	"benchforge/internal/report"
	"benchforge/internal/sysinfo"
	"benchforge/internal/telemetry"
	"benchforge/internal/workload"
	"benchforge/internal/workloads"
	"benchforge/internal/workloads/common"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		profile    string
		selectIDs  []string
		jsonOut    string
		uiMode     string
		tags       []string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, profile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if len(selectIDs) > 0 {
				cfg.Selection = selectIDs
			}
			if len(tags) > 0 {
				cfg.Tags = tags
			}
			if notes != "" {
				cfg.Notes = notes
			}

			return runSession(cfg, jsonOut, uiMode)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to benchforge.ini (default: platform config dir)")
	cmd.Flags().StringVar(&profile, "profile", "", "named [profile.<name>] section to apply")
	cmd.Flags().StringSliceVar(&selectIDs, "select", nil, "comma-separated workload IDs to run (default: all mandatory workloads)")
	cmd.Flags().StringVar(&jsonOut, "json", "", "write the resulting BenchmarkRun as JSON to this path (- for stdout)")
	cmd.Flags().StringVar(&uiMode, "ui", "stdout", "progress UI: stdout or dashboard")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags to attach to the run")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes to attach to the run")

	return cmd
}

// runSession wires config, registry, logging, history, telemetry and the
// chosen progress UI into a single orchestrator.Run invocation, then
// persists and optionally emits the resulting BenchmarkRun.
func runSession(cfg *config.Config, jsonOut, uiMode string) error {
	common.Configure(cfg.MaxWorkers, cfg.ThrottleEnabled, cfg.Repetitions)

	reg := workloads.DefaultRegistry()
	selection := resolveSelection(cfg, reg)

	logger, err := benchlog.New(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("opening log directory: %w", err)
	}
	defer logger.Close()

	db, err := historydb.Open(cfg.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := telemetry.NewCollector(ctx, len(selection))
	defer collector.Close()

	progress, stopUI := setUpProgress(uiMode, cancel)
	defer stopUI()
	if dashboardConsumer, ok := progress.(telemetry.StatsConsumer); ok {
		collector.AddConsumer(dashboardConsumer)
	}

	obs := &sessionObserver{logger: logger, collector: collector}

	started := time.Now()
	run, err := orchestrator.Run(ctx, reg, orchestrator.Options{
		Selection:   selection,
		Progress:    progress,
		SysInfo:     func() (report.SystemInfo, error) { return sysinfo.CollectHost(), nil },
		MachineName: cfg.MachineName,
		Tags:        cfg.Tags,
		Notes:       cfg.Notes,
		Observer:    obs,
	})
	if err != nil {
		return fmt.Errorf("running session: %w", err)
	}

	logSummary(logger, run, len(selection), time.Since(started))

	if err := db.SaveRun(run); err != nil {
		return fmt.Errorf("saving run history: %w", err)
	}

	if jsonOut != "" {
		if err := writeJSON(run, jsonOut); err != nil {
			return fmt.Errorf("writing json output: %w", err)
		}
	}

	fmt.Printf("Run %s: %d/%d (%.1f%%, %s)\n", run.ID, run.Scores.Overall, run.Scores.OverallMax,
		run.Scores.OverallPercentage, run.Scores.OverallRating)
	return nil
}

func resolveSelection(cfg *config.Config, reg *orchestrator.Registry) map[string]bool {
	selection := make(map[string]bool, len(reg.Order))
	if len(cfg.Selection) > 0 {
		for _, id := range cfg.Selection {
			selection[id] = true
		}
		return selection
	}
	for _, w := range reg.All() {
		if w.Category() == workload.Graphics {
			continue
		}
		selection[w.ID()] = true
	}
	return selection
}

// setUpProgress builds the workload.Progress collaborator for the chosen
// UI mode and wires SIGINT/SIGTERM into cooperative cancellation. The
// returned stop func must be deferred by the caller.
func setUpProgress(uiMode string, cancel context.CancelFunc) (workload.Progress, func()) {
	if uiMode == "dashboard" {
		dash := cliui.NewDashboard()
		dash.SetInterruptHandler(cancel)
		if err := dash.Start(); err != nil {
			fmt.Fprintln(os.Stderr, "benchforge: dashboard unavailable, falling back to stdout:", err)
		} else {
			return dash, dash.Stop
		}
	}

	stdout := cliui.NewStdoutProgress()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-sigCh; ok {
			stdout.Cancel()
			cancel()
		}
	}()
	return stdout, func() { signal.Stop(sigCh); close(sigCh) }
}

// sessionObserver fans a single orchestrator.Observer notification out to
// the run log and the live telemetry collector, the two external
// collaborators that need per-workload lifecycle events rather than just
// the final BenchmarkRun.
type sessionObserver struct {
	logger    *benchlog.Logger
	collector *telemetry.Collector
}

func (o *sessionObserver) WorkloadStarted(id string) {
	o.logger.WorkloadStarted(id)
	o.collector.WorkloadStarted(id)
}

func (o *sessionObserver) WorkloadFinished(id string, outcome workload.Outcome) {
	switch outcome.Kind {
	case workload.Completed:
		o.logger.WorkloadCompleted(id, outcome.Result.Score, outcome.Result.MaxScore)
	case workload.Skipped:
		o.logger.WorkloadSkipped(id, outcome.Reason)
	case workload.Failed:
		o.logger.WorkloadFailed(id, outcome.Reason)
	case workload.Cancelled:
		o.logger.WorkloadCancelled(id)
	}
	o.collector.WorkloadCompleted()
}

func writeJSON(run *report.BenchmarkRun, path string) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// logSummary writes the session summary to the run log. completed is
// derived from the appended TestResults; the run log cannot distinguish
// skipped from failed workloads since BenchmarkRun only carries completed
// results, so both are reported together.
func logSummary(logger *benchlog.Logger, run *report.BenchmarkRun, total int, elapsed time.Duration) {
	completed := len(run.Results.ProjectOperations) + len(run.Results.BuildPerformance) +
		len(run.Results.Responsiveness) + len(run.Results.Graphics)
	skippedOrFailed := total - completed
	if skippedOrFailed < 0 {
		skippedOrFailed = 0
	}
	logger.Summary(total, completed, skippedOrFailed, 0, run.Scores.Overall, run.Scores.OverallMax, elapsed)
}
