// Command benchforge is the optional CLI shell around the benchmarking
// engine (spec.md §6): it wires internal/config, internal/workloads'
// default registry, internal/orchestrator, internal/sysinfo,
// internal/historydb, internal/benchlog, and internal/cliui together,
// but contains no scoring or measurement logic of its own — every
// invariant lives in the engine packages under internal/.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "benchforge",
		Short: "Workstation benchmarking engine",
		Long: "benchforge measures developer-relevant host performance across " +
			"project I/O, build compute, responsiveness, and optional graphics " +
			"workloads, and assembles a reproducible BenchmarkRun envelope.",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newCompareCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "benchforge:", err)
		os.Exit(1)
	}
}
