package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"benchforge/internal/config"
	"benchforge/internal/historydb"
	"benchforge/internal/report"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <run-id-a> <run-id-b>",
		Short: "Compare two historical runs recorded on the same host configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("", "")
			if err != nil {
				return err
			}
			db, err := historydb.Open(cfg.HistoryDBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Comparable(args[0], args[1]); err != nil {
				return err
			}

			a, err := db.GetRun(args[0])
			if err != nil {
				return err
			}
			b, err := db.GetRun(args[1])
			if err != nil {
				return err
			}

			printComparison(a, b)
			return nil
		},
	}
}

func printComparison(a, b *report.BenchmarkRun) {
	fmt.Printf("%-30s %12s %12s %10s\n", "workload", a.ID[:8], b.ID[:8], "delta")
	printCategory(a.Results.ProjectOperations, b.Results.ProjectOperations)
	printCategory(a.Results.BuildPerformance, b.Results.BuildPerformance)
	printCategory(a.Results.Responsiveness, b.Results.Responsiveness)
	printCategory(a.Results.Graphics, b.Results.Graphics)

	fmt.Println()
	fmt.Printf("%-30s %12d %12d %+10d\n", "overall", a.Scores.Overall, b.Scores.Overall, b.Scores.Overall-a.Scores.Overall)
}

func printCategory(a, b []report.TestResult) {
	byID := make(map[string]report.TestResult, len(b))
	for _, r := range b {
		byID[r.TestID] = r
	}
	for _, ra := range a {
		rb, ok := byID[ra.TestID]
		if !ok {
			fmt.Printf("%-30s %12d %12s %10s\n", ra.TestID, ra.Score, "-", "-")
			continue
		}
		fmt.Printf("%-30s %12d %12d %+10d\n", ra.TestID, ra.Score, rb.Score, rb.Score-ra.Score)
	}
}
