package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"benchforge/internal/workloads"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered workload in declared order",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := workloads.DefaultRegistry()
			for _, w := range reg.All() {
				fmt.Printf("%-28s %-18s %4ds  %s\n", w.ID(), w.Category(), w.EstimatedDurationSeconds(), w.Name())
			}
			return nil
		},
	}
}
