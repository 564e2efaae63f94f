package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"benchforge/internal/benchlog"
	"benchforge/internal/config"
)

func newWatchCmd() *cobra.Command {
	var logDir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow an in-progress or completed session's run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := logDir
			if dir == "" {
				cfg, err := config.Load("", "")
				if err != nil {
					return err
				}
				dir = cfg.LogDir
			}

			viewer := benchlog.NewViewer(dir)
			if err := viewer.Dump(os.Stdout); err != nil {
				return err
			}

			stop := make(chan struct{})
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				close(stop)
			}()

			return viewer.Follow(os.Stdout, 500*time.Millisecond, stop)
		},
	}

	cmd.Flags().StringVar(&logDir, "log", "", "directory containing the session's run log (default: platform config dir)")
	return cmd
}
