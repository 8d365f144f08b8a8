package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/axelbunt54/calculate-pi-app/internal/jobs"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a job until it finishes and print the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, err := cmd.Flags().GetDuration("interval")
			if err != nil {
				return fmt.Errorf("error reading interval: %s", err)
			}
			if interval <= 0 {
				return fmt.Errorf("interval must be positive: %s", interval)
			}
			c, err := newClient(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			jobID := args[0]
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			var last float64 = -1
			for {
				view, err := c.Progress(ctx, jobID)
				if err != nil {
					return err
				}
				if view.Progress != last || view.State == jobs.PublicStateFinished {
					printProgress(cmd.OutOrStdout(), jobID, view)
					last = view.Progress
				}
				if view.State == jobs.PublicStateFinished {
					return nil
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().Duration("interval", time.Second, "Polling interval")
	return cmd
}
