package cmd

import (
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the progress of a job.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			view, err := c.Progress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProgress(cmd.OutOrStdout(), args[0], view)
			return nil
		},
	}
	return cmd
}
