package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <digits>",
		Short: "Start a pi calculation with the given number of digits.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("digits must be an integer: %q", args[0])
			}
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			sub, err := c.Submit(cmd.Context(), n)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sub.JobID)
			fmt.Fprintln(cmd.ErrOrStderr(), sub.Message)
			return nil
		},
	}
	return cmd
}
