// Package cmd は pictl のサブコマンドを定義します。
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/axelbunt54/calculate-pi-app/internal/client"
	"github.com/axelbunt54/calculate-pi-app/internal/jobs"
)

const (
	serverEnv     = "PICTL_SERVER"
	defaultServer = "http://localhost:8080"
)

// RootCmd はすべてのサブコマンドを登録したルートコマンドを返します。
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pictl",
		Short:        "pictl submits pi calculations and follows their progress.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("server", serverDefault(), "API server URL (env "+serverEnv+")")

	cmd.AddCommand(
		submitCmd(),
		statusCmd(),
		watchCmd(),
	)
	return cmd
}

func serverDefault() string {
	if v := os.Getenv(serverEnv); v != "" {
		return v
	}
	return defaultServer
}

func newClient(cmd *cobra.Command) (*client.Client, error) {
	server, err := cmd.Flags().GetString("server")
	if err != nil {
		return nil, fmt.Errorf("error reading server: %s", err)
	}
	return client.New(server)
}

func printProgress(out io.Writer, jobID string, view *jobs.ProgressView) {
	fmt.Fprintf(out, "%s\t%s\t%5.1f%%\n", jobID, view.State, view.Progress*100)
	if view.Result != nil {
		fmt.Fprintln(out, *view.Result)
	}
}
