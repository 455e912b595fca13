// foxctl is the caregiver-facing CLI surface over a running trackd
// service: quick logging, summaries, milestones, glance status, backups.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "foxctl",
		Short: "CLI client for the trackd caregiving ledger",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:7420", "trackd service base URL")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
