package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var outFlag string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full event ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/backup/export")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			if outFlag == "" {
				_, err = os.Stdout.Write(resp.Body())
				return err
			}
			if err := os.WriteFile(outFlag, resp.Body(), 0o600); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", len(resp.Body()), outFlag)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)

	var confirmFlag bool
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the entire ledger from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmFlag {
				return fmt.Errorf("import deletes every existing event; rerun with --confirm")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var result struct {
				Imported int `json:"imported"`
			}
			resp, err := newClient().R().
				SetQueryParam("confirm", "true").
				SetBody(data).
				SetResult(&result).
				Post("/api/backup/import")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			fmt.Printf("imported %d events\n", result.Imported)
			return nil
		},
	}
	importCmd.Flags().BoolVar(&confirmFlag, "confirm", false, "Acknowledge the ledger will be replaced")
	rootCmd.AddCommand(importCmd)
}
