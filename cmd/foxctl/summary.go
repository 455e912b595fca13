package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/services"
)

func init() {
	var windowFlag string
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show feed and diaper totals for a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			var totals services.Totals
			resp, err := newClient().R().
				SetQueryParam("window", windowFlag).
				SetResult(&totals).
				Get("/api/summary")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}

			fmt.Printf("window: %s\n", totals.Window)
			fmt.Printf("feeds:  %d (%.1f oz", totals.FeedCount, totals.TotalOunces)
			if totals.GoalOunces > 0 {
				fmt.Printf(", %.0f%% of %.0f oz goal", totals.GoalProgress*100, totals.GoalOunces)
			}
			fmt.Println(")")
			fmt.Printf("diapers: %d", totals.DiaperCount)
			for _, c := range []model.DiaperContents{model.ContentsPee, model.ContentsPoop, model.ContentsBoth} {
				if n := totals.DiaperByKind[c]; n > 0 {
					fmt.Printf("  %s=%d", c, n)
				}
			}
			fmt.Println()
			return nil
		},
	}
	summaryCmd.Flags().StringVarP(&windowFlag, "window", "w", "today", "Window: today, 24h, or 7d")
	rootCmd.AddCommand(summaryCmd)
}
