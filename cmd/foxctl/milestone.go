package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nurturefox/trackd/internal/model"
)

func init() {
	milestoneCmd := &cobra.Command{Use: "milestone", Short: "Milestone operations"}

	var atFlag string
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Record a milestone (age is snapshotted at insert)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			occurredAt, err := parseAt(atFlag)
			if err != nil {
				return err
			}
			payload := map[string]interface{}{"name": args[0]}
			if !occurredAt.IsZero() {
				payload["occurredAt"] = occurredAt.Format(time.RFC3339)
			}
			var rec model.Milestone
			resp, err := newClient().R().SetBody(payload).SetResult(&rec).Post("/api/milestones")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			fmt.Printf("%s at age %s\n", rec.Name, rec.AgeAtOccurrence)
			return nil
		},
	}
	addCmd.Flags().StringVar(&atFlag, "at", "", "When it happened (RFC3339, default now)")
	milestoneCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			var listed struct {
				Milestones []*model.Milestone `json:"milestones"`
			}
			resp, err := newClient().R().SetResult(&listed).Get("/api/milestones")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			for _, m := range listed.Milestones {
				fmt.Printf("%s  %-24s age %s  [%s]\n", m.OccurredAt.Local().Format("2006-01-02"), m.Name, m.AgeAtOccurrence, m.ID)
			}
			return nil
		},
	}
	milestoneCmd.AddCommand(listCmd)

	rmCmd := &cobra.Command{
		Use:   "rm MILESTONE_ID",
		Short: "Delete a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Delete("/api/milestones/" + args[0])
			if err != nil {
				return err
			}
			return checkStatus(resp)
		},
	}
	milestoneCmd.AddCommand(rmCmd)

	rootCmd.AddCommand(milestoneCmd)
}
