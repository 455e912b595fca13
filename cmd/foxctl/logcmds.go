package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/units"
)

func init() {
	var unitFlag, atFlag string
	feedCmd := &cobra.Command{
		Use:   "feed AMOUNT",
		Short: "Log a feeding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit := model.VolumeUnit(unitFlag)
			if unit != model.UnitOunces && unit != model.UnitMilliliters {
				return fmt.Errorf("unit must be oz or ml")
			}
			occurredAt, err := parseAt(atFlag)
			if err != nil {
				return err
			}
			// malformed or negative amounts recover to zero, same as the
			// quick-log surfaces
			ev := model.Event{
				Kind:       model.KindFeed,
				Feed:       &model.FeedDetail{Amount: units.ParseAmount(args[0]), Unit: unit},
				OccurredAt: occurredAt,
			}
			var created model.Event
			resp, err := newClient().R().SetBody(ev).SetResult(&created).Post("/api/events")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			fmt.Printf("logged feed %g %s at %s\n", created.Feed.Amount, created.Feed.Unit, created.OccurredAt.Local().Format(time.Kitchen))
			return nil
		},
	}
	feedCmd.Flags().StringVarP(&unitFlag, "unit", "u", "oz", "Volume unit (oz or ml)")
	feedCmd.Flags().StringVar(&atFlag, "at", "", "When it happened (RFC3339, default now)")
	rootCmd.AddCommand(feedCmd)

	var diaperAt string
	diaperCmd := &cobra.Command{
		Use:   "diaper CONTENTS",
		Short: "Log a diaper change (pee, poop, or both)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := parseContents(args[0])
			if err != nil {
				return err
			}
			occurredAt, err := parseAt(diaperAt)
			if err != nil {
				return err
			}
			ev := model.Event{
				Kind:       model.KindDiaper,
				Diaper:     &model.DiaperDetail{Contents: contents},
				OccurredAt: occurredAt,
			}
			var created model.Event
			resp, err := newClient().R().SetBody(ev).SetResult(&created).Post("/api/events")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			fmt.Printf("logged diaper (%s) at %s\n", created.Diaper.Contents, created.OccurredAt.Local().Format(time.Kitchen))
			return nil
		},
	}
	diaperCmd.Flags().StringVar(&diaperAt, "at", "", "When it happened (RFC3339, default now)")
	rootCmd.AddCommand(diaperCmd)

	var kindFlag string
	var limitFlag int
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient().R()
			q := map[string]string{"limit": fmt.Sprint(limitFlag)}
			if kindFlag != "" {
				q["kind"] = strings.ToUpper(kindFlag)
			}
			var listed struct {
				Events []*model.Event `json:"events"`
			}
			resp, err := req.SetQueryParams(q).SetResult(&listed).Get("/api/events")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			for _, e := range listed.Events {
				fmt.Println(formatEvent(e))
			}
			return nil
		},
	}
	logCmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Filter by kind (feed or diaper)")
	logCmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum events to show")
	rootCmd.AddCommand(logCmd)

	var deleteCmd = &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Delete("/api/events/" + args[0])
			if err != nil {
				return err
			}
			return checkStatus(resp)
		},
	}
	rootCmd.AddCommand(deleteCmd)
}

func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil // the service fills in "now"
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC3339: %w", err)
	}
	return ts, nil
}

func parseContents(s string) (model.DiaperContents, error) {
	switch strings.ToLower(s) {
	case "pee":
		return model.ContentsPee, nil
	case "poop":
		return model.ContentsPoop, nil
	case "both":
		return model.ContentsBoth, nil
	default:
		return "", fmt.Errorf("contents must be pee, poop, or both")
	}
}

func formatEvent(e *model.Event) string {
	when := e.OccurredAt.Local().Format("Mon 15:04")
	switch {
	case e.Feed != nil:
		return fmt.Sprintf("%s  feed    %g %s  [%s]", when, e.Feed.Amount, e.Feed.Unit, e.ID)
	case e.Diaper != nil:
		return fmt.Sprintf("%s  diaper  %s  [%s]", when, e.Diaper.Contents, e.ID)
	default:
		return fmt.Sprintf("%s  ?  [%s]", when, e.ID)
	}
}
