package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nurturefox/trackd/internal/settings"
)

func init() {
	settingsCmd := &cobra.Command{Use: "settings", Short: "Caregiver preferences"}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fetchSettings()
			if err != nil {
				return err
			}
			fmt.Printf("baby name:   %s\n", cfg.BabyName)
			if cfg.BirthDate.IsZero() {
				fmt.Println("birth date:  (not set)")
			} else {
				fmt.Printf("birth date:  %s\n", cfg.BirthDate.Format("2006-01-02"))
			}
			fmt.Printf("daily goal:  %g oz\n", cfg.DailyGoal)
			fmt.Printf("quick logs:  %s oz / %s oz\n", cfg.QuickSmall, cfg.QuickLarge)
			fmt.Printf("theme:       %s\n", cfg.Theme)
			return nil
		},
	}
	settingsCmd.AddCommand(getCmd)

	var nameFlag, birthFlag, smallFlag, largeFlag, themeFlag string
	var goalFlag float64
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update settings (only the flags given change)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fetchSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				cfg.BabyName = nameFlag
			}
			if cmd.Flags().Changed("birth-date") {
				bd, err := time.Parse("2006-01-02", birthFlag)
				if err != nil {
					return fmt.Errorf("--birth-date must be YYYY-MM-DD: %w", err)
				}
				cfg.BirthDate = bd
			}
			if cmd.Flags().Changed("goal") {
				cfg.DailyGoal = goalFlag
			}
			if cmd.Flags().Changed("quick-small") {
				cfg.QuickSmall = smallFlag
			}
			if cmd.Flags().Changed("quick-large") {
				cfg.QuickLarge = largeFlag
			}
			if cmd.Flags().Changed("theme") {
				cfg.Theme = themeFlag
			}
			resp, err := newClient().R().SetBody(cfg).Put("/api/settings")
			if err != nil {
				return err
			}
			return checkStatus(resp)
		},
	}
	setCmd.Flags().StringVar(&nameFlag, "name", "", "Baby name")
	setCmd.Flags().StringVar(&birthFlag, "birth-date", "", "Birth date (YYYY-MM-DD)")
	setCmd.Flags().Float64Var(&goalFlag, "goal", 0, "Daily volume goal in oz")
	setCmd.Flags().StringVar(&smallFlag, "quick-small", "", "Small quick-log amount")
	setCmd.Flags().StringVar(&largeFlag, "quick-large", "", "Large quick-log amount")
	setCmd.Flags().StringVar(&themeFlag, "theme", "", "Display theme")
	settingsCmd.AddCommand(setCmd)

	rootCmd.AddCommand(settingsCmd)
}

func fetchSettings() (settings.Settings, error) {
	var cfg settings.Settings
	resp, err := newClient().R().SetResult(&cfg).Get("/api/settings")
	if err != nil {
		return cfg, err
	}
	return cfg, checkStatus(resp)
}
