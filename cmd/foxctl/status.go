package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nurturefox/trackd/internal/glance"
	"github.com/nurturefox/trackd/internal/syncer"
)

func init() {
	var watchFlag bool
	var intervalFlag int
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show time since the last feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			channel := syncer.NewHTTP(apiFlag, 5*time.Second)

			if !watchFlag {
				state, err := channel.FetchLatest(cmd.Context())
				if err != nil && !errors.Is(err, syncer.ErrNoState) {
					return err
				}
				fmt.Println(glance.Render(state, time.Now()))
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := glance.NewRefresher(channel, time.Duration(intervalFlag)*time.Second, zerolog.Nop())
			r.Start(ctx)
			defer r.Stop()

			tick := time.NewTicker(time.Second)
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					fmt.Fprintln(os.Stdout)
					return nil
				case <-tick.C:
					snap := r.Read(time.Now())
					marker := ""
					if snap.Freshness == glance.Stale {
						marker = " (stale)"
					}
					fmt.Printf("\r\033[Klast feed: %s%s", snap.Display, marker)
				}
			}
		},
	}
	statusCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Keep refreshing until interrupted")
	statusCmd.Flags().IntVar(&intervalFlag, "interval", 60, "Refresh interval in seconds for --watch")
	rootCmd.AddCommand(statusCmd)
}
