package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/remimse/tennis-bots/internal/application/scheduler"
	"github.com/remimse/tennis-bots/internal/domain/booking"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var today string
	c := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print which date today's run would book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			prefs, err := cfg.Preferences()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			at, err := cfg.TriggerClock()
			if err != nil {
				return fmt.Errorf("trigger_time: %w", err)
			}

			now := time.Now().In(loc)
			day := booking.DateOf(now)
			if today != "" {
				if day, err = booking.ParseDate(today, loc); err != nil {
					return err
				}
			}
			target := booking.TargetDate(day, prefs)

			decision := "no, not a preferred day"
			if booking.ShouldBookToday(day, prefs) {
				decision = "yes"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "today:        %s (%s)\n", day.Format(booking.DateLayout), day.Weekday())
			fmt.Fprintf(out, "target date:  %s (%s)\n", target.Format(booking.DateLayout), target.Weekday())
			fmt.Fprintf(out, "book today:   %s\n", decision)
			fmt.Fprintf(out, "window:       %s\n", prefs.Window)
			fmt.Fprintf(out, "courts:       %s\n", strings.Join(prefs.ResourcePriority, ", "))
			if today == "" {
				d := scheduler.Daily{At: at, Location: loc}
				fmt.Fprintf(out, "next trigger: %s\n", d.NextRun(now).Format("2006-01-02 15:04:05 MST"))
			}
			if err := cfg.RequireCredentials(); err != nil {
				fmt.Fprintf(out, "warning:      %v\n", err)
			}
			return nil
		},
	}
	c.Flags().StringVar(&today, "today", "", "pretend today is this date, YYYY-MM-DD")
	return c
}
