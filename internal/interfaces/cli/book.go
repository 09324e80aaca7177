package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/remimse/tennis-bots/internal/application/usecases"
	"github.com/remimse/tennis-bots/internal/domain/booking"
	"github.com/remimse/tennis-bots/internal/infrastructure/config"
)

func newBookCmd(opts *rootOptions) *cobra.Command {
	var (
		date     string
		headless bool
		noNotify bool
	)
	c := &cobra.Command{
		Use:   "book",
		Short: "Run one retried booking now and exit 0 only if a court was booked",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			headlessSet := cmd.Flags().Changed("headless")
			a, err := newApp(ctx, opts, func(cfg *config.Config) {
				if headlessSet {
					cfg.Browser.Headless = headless
				}
			})
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.cfg.RequireCredentials(); err != nil {
				return err
			}

			runner := a.runner()
			if noNotify {
				runner.Notifier = nil
			}
			target := booking.TargetDate(runner.Today(), a.prefs)
			if date != "" {
				if target, err = booking.ParseDate(date, a.loc); err != nil {
					return err
				}
			}

			run, err := runner.BookDate(ctx, target, usecases.TriggerOnce)
			out := cmd.OutOrStdout()
			if err != nil {
				fmt.Fprintf(out, "booking %s failed after %d tries: %v\n", target.Format(booking.DateLayout), run.Tries, err)
				return &ExitError{Code: 1}
			}
			fmt.Fprintf(out, "%s: %s\n", target.Format(booking.DateLayout), run.Outcome)
			if !run.Outcome.Succeeded() {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	c.Flags().StringVar(&date, "date", "", "date to book, YYYY-MM-DD (default: today plus advance_booking_days)")
	c.Flags().BoolVar(&headless, "headless", true, "run the browser without a window (overrides BROWSER_HEADLESS)")
	c.Flags().BoolVar(&noNotify, "no-notify", false, "do not send a Telegram message")
	return c
}
