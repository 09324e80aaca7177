package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/remimse/tennis-bots/internal/domain/booking"
	"github.com/remimse/tennis-bots/internal/infrastructure/postgres"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "history",
		Short: "List recent booking runs (needs DATABASE_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("history needs DATABASE_URL; without it runs are only kept in memory by serve")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()

			d, err := postgres.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := postgres.Migrate(ctx, d); err != nil {
				return err
			}
			runs, err := postgres.NewRunRepo(d).Recent(ctx, limit)
			if err != nil {
				return err
			}
			printRuns(cmd, runs)
			return nil
		},
	}
	c.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return c
}

func printRuns(cmd *cobra.Command, runs []booking.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tTRIGGER\tTARGET\tTRIES\tRESULT")
	for _, r := range runs {
		result := r.Outcome.String()
		if r.Skipped {
			result = "skipped"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Trigger,
			r.TargetDate.Format(booking.DateLayout), r.Tries, result)
	}
	_ = tw.Flush()
}
