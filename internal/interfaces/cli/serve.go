package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/remimse/tennis-bots/internal/application/scheduler"
	"github.com/remimse/tennis-bots/internal/application/usecases"
	"github.com/remimse/tennis-bots/internal/interfaces/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Wait for the daily trigger and book; serves the status UI when WEB_ADDR is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.cfg.RequireCredentials(); err != nil {
				return err
			}
			at, err := a.cfg.TriggerClock()
			if err != nil {
				return fmt.Errorf("trigger_time: %w", err)
			}

			runner := a.runner()
			daily := &scheduler.Daily{Job: runner, At: at, Location: a.loc, Logger: a.log}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return daily.Run(gctx) })

			if addr := a.cfg.Web.Addr; addr != "" {
				ws := &web.Server{
					Sessions: web.NewSessionManager(a.cfg.Web.SessionHashKey, a.cfg.Web.SessionBlockKey),
					Admin:    web.Admin{Username: a.cfg.Web.AdminUsername, PasswordHash: a.cfg.Web.AdminPasswordHash},
					Runner:   runner,
					Runs:     a.recorder,
					Prefs:    a.prefs,
					NextRun:  daily.NextRun,
					Logger:   a.log,
					BaseCtx:  gctx,
				}
				g.Go(func() error { return web.Start(gctx, addr, ws.Routes(), a.log) })
			}

			a.log.Info("tennisbot started",
				"trigger", scheduler.Spec(at), "tz", a.loc.String(),
				"next_run", daily.NextRun(time.Now()))
			if a.notifier != nil {
				a.notifier.Send(ctx, usecases.StartupMessage)
			}

			err = g.Wait()
			a.log.Info("tennisbot stopped")
			return err
		},
	}
}
