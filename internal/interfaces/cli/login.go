package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/remimse/tennis-bots/internal/application/usecases"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to the portal once and report whether the credentials work",
		Args:  cobra.NoArgs,
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

			sess, err := a.browser.NewSession(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			if err := usecases.CheckLogin(ctx, sess, a.cfg.Portal.Username, a.cfg.Portal.Password); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return &ExitError{Code: 1}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", a.cfg.Portal.Username)
			return nil
		},
	}
}
