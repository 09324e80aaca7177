// Package cli holds the tennisbot cobra commands.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

// ExitError ends the process with Code without printing anything further;
// the command has already reported what happened.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

func NewRoot() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "tennisbot",
		Short:         "Books a tennis court on the residents portal the moment the booking window opens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML preferences file (default $CONFIG_FILE or config/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newBookCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newKeysCmd())
	cmd.AddCommand(newSealPasswordCmd(opts))
	cmd.AddCommand(newHashPasswordCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := NewRoot().Execute()
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}
