package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remimse/tennis-bots/internal/infrastructure/crypto"
	"github.com/remimse/tennis-bots/internal/interfaces/web"
)

// readSecret returns flag when set, otherwise the first line of stdin.
func readSecret(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password given; use --password or pipe it on stdin")
	}
	return line, nil
}

func newSealPasswordCmd(opts *rootOptions) *cobra.Command {
	var password string
	c := &cobra.Command{
		Use:   "seal-password",
		Short: "Encrypt the portal password with CRED_ENC_KEY for use as PORTAL_PASSWORD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if len(cfg.CredEncKey) == 0 {
				return errors.New("CRED_ENC_KEY is not set; generate one with `tennisbot keys`")
			}
			s, err := crypto.New(cfg.CredEncKey)
			if err != nil {
				return err
			}
			pw, err := readSecret(cmd, password)
			if err != nil {
				return err
			}
			sealed, err := s.Seal(pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export PORTAL_PASSWORD='%s'\n", sealed)
			return nil
		},
	}
	c.Flags().StringVar(&password, "password", "", "password to seal (default: read from stdin)")
	return c
}

func newHashPasswordCmd() *cobra.Command {
	var password string
	c := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, password)
			if err != nil {
				return err
			}
			hash, err := web.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export ADMIN_PASSWORD_HASH='%s'\n", hash)
			return nil
		},
	}
	c.Flags().StringVar(&password, "password", "", "admin password (default: read from stdin)")
	return c
}
