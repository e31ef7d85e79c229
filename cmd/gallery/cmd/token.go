package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/hasher"
	"github.com/rise-and-shine/gallery/token"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token [owner]",
		Short: "Print a bearer token for owner (default sync.owner)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			owner := a.cfg.Sync.Owner
			if len(args) == 1 {
				owner = args[0]
			}
			if a.cfg.Auth.Secret == "" {
				return missing("auth.secret")
			}

			maker, err := token.NewJWTMaker(a.cfg.Auth.Secret, a.cfg.Auth.Issuer)
			if err != nil {
				return err
			}
			signed, _, err := maker.CreateToken(owner, a.cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
}

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "passwd",
		Short:       "Read a password from stdin and print its hash for upload.owners",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errx.New("empty password", errx.WithDetails(errx.D{"read_error": fmt.Sprint(err)}))
			}
			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
