package cmd

import (
	"fmt"
	"os"

	"github.com/code19m/errx"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Add animated GIFs to the gallery",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	store, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}

	var errs error
	for _, path := range args {
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			errs = multierr.Append(errs, errx.Wrap(readErr, errx.WithDetails(errx.D{"file": path})))
			continue
		}

		id, addErr := store.Add(cmd.Context(), raw)
		if addErr != nil {
			errs = multierr.Append(errs, errx.Wrap(addErr, errx.WithDetails(errx.D{"file": path})))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, path)
	}
	return errs
}
