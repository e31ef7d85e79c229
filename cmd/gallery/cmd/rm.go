package cmd

import (
	"fmt"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// CodeUnknownAsset is returned for ids that are not in the gallery.
const CodeUnknownAsset = "UNKNOWN_ASSET"

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove assets and their files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRm,
	}
}

func runRm(cmd *cobra.Command, args []string) error {
	store, err := appFrom(cmd).openStore(cmd.Context())
	if err != nil {
		return err
	}

	var errs error
	var targets []*asset.Asset
	for _, id := range args {
		a, ok := store.Get(id)
		if !ok {
			errs = multierr.Append(errs, errx.New("no such asset",
				errx.WithCode(CodeUnknownAsset),
				errx.WithDetails(errx.D{"asset_id": id}),
			))
			continue
		}
		targets = append(targets, a)
	}

	removed, err := store.Remove(cmd.Context(), targets...)
	for _, id := range removed {
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
	}
	return multierr.Append(errs, err)
}
