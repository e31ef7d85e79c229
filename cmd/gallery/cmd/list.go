package cmd

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/pagination"
	"github.com/rise-and-shine/gallery/sorter"
	"github.com/spf13/cobra"
)

const (
	sortByID      = "id"
	sortByCreated = "created"
)

// listOrder holds the comparisons accepted by --sort. Missing creation
// times compare as the zero time.
var listOrder = map[string]sorter.Compare[*asset.Asset]{
	sortByID: func(a, b *asset.Asset) int {
		return strings.Compare(a.ID(), b.ID())
	},
	sortByCreated: func(a, b *asset.Asset) int {
		ta, _ := a.CreationTime()
		tb, _ := b.CreationTime()
		return ta.Compare(tb)
	},
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gallery assets, newest first",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cmd.Flags().String("sort", "", "sort order, e.g. \"created:asc\" or \"id:desc\"")
	cmd.Flags().Int("page", 1, "page number, used with --size")
	cmd.Flags().Int("size", 0, "assets per page (0 lists everything)")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	store, err := appFrom(cmd).openStore(cmd.Context())
	if err != nil {
		return err
	}

	sortBy, _ := cmd.Flags().GetString("sort")
	pageNumber, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")

	out := cmd.OutOrStdout()
	idColor := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	assets := store.Assets()
	if len(assets) == 0 {
		fmt.Fprintln(out, "(no assets)")
		return nil
	}

	sorter.Apply(assets, sorter.Parse(sortBy, sortByID, sortByCreated), listOrder)

	page := pagination.Of(assets, pagination.Request{
		PageNumber: pageNumber,
		PageSize:   cmp.Or(size, len(assets)),
	}, pagination.WithMaxPageSize(len(assets)))

	for _, a := range page.Items {
		created := "unknown"
		if t, ok := a.CreationTime(); ok {
			created = t.Local().Format(time.DateTime)
		}
		fmt.Fprintf(out, "%s\t%s\n", idColor.Sprint(a.ID()), dim.Sprint(created))
	}
	if size > 0 {
		fmt.Fprintln(out, dim.Sprintf("page %d of %d (%d assets)", page.PageNumber, page.PageCount, page.TotalCount))
	}
	return nil
}
