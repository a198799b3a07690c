package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/tgtg-watcher/internal/api/client"
	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

func snapshotsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snap"},
		Short:   "Query recorded stock snapshots",
	}
	root.AddCommand(snapshotsListCmd(), snapshotsGetCmd())
	return root
}

func snapshotsListCmd() *cobra.Command {
	var params apiclient.ListSnapshotsParams

	c := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Example: `  tgtg snapshots list --in-stock
  tgtg snapshots list --search home --order-by available --limit 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().ListSnapshots(context.Background(), &params)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(resp)
			}
			if len(resp.Snapshots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots found.")
				return nil
			}
			if err := printSnapshotTable(cmd.OutOrStdout(), resp.Snapshots); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d (offset %d)\n",
				len(resp.Snapshots), resp.Total, resp.Offset)
			return nil
		},
	}

	fl := c.Flags()
	fl.StringVar(&params.Search, "search", "", "only snapshots from this saved search")
	fl.BoolVar(&params.InStock, "in-stock", false, "only bags with stock left")
	fl.IntVar(&params.Limit, "limit", 0, "maximum results (server default 50)")
	fl.IntVar(&params.Offset, "offset", 0, "results to skip")
	fl.StringVar(&params.OrderBy, "order-by", "", "sort: available, name, updated_at")
	return c
}

func snapshotsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <item-id>",
		Short: "Show one item's snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().GetSnapshot(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(s)
			}
			return printSnapshotTable(cmd.OutOrStdout(), []domain.StockSnapshot{*s})
		},
	}
}
