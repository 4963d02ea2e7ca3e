package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/lists"
	"github.com/zfogg/pageshare/pkg/output"
)

var watchItem lists.WatchlistItem

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage followed tickers",
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add <ticker>",
	Short: "Follow a ticker, or update its quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item := watchItem
		item.Ticker = args[0]
		return withApp(cmd.Context(), func(a *app) error {
			saved, err := lists.NewWatchlist(a.store).Add(cmd.Context(), item)
			if err != nil {
				return err
			}
			output.PrintSuccess("Watching %s", saved.Ticker)
			return nil
		})
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove <ticker>",
	Short: "Stop following a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			removed, err := lists.NewWatchlist(a.store).Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return clierrors.NotFoundError("Watchlist ticker", args[0])
			}
			output.PrintSuccess("Removed %s", args[0])
			return nil
		})
	},
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List followed tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			items := lists.NewWatchlist(a.store).All(cmd.Context())
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{
					it.Ticker,
					it.Name,
					fmt.Sprintf("%.2f", it.Price),
					fmt.Sprintf("%+.2f%%", it.Change),
				})
			}
			return output.PrintTable("Watchlist", items, []string{"Ticker", "Name", "Price", "Change"}, rows)
		})
	},
}

func init() {
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
	watchlistCmd.AddCommand(watchlistListCmd)

	watchlistAddCmd.Flags().StringVar(&watchItem.Name, "name", "", "Display name (defaults to the ticker)")
	watchlistAddCmd.Flags().Float64Var(&watchItem.Price, "price", 0, "Last price")
	watchlistAddCmd.Flags().Float64Var(&watchItem.Change, "change", 0, "Percent change")
	watchlistAddCmd.Flags().StringVar(&watchItem.Image, "image", "", "Logo URL")
}
