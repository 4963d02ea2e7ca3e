package cmd

import (
	"time"

	"github.com/spf13/cobra"

	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/lists"
	"github.com/zfogg/pageshare/pkg/output"
	"github.com/zfogg/pageshare/pkg/prompter"
)

var (
	searchType       string
	searchGrouped    bool
	searchClearForce bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search history commands",
}

var searchRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Manage recent searches",
	Long:  "Record, list and forget recent account, stock and crypto searches (newest first, at most 20)",
}

var searchRecentAddCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Remember a search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			s, err := lists.NewRecentSearches(a.store).Add(cmd.Context(), args[0], searchType)
			if err != nil {
				return err
			}
			output.PrintSuccess("Saved %s search %q (%s)", s.Type, s.Query, s.ID)
			return nil
		})
	},
}

var searchRecentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			recent := lists.NewRecentSearches(a.store)
			if searchGrouped {
				grouped := recent.ByType(cmd.Context())
				if output.GetOutputFormat() == output.FormatJSON {
					return output.Print("", grouped)
				}
				for _, g := range []struct {
					title    string
					searches []lists.Search
				}{
					{"Accounts", grouped.Accounts},
					{"Stocks", grouped.Stocks},
					{"Crypto", grouped.Cryptos},
				} {
					if err := printSearches(g.title, g.searches); err != nil {
						return err
					}
				}
				return nil
			}
			return printSearches("Recent searches", recent.All(cmd.Context()))
		})
	},
}

var searchRecentRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Forget one search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			removed, err := lists.NewRecentSearches(a.store).Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return clierrors.NotFoundError("Recent search", args[0])
			}
			output.PrintSuccess("Removed search %s", args[0])
			return nil
		})
	},
}

var searchRecentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := prompter.Confirm("Forget all recent searches?", searchClearForce)
		if err != nil {
			return err
		}
		if !ok {
			output.PrintInfo("Cancelled. Pass --force to skip the prompt.")
			return nil
		}
		return withApp(cmd.Context(), func(a *app) error {
			if err := lists.NewRecentSearches(a.store).Clear(cmd.Context()); err != nil {
				return clierrors.StorageError("Failed to clear recent searches", err)
			}
			output.PrintSuccess("Recent searches cleared")
			return nil
		})
	},
}

func printSearches(title string, searches []lists.Search) error {
	rows := make([][]string, 0, len(searches))
	for _, s := range searches {
		rows = append(rows, []string{s.ID, s.Type, s.Query, s.Timestamp.Local().Format(time.DateTime)})
	}
	return output.PrintTable(title, searches, []string{"ID", "Type", "Query", "When"}, rows)
}

func init() {
	searchCmd.AddCommand(searchRecentCmd)
	searchRecentCmd.AddCommand(searchRecentAddCmd)
	searchRecentCmd.AddCommand(searchRecentListCmd)
	searchRecentCmd.AddCommand(searchRecentRemoveCmd)
	searchRecentCmd.AddCommand(searchRecentClearCmd)

	searchRecentAddCmd.Flags().StringVarP(&searchType, "type", "t", lists.SearchTypeAccount, "Search type: account, stock, crypto")
	searchRecentListCmd.Flags().BoolVar(&searchGrouped, "grouped", false, "Group by search type")
	searchRecentClearCmd.Flags().BoolVar(&searchClearForce, "force", false, "Do not ask for confirmation")
}
