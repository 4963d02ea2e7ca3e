package cmd

import (
	"github.com/spf13/cobra"

	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/lists"
	"github.com/zfogg/pageshare/pkg/output"
)

// newSetCmd builds the add/remove/list commands for one per-user set.
func newSetCmd(kind lists.Kind, use, item string) *cobra.Command {
	parent := &cobra.Command{
		Use:   use,
		Short: "Manage your " + kind.Name,
	}

	withSet := func(cmd *cobra.Command, fn func(set *lists.Set) error) error {
		handle, err := actingHandle()
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), func(a *app) error {
			return fn(lists.NewSet(a.store, kind, handle))
		})
	}

	add := &cobra.Command{
		Use:   "add <" + item + ">",
		Short: "Add to your " + kind.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSet(cmd, func(set *lists.Set) error {
				changed, err := set.Add(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !changed {
					output.PrintInfo("%s is already in your %s", args[0], kind.Name)
					return nil
				}
				output.PrintSuccess("Added %s to your %s", args[0], kind.Name)
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <" + item + ">",
		Short: "Remove from your " + kind.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSet(cmd, func(set *lists.Set) error {
				removed, err := set.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return clierrors.NotFoundError(kind.Name, args[0])
				}
				output.PrintSuccess("Removed %s from your %s", args[0], kind.Name)
				return nil
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <" + item + ">",
		Short: "Add to or remove from your " + kind.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSet(cmd, func(set *lists.Set) error {
				on, err := set.Toggle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if on {
					output.PrintSuccess("Added %s to your %s", args[0], kind.Name)
				} else {
					output.PrintSuccess("Removed %s from your %s", args[0], kind.Name)
				}
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your " + kind.Name,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSet(cmd, func(set *lists.Set) error {
				items := set.All(cmd.Context())
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{it})
				}
				return output.PrintTable(kind.Name, items, []string{item}, rows)
			})
		},
	}

	parent.AddCommand(add, remove, toggle, list)
	return parent
}
