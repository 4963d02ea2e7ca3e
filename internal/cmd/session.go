package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/output"
	"github.com/zfogg/pageshare/pkg/prompter"
	"github.com/zfogg/pageshare/pkg/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the handle the CLI acts as",
}

var sessionSetCmd = &cobra.Command{
	Use:   "set [handle]",
	Short: "Save the acting handle",
	Long:  "Save the acting handle. Without an argument the handle is asked for interactively.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input string
		if len(args) == 1 {
			input = args[0]
		} else {
			if !prompter.IsInteractive() {
				return clierrors.ValidationError("handle", "pass a handle or run in a terminal")
			}
			var err error
			if input, err = prompter.PromptString("Handle: "); err != nil {
				return err
			}
		}

		handle := strings.TrimPrefix(strings.TrimSpace(input), "@")
		if handle == "" {
			return clierrors.ValidationError("handle", "cannot be empty")
		}
		if err := session.Save(&session.Session{Handle: handle}); err != nil {
			return clierrors.NewCLIError(clierrors.ErrorTypeSession, "Failed to save session", err)
		}
		output.PrintSuccess("Acting as @%s", handle)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the acting handle",
	RunE: func(cmd *cobra.Command, args []string) error {
		handle, err := actingHandle()
		if err != nil {
			return err
		}
		return output.PrintRecord("Session", []output.Field{{Key: "handle", Value: handle}})
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved handle",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.Delete(); err != nil {
			return clierrors.NewCLIError(clierrors.ErrorTypeSession, "Failed to delete session", err)
		}
		output.PrintSuccess("Session cleared")
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}
