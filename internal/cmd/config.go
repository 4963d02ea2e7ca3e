package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/pageshare/pkg/config"
	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write CLI settings",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where settings are stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.PrintRecord("Config", []output.Field{
			{Key: "dir", Value: config.GetConfigDir()},
			{Key: "file", Value: config.GetConfigFilePath()},
			{Key: "session", Value: config.GetSessionPath()},
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a setting, e.g. store.backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.PrintRecord("Config", []output.Field{{Key: args[0], Value: config.GetString(args[0])}})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a setting to the user config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return clierrors.NewCLIError(clierrors.ErrorTypeConfig, "Failed to write config", err)
		}
		output.PrintSuccess("Set %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
