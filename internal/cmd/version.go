package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/pageshare/pkg/output"
)

// Version is set at build time with -ldflags "-X github.com/zfogg/pageshare/internal/cmd.Version=..."
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.PrintRecord("PageShare CLI", []output.Field{{Key: "version", Value: Version}})
	},
}
