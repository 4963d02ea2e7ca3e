package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/zfogg/pageshare/pkg/client"
	"github.com/zfogg/pageshare/pkg/config"
	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/lists"
	"github.com/zfogg/pageshare/pkg/logger"
	"github.com/zfogg/pageshare/pkg/output"
	"github.com/zfogg/pageshare/pkg/session"
	"github.com/zfogg/pageshare/pkg/telemetry"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	asHandle   string

	tracerProvider *sdktrace.TracerProvider
)

var rootCmd = &cobra.Command{
	Use:   "pageshare",
	Short: "PageShare CLI - local feed mirror and store daemon",
	Long: `PageShare CLI keeps a local, size-bounded mirror of your PageShare feed,
bookmarks, blocked and muted users, recent searches and watchlist, and can
serve that store to the browser client.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return clierrors.NewCLIError(clierrors.ErrorTypeConfig, "Error initializing config", err)
		}

		logger.Init(logger.Options{
			Level:   config.GetString("log.level"),
			Verbose: verbose,
			File:    config.GetString("log.file"),
		})

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError("output", "must be text, json or table")
			}
			config.Set("output.format", outputFmt)
		}

		tp, err := telemetry.InitTracer(cmd.Context(), config.Telemetry())
		if err != nil {
			logger.Warn("Tracing disabled", "err", err)
		}
		tracerProvider = tp

		handle, err := session.Handle(asHandle)
		if err != nil {
			logger.Warn("Ignoring unreadable session", "err", err)
		}
		client.SetActingHandle(handle)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if tracerProvider == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces", "err", err)
		}
		tracerProvider = nil
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/pageshare/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&asHandle, "as", "", "Act as this handle instead of the saved session")

	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(newSetCmd(lists.Bookmarks, "bookmark", "post-id"))
	rootCmd.AddCommand(newSetCmd(lists.BlockedUsers, "block", "handle"))
	rootCmd.AddCommand(newSetCmd(lists.MutedUsers, "mute", "handle"))
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(watchlistCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
