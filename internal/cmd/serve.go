package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zfogg/pageshare/internal/server"
	"github.com/zfogg/pageshare/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local store over HTTP",
	Long:  "Run the store daemon the browser client persists through. Stops on SIGINT or SIGTERM.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serviceName := ""
		if tracing := config.Telemetry(); tracing.Enabled {
			serviceName = tracing.ServiceName
		}

		return withApp(ctx, func(a *app) error {
			srv := server.New(server.Config{
				Host:            config.GetString("server.host"),
				Port:            config.GetString("server.port"),
				AllowedOrigins:  config.GetStringSlice("server.allowed_origins"),
				ShutdownTimeout: time.Duration(config.GetInt("server.shutdown_timeout")) * time.Second,
				DebounceDelay:   config.DebounceDelay(),
				SyncTimeout:     config.SyncTimeout(),
				ServiceName:     serviceName,
			}, a.store, a.registry)
			return srv.Run(ctx)
		})
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (overrides server.port)")
	serveCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			config.Set("server.port", port)
		}
	}
}
