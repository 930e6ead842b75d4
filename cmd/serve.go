package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront/app"
	"storefront/logging"
)

// serveCmd starts the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		defer logging.Sync()

		a, err := app.Initialize(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		// 0.0.0.0 accepts connections from all interfaces (Docker)
		addr := "0.0.0.0:" + cfg.Port
		logging.Sugar.Infof("Catalog: GET %s/api/items", cfg.BaseURL)
		return a.Serve(ctx, addr)
	},
}
