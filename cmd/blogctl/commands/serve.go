package commands

import (
	"time"

	"github.com/spf13/cobra"

	"blogmodapk-backend/internal/app"
	"blogmodapk-backend/pkg/logger"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Starting Blog ModAPK API", nil)

		application, err := app.New(cfg)
		if err != nil {
			return err
		}
		return app.Serve(application, shutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Time allowed for in-flight requests on shutdown")
}
