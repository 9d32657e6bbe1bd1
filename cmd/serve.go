package cmd

import (
	"os/signal"
	"syscall"

	"github.com/huangsam/fragility/core"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment pipeline over HTTP",
	Long: `Start an HTTP API backed by the same pipeline as the CLI.

Endpoints:
  GET  /health             - service status
  POST /api/v1/predict     - assess {"region_id": ...} or {"bounding_box": {...}}
  GET  /api/v1/scenarios   - scenario catalog
  GET  /api/v1/regions     - known region ids

Examples:
  # Serve on the default port
  fragility serve

  # Serve with live weather on port 9000
  fragility serve --port 9000 --live-weather --live-fallback`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		assessor, cleanup, err := core.NewAssessorFromConfig(rootCtx, cfg, cacheManager)
		if err != nil {
			return err
		}
		defer func() { _ = cleanup() }()

		app := server.New(assessor, server.Options{
			AppName:   cfg.AppName,
			AccessLog: true,
		})

		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := server.Run(ctx, app, cfg.Port); err != nil {
			contract.LogFatal("Server error", err)
		}
		return nil
	},
}
