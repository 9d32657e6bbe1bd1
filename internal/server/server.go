// Package server exposes the assessment pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/huangsam/fragility/internal/logging"
	"github.com/huangsam/fragility/schema"
)

// Service is the part of the pipeline the HTTP layer needs.
type Service interface {
	Assess(ctx context.Context, req schema.RegionRequest) (schema.Assessment, error)
	Catalog() []schema.ScenarioDefinition
	Regions(ctx context.Context) ([]string, error)
}

// Options configures the fiber app.
type Options struct {
	AppName      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AccessLog    bool
}

// New builds the fiber app with middleware and routes.
func New(svc Service, opts Options) *fiber.App {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	SetupRoutes(app, NewHandler(svc, opts.AppName))
	return app
}

// Run serves the app on port until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, app *fiber.App, port int) error {
	log := logging.New("server")
	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", slog.Int("port", port))
		errCh <- app.Listen(fmt.Sprintf(":%d", port))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

// errorHandler maps pipeline errors to status codes. Unknown regions are 404,
// other bad input is 400, and everything else is 500.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	var notFound *schema.RegionNotFoundError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.As(err, &notFound):
		code = fiber.StatusNotFound
		message = err.Error()
	case schema.IsInputError(err):
		code = fiber.StatusBadRequest
		message = err.Error()
	default:
		logging.New("server").Error("Request failed",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
