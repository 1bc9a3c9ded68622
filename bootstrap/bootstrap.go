package bootstrap

import (
	"context"

	"givehub-backend/internal/config"
	"givehub-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless hosting (the api handler imports this package,
// not internal). Notifications are delivered in-process; the sweeper stays off there and
// recurring donations are advanced through the admin endpoints.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.RecurrenceSweepInterval = 0
	app, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	app.Start(context.Background())
	return app.Fiber, nil
}
