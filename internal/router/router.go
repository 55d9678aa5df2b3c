package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/marktrack-api/internal/config"
	"github.com/noah-isme/marktrack-api/internal/handler"
	"github.com/noah-isme/marktrack-api/internal/middleware"
	"github.com/noah-isme/marktrack-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubjectHandler      *handler.SubjectHandler
	StudentHandler      *handler.StudentHandler
	MarkHandler         *handler.MarkHandler
	ReportHandler       *handler.ReportHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
	RateLimiter         fiber.Handler
	HealthChecks        map[string]handler.HealthCheckFunc
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole(middleware.AuthRoleTeacher)

	if deps.SubjectHandler != nil {
		deps.SubjectHandler.Register(api.Group("/subjects", jwtMiddleware, rateLimiter))
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", jwtMiddleware, rateLimiter, teacherOnly))
	}

	if deps.MarkHandler != nil {
		deps.MarkHandler.Register(api.Group("/marks", jwtMiddleware, rateLimiter, teacherOnly))
	}

	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(api.Group("/reports", jwtMiddleware, rateLimiter))
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", jwtMiddleware, rateLimiter, teacherOnly))
	}
}
