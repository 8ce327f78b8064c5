package server

import (
	"github.com/gofiber/fiber/v2"

	"pdfexport/internal/export"
	"pdfexport/internal/http/handlers"
	"pdfexport/internal/http/middleware"
	"pdfexport/internal/infra/logging"
	"pdfexport/internal/tokens"
)

// Deps bundles what the HTTP surface needs.
type Deps struct {
	Pipeline *export.Pipeline
	// Tokens may be nil to run without API-key auth.
	Tokens *tokens.Store
}

// New builds the configured fiber app. All responses, including errors and
// 404s, are JSON.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    code,
					"message": msg,
				},
			})
		},
	})

	middleware.Register(app, deps.Tokens)

	v1 := app.Group("/v1")
	v1.Post("/export", handlers.HandleExport(deps.Pipeline))

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}
