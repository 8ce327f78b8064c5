package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"

	"pdfexport/internal/infra/logging"
	"pdfexport/internal/tokens"
)

// Register attaches the global middleware chain. tokenStore may be nil, in
// which case no API-key auth is enforced.
func Register(app *fiber.App, tokenStore *tokens.Store) {
	app.Use(cors.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(healthcheck.New())

	if tokenStore != nil {
		app.Use(keyauth.New(keyauth.Config{
			KeyLookup:  "header:X-API-Key",
			ContextKey: "api_key",
			Validator: func(c *fiber.Ctx, key string) (bool, error) {
				if !tokenStore.Ready() {
					return false, tokens.ErrStoreNotReady
				}
				if !tokenStore.Validate(key) {
					return false, tokens.ErrInvalidAPIKey
				}
				return true, nil
			},
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				// Keyauth can call ErrorHandler with a nil error.
				status := fiber.StatusUnauthorized
				if err == nil {
					err = fiber.ErrUnauthorized
				}
				if err == tokens.ErrStoreNotReady {
					status = fiber.StatusServiceUnavailable
				}
				return c.Status(status).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    status,
						"message": err.Error(),
					},
				})
			},
		}))
	}

	app.Use(func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = c.GetRespHeader("X-Request-ID")
		}
		logging.Info("Incoming request", "method", c.Method(), "path", c.Path(), "request_id", requestID)
		return c.Next()
	})
}
