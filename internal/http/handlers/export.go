package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pdfexport/internal/export"
	"pdfexport/internal/infra/logging"
)

// HandleExport returns the fiber handler for POST /v1/export. The response
// body is always one of the two tool-contract shapes: the success result or
// {success:false, error}.
func HandleExport(pipe *export.Pipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req export.Request
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(export.Failure{Success: false, Error: "invalid JSON body: " + err.Error()})
		}

		res, err := pipe.Export(c.Context(), req)
		if err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, export.ErrValidation) {
				status = fiber.StatusBadRequest
			}
			return c.Status(status).JSON(export.FailureFrom(err))
		}

		requestID := c.Get("X-Request-ID")
		logging.Info("Export request served", "filename", res.Filename, "request_id", requestID)
		return c.JSON(res)
	}
}
