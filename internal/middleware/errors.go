package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const genericServerError = "Server xatosi"

// ErrorHandler renders every error as {success:false, message}. Only *fiber.Error
// messages reach the client; anything else is logged and replaced with a generic text.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := genericServerError

		var fe *fiber.Error
		if asFiberError(err, &fe) {
			status = fe.Code
			message = fe.Message
		} else if logger != nil {
			logger.Error("unhandled error", slog.String("path", c.Path()), slog.String("request_id", RequestIDFrom(c)), slog.Any("error", err))
		}

		return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
	}
}

func asFiberError(err error, target **fiber.Error) bool {
	return errors.As(err, target)
}
