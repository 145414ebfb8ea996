package serverutils

import (
	"errors"

	"ai-medical-chat-be/internal/dto"
	"ai-medical-chat-be/internal/pkg/apperror"
	"ai-medical-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps error kinds to HTTP statuses. Unknown errors are logged
// and answered with a generic 500.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status, detail := classify(err)
		if status == fiber.StatusInternalServerError {
			log.Error("HTTP", "Unhandled error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err,
			})
		}
		if status == fiber.StatusUnauthorized {
			ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}
		return ctx.Status(status).JSON(dto.ErrorResponse{Detail: detail})
	}
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, apperror.ErrUnauthenticated):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
