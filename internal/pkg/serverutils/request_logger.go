package serverutils

import (
	"time"

	"ai-medical-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

func RequestLogger(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet.
			status, _ = classify(err)
		}
		details := map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if user, ok := CurrentUser(ctx); ok {
			details["user_id"] = user.Id.String()
		}
		log.Info("HTTP", "Request handled", details)
		return err
	}
}
