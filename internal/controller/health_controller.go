package controller

import (
	"context"
	"time"

	"ai-medical-chat-be/internal/pkg/logger"
	"ai-medical-chat-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewHealthController(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IHealthController {
	return &healthController{uowFactory: uowFactory, logger: log}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/healthz", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	if err := c.uowFactory.Ping(pingCtx); err != nil {
		c.logger.Warn("HEALTH", "Store ping failed", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return ctx.JSON(fiber.Map{"status": "ok"})
}
