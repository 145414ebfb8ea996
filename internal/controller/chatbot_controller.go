package controller

import (
	"ai-medical-chat-be/internal/dto"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/pkg/apperror"
	"ai-medical-chat-be/internal/pkg/serverutils"
	"ai-medical-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router, requireAuth fiber.Handler)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
}

type chatbotController struct {
	service service.IChatbotService
}

func NewChatbotController(service service.IChatbotService) IChatbotController {
	return &chatbotController{service: service}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	r.Post("/sessions", requireAuth, c.CreateSession)
	r.Get("/sessions", requireAuth, c.GetAllSessions)
	r.Get("/sessions/:id/messages", requireAuth, c.GetChatHistory)
	r.Post("/chat", requireAuth, c.SendChat)
}

func currentUser(ctx *fiber.Ctx) (*entity.User, error) {
	user, ok := serverutils.CurrentUser(ctx)
	if !ok {
		return nil, apperror.New(apperror.ErrUnauthenticated, "Not authenticated")
	}
	return user, nil
}

func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.CreateSession(ctx.UserContext(), user)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *chatbotController) GetAllSessions(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetAllSessions(ctx.UserContext(), user)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatbotController) GetChatHistory(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetChatHistory(ctx.UserContext(), user, ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request payload")
	}

	res, err := c.service.SendChat(ctx.UserContext(), user, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
