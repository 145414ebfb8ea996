package bootstrap

import (
	"context"
	"fmt"
	"log"

	"ai-medical-chat-be/internal/config"
	"ai-medical-chat-be/internal/controller"
	"ai-medical-chat-be/internal/migrations"
	"ai-medical-chat-be/internal/pkg/logger"
	"ai-medical-chat-be/internal/pkg/serverutils"
	"ai-medical-chat-be/internal/repository/memory"
	"ai-medical-chat-be/internal/repository/unitofwork"
	"ai-medical-chat-be/internal/service"
	"ai-medical-chat-be/pkg/auth"
	"ai-medical-chat-be/pkg/chat/access"
	"ai-medical-chat-be/pkg/chat/history"
	"ai-medical-chat-be/pkg/chat/prompt"
	"ai-medical-chat-be/pkg/chat/session"
	"ai-medical-chat-be/pkg/database"
	"ai-medical-chat-be/pkg/events"
	"ai-medical-chat-be/pkg/llm"
	"ai-medical-chat-be/pkg/llm/factory"
	pktNats "ai-medical-chat-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const auditConsumerGroup = "audit"

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	ChatbotController controller.IChatbotController
	HealthController  controller.IHealthController

	// RequireAuth guards every session and chat route.
	RequireAuth fiber.Handler

	// Background Services (Exposed for main.go to run)
	AuditConsumer service.IAuditConsumer

	Logger logger.ILogger

	closers []func() error
}

// Dependencies are the infrastructure pieces a container is assembled from.
type Dependencies struct {
	Store      unitofwork.RepositoryFactory
	LLM        llm.LLMProvider
	Publisher  events.Publisher
	Subscriber events.Subscriber
	Logger     logger.ILogger
}

// NewContainer opens the infrastructure named by cfg and assembles the app.
func NewContainer(ctx context.Context, cfg *config.Config) (_ *Container, err error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	var closers []func() error
	defer func() {
		if err != nil {
			closeAll(closers, sysLogger)
		}
	}()

	// 1. Store
	var store unitofwork.RepositoryFactory
	switch cfg.Database.Driver {
	case config.StoreDriverMemory:
		store = memory.NewStore()
		sysLogger.Warn("BOOT", "Using in-memory store, data is lost on restart", nil)
	default:
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		closers = append(closers, sqlDB.Close)

		if cfg.Database.AutoMigrate {
			if err := migrations.Up(ctx, sqlDB); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		store = unitofwork.NewRepositoryFactory(db)
	}

	// 2. Event Bus
	var publisher events.Publisher
	var subscriber events.Subscriber
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS publisher: %w", err)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, auditConsumerGroup)
		if err != nil {
			closers = append(closers, natsPub.Close)
			return nil, fmt.Errorf("failed to connect to NATS subscriber: %w", err)
		}
		closers = append(closers, natsPub.Close, func() error { natsSub.Close(); return nil })
		publisher, subscriber = natsPub, natsSub
	} else {
		bus := events.NewChannelBus()
		closers = append(closers, bus.Close)
		publisher, subscriber = bus, bus
	}

	// 3. Upstream model
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GoogleGemini,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s", llmProvider.Name())

	c := Assemble(cfg, Dependencies{
		Store:      store,
		LLM:        llmProvider,
		Publisher:  publisher,
		Subscriber: subscriber,
		Logger:     sysLogger,
	})
	c.closers = append(c.closers, closers...)
	return c, nil
}

// Assemble wires services and controllers on top of ready infrastructure.
func Assemble(cfg *config.Config, deps Dependencies) *Container {
	sysLogger := deps.Logger
	if sysLogger == nil {
		sysLogger = logger.NewNopLogger()
	}

	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	guard := access.NewGuard(tokens, deps.Store, cfg.Auth.UserCacheTTL, sysLogger)

	registry := session.NewRegistry(deps.Store)
	conversation := history.NewLog(deps.Store, registry)

	authService := service.NewAuthService(deps.Store, hasher, tokens, deps.Publisher, sysLogger)
	chatbotService := service.NewChatbotService(
		guard,
		registry,
		conversation,
		prompt.NewBuilder(),
		deps.LLM,
		deps.Publisher,
		sysLogger,
		service.ChatbotOptions{
			ContextWindow: cfg.Chat.ContextWindow,
			LLMTimeout:    cfg.Ai.Timeout,
		},
	)

	c := &Container{
		AuthController:    controller.NewAuthController(authService),
		ChatbotController: controller.NewChatbotController(chatbotService),
		HealthController:  controller.NewHealthController(deps.Store, sysLogger),
		RequireAuth:       serverutils.JwtMiddleware(guard),
		Logger:            sysLogger,
	}
	if deps.Subscriber != nil {
		c.AuditConsumer = service.NewAuditConsumer(deps.Subscriber, sysLogger)
	}
	return c
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	closeAll(c.closers, c.Logger)
	_ = c.Logger.Sync()
}

// closeAll runs closers newest first.
func closeAll(closers []func() error, log logger.ILogger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			log.Warn("BOOT", "Failed to close resource", map[string]interface{}{"error": err})
		}
	}
}
