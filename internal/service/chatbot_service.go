package service

import (
	"context"
	"strings"
	"time"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/dto"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/pkg/apperror"
	"ai-medical-chat-be/internal/pkg/logger"
	"ai-medical-chat-be/pkg/chat/access"
	"ai-medical-chat-be/pkg/chat/history"
	"ai-medical-chat-be/pkg/chat/prompt"
	"ai-medical-chat-be/pkg/chat/session"
	"ai-medical-chat-be/pkg/events"
	"ai-medical-chat-be/pkg/llm"

	"github.com/google/uuid"
)

var ErrEmptyMessage = apperror.New(apperror.ErrValidation, "Message must not be empty")

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	CreateSession(ctx context.Context, user *entity.User) (*dto.SessionResponse, error)
	GetAllSessions(ctx context.Context, user *entity.User) ([]*dto.SessionResponse, error)
	GetChatHistory(ctx context.Context, user *entity.User, sessionId string) ([]*dto.ChatHistoryResponse, error)
	SendChat(ctx context.Context, user *entity.User, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type ChatbotOptions struct {
	ContextWindow int
	LLMTimeout    time.Duration
}

// chatbotService coordinates domain components
type chatbotService struct {
	guard          *access.Guard
	registry       *session.Registry
	conversation   *history.Log
	promptBuilder  *prompt.Builder
	llmProvider    llm.LLMProvider
	eventPublisher events.Publisher
	logger         logger.ILogger
	opts           ChatbotOptions
}

func NewChatbotService(
	guard *access.Guard,
	registry *session.Registry,
	conversation *history.Log,
	promptBuilder *prompt.Builder,
	llmProvider llm.LLMProvider,
	eventPublisher events.Publisher,
	log logger.ILogger,
	opts ChatbotOptions,
) IChatbotService {
	return &chatbotService{
		guard:          guard,
		registry:       registry,
		conversation:   conversation,
		promptBuilder:  promptBuilder,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		logger:         log,
		opts:           opts,
	}
}

func toSessionResponse(s *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{Id: s.Id, Title: s.Title, CreatedAt: s.CreatedAt}
}

// parseSessionID treats a malformed id like an unknown one.
func parseSessionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, access.ErrSessionNotFound
	}
	return id, nil
}

func (cs *chatbotService) CreateSession(ctx context.Context, user *entity.User) (*dto.SessionResponse, error) {
	chatSession, err := cs.registry.Create(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	publish(ctx, cs.eventPublisher, cs.logger, events.New(events.TypeChatSessionCreated, map[string]interface{}{
		"user_id":    user.Id.String(),
		"session_id": chatSession.Id.String(),
	}))
	return toSessionResponse(chatSession), nil
}

func (cs *chatbotService) GetAllSessions(ctx context.Context, user *entity.User) ([]*dto.SessionResponse, error) {
	sessions, err := cs.registry.List(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, toSessionResponse(s))
	}
	return res, nil
}

func (cs *chatbotService) GetChatHistory(ctx context.Context, user *entity.User, sessionId string) ([]*dto.ChatHistoryResponse, error) {
	id, err := parseSessionID(sessionId)
	if err != nil {
		return nil, err
	}
	chatSession, err := cs.guard.AuthorizeSession(ctx, user, id)
	if err != nil {
		return nil, err
	}

	messages, err := cs.conversation.History(ctx, chatSession.Id)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatHistoryResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, &dto.ChatHistoryResponse{Role: m.Role, Content: m.Content})
	}
	return res, nil
}

// SendChat runs one chat turn. The user message is committed before the model
// is called, and no transaction is open during the call. A failed call is
// reported in the reply and leaves no assistant message behind.
func (cs *chatbotService) SendChat(ctx context.Context, user *entity.User, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if strings.TrimSpace(request.Message) == "" {
		return nil, ErrEmptyMessage
	}
	id, err := parseSessionID(request.SessionId)
	if err != nil {
		return nil, err
	}

	chatSession, err := cs.guard.AuthorizeSession(ctx, user, id)
	if err != nil {
		return nil, err
	}

	appended, err := cs.conversation.Append(ctx, chatSession, constant.ChatMessageRoleUser, request.Message)
	if err != nil {
		return nil, err
	}
	title := appended.Title

	window, err := cs.conversation.Window(ctx, chatSession.Id, cs.opts.ContextWindow)
	if err != nil {
		return nil, err
	}
	fullPrompt := cs.promptBuilder.Build(window, request.Message)

	start := time.Now()
	reply, genErr := cs.generate(ctx, fullPrompt)
	details := map[string]interface{}{
		"session_id":  chatSession.Id.String(),
		"provider":    cs.llmProvider.Name(),
		"window":      len(window),
		"duration_ms": time.Since(start).Milliseconds(),
	}

	if genErr != nil {
		details["error"] = genErr
		cs.logger.Error("CHAT", "Model call failed", details)
		cs.publishTurn(ctx, user, chatSession, false)
		return &dto.SendChatResponse{
			Reply: constant.ChatUpstreamErrorPrefix + genErr.Error(),
			Title: title,
		}, nil
	}
	cs.logger.Debug("CHAT", "Model call succeeded", details)

	stored, err := cs.conversation.Append(ctx, chatSession, constant.ChatMessageRoleAssistant, reply)
	if err != nil {
		return nil, err
	}
	cs.publishTurn(ctx, user, chatSession, true)

	return &dto.SendChatResponse{Reply: reply, Title: stored.Title}, nil
}

func (cs *chatbotService) generate(ctx context.Context, fullPrompt string) (string, error) {
	if cs.opts.LLMTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cs.opts.LLMTimeout)
		defer cancel()
	}
	return cs.llmProvider.Generate(ctx, fullPrompt)
}

func (cs *chatbotService) publishTurn(ctx context.Context, user *entity.User, chatSession *entity.ChatSession, upstreamOK bool) {
	publish(ctx, cs.eventPublisher, cs.logger, events.New(events.TypeChatTurnCompleted, map[string]interface{}{
		"user_id":     user.Id.String(),
		"session_id":  chatSession.Id.String(),
		"upstream_ok": upstreamOK,
	}))
}
