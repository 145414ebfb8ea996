package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/dto"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/pkg/apperror"
	"ai-medical-chat-be/internal/pkg/logger"
	"ai-medical-chat-be/internal/repository/memory"
	"ai-medical-chat-be/pkg/auth"
	"ai-medical-chat-be/pkg/chat/access"
	"ai-medical-chat-be/pkg/chat/history"
	"ai-medical-chat-be/pkg/chat/prompt"
	"ai-medical-chat-be/pkg/chat/session"
	"ai-medical-chat-be/pkg/events"
	"ai-medical-chat-be/pkg/llm/static"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	store     *memory.Store
	tokens    *auth.TokenService
	publisher *recordingPublisher
	llm       *static.Provider
	auth      IAuthService
	chat      IChatbotService
}

func newFixture(t *testing.T, provider *static.Provider, window int) *fixture {
	t.Helper()
	store := memory.NewStore()
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	publisher := &recordingPublisher{}
	log := logger.NewNopLogger()

	registry := session.NewRegistry(store)
	return &fixture{
		store:     store,
		tokens:    tokens,
		publisher: publisher,
		llm:       provider,
		auth:      NewAuthService(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, publisher, log),
		chat: NewChatbotService(
			access.NewGuard(tokens, store, 0, log),
			registry,
			history.NewLog(store, registry),
			prompt.NewBuilder(),
			provider,
			publisher,
			log,
			ChatbotOptions{ContextWindow: window, LLMTimeout: time.Second},
		),
	}
}

func (f *fixture) signup(t *testing.T, email string) *entity.User {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.Signup(ctx, &dto.SignupRequest{Email: email, Password: "pw-" + email})
	require.NoError(t, err)
	user, err := f.store.NewUnitOfWork(ctx).UserRepository().FindByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t, static.NewProvider(""), 10)
	ctx := context.Background()

	res, err := f.auth.Signup(ctx, &dto.SignupRequest{Email: "alice@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", res.Message)

	token, err := f.auth.Login(ctx, &dto.LoginRequest{Username: "alice@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(1800), token.ExpiresIn)

	subject, err := f.tokens.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", subject)

	assert.Equal(t, []string{events.TypeUserRegistered, events.TypeUserLoggedIn}, f.publisher.types())
}

func TestSignup_Errors(t *testing.T) {
	f := newFixture(t, static.NewProvider(""), 10)
	ctx := context.Background()
	f.signup(t, "alice@x.com")

	_, err := f.auth.Signup(ctx, &dto.SignupRequest{Email: "alice@x.com", Password: "other"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.auth.Signup(ctx, &dto.SignupRequest{Email: "not-an-email", Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.auth.Signup(ctx, &dto.SignupRequest{Email: "bob@x.com", Password: strings.Repeat("é", 40)})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLogin_Rejects(t *testing.T) {
	f := newFixture(t, static.NewProvider(""), 10)
	ctx := context.Background()
	f.signup(t, "alice@x.com")

	cases := []dto.LoginRequest{
		{Username: "alice@x.com", Password: "wrong"},
		{Username: "nobody@x.com", Password: "pw-alice@x.com"},
		{Username: "", Password: ""},
	}
	for _, req := range cases {
		_, err := f.auth.Login(ctx, &req)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	}
}

func TestSendChat_FirstTurn(t *testing.T) {
	f := newFixture(t, static.NewProvider("Rest and drink water."), 10)
	ctx := context.Background()
	alice := f.signup(t, "alice@x.com")

	created, err := f.chat.CreateSession(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, constant.DefaultChatSessionTitle, created.Title)

	res, err := f.chat.SendChat(ctx, alice, &dto.SendChatRequest{Message: "I have a headache", SessionId: created.Id.String()})
	require.NoError(t, err)
	assert.Equal(t, "Rest and drink water.", res.Reply)
	assert.Equal(t, "I have a headache", res.Title)

	msgs, err := f.chat.GetChatHistory(ctx, alice, created.Id.String())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, msgs[0].Role)
	assert.Equal(t, "I have a headache", msgs[0].Content)
	assert.Equal(t, constant.ChatMessageRoleAssistant, msgs[1].Role)
	assert.Equal(t, "Rest and drink water.", msgs[1].Content)

	prompts := f.llm.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "User: I have a headache")
	assert.Contains(t, prompts[0], "User Symptoms: I have a headache")

	assert.Contains(t, f.publisher.types(), events.TypeChatSessionCreated)
	assert.Contains(t, f.publisher.types(), events.TypeChatTurnCompleted)
}

func TestSendChat_SecondMessageKeepsTitle(t *testing.T) {
	f := newFixture(t, static.NewProvider("ok"), 10)
	ctx := context.Background()
	alice := f.signup(t, "alice@x.com")
	created, err := f.chat.CreateSession(ctx, alice)
	require.NoError(t, err)

	_, err = f.chat.SendChat(ctx, alice, &dto.SendChatRequest{Message: "Fever since Monday", SessionId: created.Id.String()})
	require.NoError(t, err)
	res, err := f.chat.SendChat(ctx, alice, &dto.SendChatRequest{Message: "Also a sore throat", SessionId: created.Id.String()})
	require.NoError(t, err)
	assert.Equal(t, "Fever since Monday", res.Title)

	prompts := f.llm.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "User: Fever since Monday\nMedical Assistant: ok\nUser: Also a sore throat")
}

func TestSendChat_WindowLimitsContext(t *testing.T) {
	f := newFixture(t, static.NewProvider("ok"), 2)
	ctx := context.Background()
	alice := f.signup(t, "alice@x.com")
	created, err := f.chat.CreateSession(ctx, alice)
	require.NoError(t, err)

	for _, m := range []string{"first", "second", "third"} {
		_, err := f.chat.SendChat(ctx, alice, &dto.SendChatRequest{Message: m, SessionId: created.Id.String()})
		require.NoError(t, err)
	}

	last := f.llm.Prompts()[2]
	assert.Contains(t, last, "Medical Assistant: ok\nUser: third")
	assert.NotContains(t, last, "User: second")
}

func TestSendChat_UpstreamFailureIsNotPersisted(t *testing.T) {
	f := newFixture(t, static.NewFailingProvider(errors.New("connection refused")), 10)
	ctx := context.Background()
	alice := f.signup(t, "alice@x.com")
	created, err := f.chat.CreateSession(ctx, alice)
	require.NoError(t, err)

	res, err := f.chat.SendChat(ctx, alice, &dto.SendChatRequest{Message: "Dizzy", SessionId: created.Id.String()})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Reply, "Error: "))
	assert.Contains(t, res.Reply, "connection refused")
	assert.Equal(t, "Dizzy", res.Title)

	msgs, err := f.chat.GetChatHistory(ctx, alice, created.Id.String())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, constant.ChatMessageRoleUser, msgs[0].Role)
}

func TestSendChat_Rejects(t *testing.T) {
	f := newFixture(t, static.NewProvider("ok"), 10)
	ctx := context.Background()
	alice := f.signup(t, "alice@x.com")
	bob := f.signup(t, "bob@x.com")
	created, err := f.chat.CreateSession(ctx, alice)
	require.NoError(t, err)

	_, err = f.chat.SendChat(ctx, alice, &dto.SendChatRequest{Message: "   ", SessionId: created.Id.String()})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.chat.SendChat(ctx, alice, &dto.SendChatRequest{Message: "hi", SessionId: "not-a-uuid"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.chat.SendChat(ctx, bob, &dto.SendChatRequest{Message: "hi", SessionId: created.Id.String()})
	assert.ErrorIs(t, err, access.ErrSessionNotFound)

	_, err = f.chat.GetChatHistory(ctx, bob, created.Id.String())
	assert.ErrorIs(t, err, access.ErrSessionNotFound)

	msgs, err := f.chat.GetChatHistory(ctx, alice, created.Id.String())
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Empty(t, f.llm.Prompts())
}

func TestGetAllSessions_OnlyOwn(t *testing.T) {
	f := newFixture(t, static.NewProvider("ok"), 10)
	ctx := context.Background()
	alice := f.signup(t, "alice@x.com")
	bob := f.signup(t, "bob@x.com")

	first, err := f.chat.CreateSession(ctx, alice)
	require.NoError(t, err)
	second, err := f.chat.CreateSession(ctx, alice)
	require.NoError(t, err)
	_, err = f.chat.CreateSession(ctx, bob)
	require.NoError(t, err)

	sessions, err := f.chat.GetAllSessions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.ElementsMatch(t, []string{first.Id.String(), second.Id.String()},
		[]string{sessions[0].Id.String(), sessions[1].Id.String()})
	assert.False(t, sessions[0].CreatedAt.Before(sessions[1].CreatedAt))
}

func TestPublishFailureDoesNotFailSignup(t *testing.T) {
	f := newFixture(t, static.NewProvider(""), 10)
	f.publisher.err = errors.New("bus down")

	_, err := f.auth.Signup(context.Background(), &dto.SignupRequest{Email: "alice@x.com", Password: "pw"})
	assert.NoError(t, err)
}

func TestAuditConsumer(t *testing.T) {
	bus := events.NewChannelBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditLog, logs := newObservedLogger()
	require.NoError(t, NewAuditConsumer(bus, auditLog).Consume(ctx))

	require.NoError(t, bus.Publish(ctx, events.New(events.TypeChatTurnCompleted, map[string]interface{}{
		"session_id":  "s-1",
		"upstream_ok": true,
	})))

	require.Eventually(t, func() bool { return logs.FilterMessage("Domain event").Len() == 1 }, time.Second, 10*time.Millisecond)
	entry := logs.FilterMessage("Domain event").All()[0]
	assert.Equal(t, "AUDIT", entry.ContextMap()["module"])
	details, ok := entry.ContextMap()["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, events.TypeChatTurnCompleted, details["event"])
	assert.Equal(t, "s-1", details["session_id"])
	assert.Equal(t, true, details["upstream_ok"])
}

func newObservedLogger() (logger.ILogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewFromZap(zap.New(core)), logs
}
