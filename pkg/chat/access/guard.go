package access

import (
	"context"
	"time"

	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/pkg/apperror"
	"ai-medical-chat-be/internal/pkg/logger"
	"ai-medical-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	ErrUnknownUser = apperror.New(apperror.ErrUnauthenticated, "Could not validate credentials")
	// ErrSessionNotFound covers both a missing session and one owned by
	// someone else, so callers cannot probe for other users' sessions.
	ErrSessionNotFound = apperror.New(apperror.ErrNotFound, "Session not found")
)

type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// Guard authenticates bearer tokens and checks session ownership.
type Guard struct {
	tokens     TokenVerifier
	uowFactory unitofwork.RepositoryFactory
	users      *cache.Cache
	logger     logger.ILogger
}

// NewGuard builds a guard. A positive userCacheTTL keeps resolved users in
// memory for that long; zero disables the cache.
func NewGuard(tokens TokenVerifier, uowFactory unitofwork.RepositoryFactory, userCacheTTL time.Duration, log logger.ILogger) *Guard {
	g := &Guard{
		tokens:     tokens,
		uowFactory: uowFactory,
		logger:     log,
	}
	if userCacheTTL > 0 {
		g.users = cache.New(userCacheTTL, 2*userCacheTTL)
	}
	return g
}

// Authenticate resolves a bearer token to the user it was issued for.
func (g *Guard) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	email, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if g.users != nil {
		if cached, ok := g.users.Get(email); ok {
			return cached.(*entity.User), nil
		}
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		g.logger.Warn("ACCESS", "Token subject no longer exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrUnknownUser
	}

	if g.users != nil {
		g.users.SetDefault(email, user)
	}
	return user, nil
}

// AuthorizeSession loads a session and checks that user owns it.
func (g *Guard) AuthorizeSession(ctx context.Context, user *entity.User, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindByID(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !session.OwnedBy(user.Id) {
		g.logger.Warn("ACCESS", "Forbidden session access", map[string]interface{}{
			"session_id": sessionId.String(),
			"user_id":    user.Id.String(),
		})
		return nil, ErrSessionNotFound
	}
	return session, nil
}
