package service

import (
	"context"
	"errors"
	"time"

	"ai-medical-chat-be/internal/dto"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/pkg/apperror"
	"ai-medical-chat-be/internal/pkg/logger"
	"ai-medical-chat-be/internal/pkg/serverutils"
	"ai-medical-chat-be/internal/repository/contract"
	"ai-medical-chat-be/internal/repository/unitofwork"
	"ai-medical-chat-be/pkg/auth"
	"ai-medical-chat-be/pkg/events"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = apperror.New(apperror.ErrValidation, "Email already registered")
	ErrInvalidCredentials = apperror.New(apperror.ErrUnauthenticated, "Incorrect email or password")
)

type IAuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	hasher         *auth.PasswordHasher
	tokens         *auth.TokenService
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		hasher:         hasher,
		tokens:         tokens,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := serverutils.ValidateStruct(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.Validation("password must be at most %d bytes", auth.MaxPasswordBytes)
		}
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	// The unique index on email settles concurrent signups.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, contract.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("AUTH", "User registered", map[string]interface{}{"user_id": user.Id.String()})
	publish(ctx, s.eventPublisher, s.logger, events.New(events.TypeUserRegistered, map[string]interface{}{
		"user_id": user.Id.String(),
	}))

	return &dto.SignupResponse{Message: "User created successfully"}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindByEmail(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.eventPublisher, s.logger, events.New(events.TypeUserLoggedIn, map[string]interface{}{
		"user_id": user.Id.String(),
	}))

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}
