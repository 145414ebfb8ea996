package serverutils

import (
	"context"
	"errors"
	"strings"

	"ai-medical-chat-be/internal/dto"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// JwtMiddleware resolves the bearer token to a user and stores it in the
// request locals. Requests without a valid token stop here with 401; any
// other lookup failure goes to the app's error handler.
func JwtMiddleware(authenticator Authenticator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		scheme, tokenStr, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			return unauthorized(ctx, "Not authenticated")
		}

		user, err := authenticator.Authenticate(ctx.UserContext(), strings.TrimSpace(tokenStr))
		if err != nil {
			if errors.Is(err, apperror.ErrUnauthenticated) {
				return unauthorized(ctx, err.Error())
			}
			return err
		}

		ctx.Locals(userLocalsKey, user)
		return ctx.Next()
	}
}

func unauthorized(ctx *fiber.Ctx, detail string) error {
	ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return ctx.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Detail: detail})
}

// CurrentUser returns the user stored by JwtMiddleware.
func CurrentUser(ctx *fiber.Ctx) (*entity.User, bool) {
	user, ok := ctx.Locals(userLocalsKey).(*entity.User)
	return user, ok && user != nil
}
