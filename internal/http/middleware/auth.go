package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"fileapi/internal/model"
	"fileapi/internal/service"
)

// UserLocalKey is the fiber locals key holding the authenticated model.User.
const UserLocalKey = "user"

// TokenVerifier resolves an access token to its user.
type TokenVerifier interface {
	UserFromToken(ctx context.Context, token string) (*model.User, error)
}

// Auth rejects requests without a valid "Authorization: Bearer <token>" header.
// The resolved user is stored in locals under UserLocalKey.
func Auth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
		}

		u, err := v.UserFromToken(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
				return fiber.NewError(fiber.StatusUnauthorized, "could not validate credentials")
			}
			return err
		}

		c.Locals(UserLocalKey, *u)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *fiber.Ctx) (model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(model.User)
	return u, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
