package handler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"fileapi/internal/service"
)

type registerResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account from a JSON {email, password} body.
//
// @Summary  Register a user
// @Tags     Authentication
// @Accept   json
// @Produce  json
// @Param    body body service.Credentials true "credentials"
// @Success  201 {object} registerResponse
// @Failure  422 {object} errorPayload
// @Router   /register [post]
func Register(users service.UserService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.Credentials
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_BODY", "email and password are required")
		}

		u, err := users.Register(c.UserContext(), in)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmailTaken):
				return writeError(c, fiber.StatusUnprocessableEntity, "EMAIL_TAKEN", "user with this email already exists")
			case errors.Is(err, service.ErrInvalidInput):
				return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_BODY", "a valid email and a password of at most 72 bytes are required")
			}
			logFailure(c, logger, "register", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.Status(fiber.StatusCreated).JSON(registerResponse{
			Message: fmt.Sprintf("User with %s successfully registered", u.Email),
		})
	}
}

// Login exchanges form credentials for a bearer token.
//
// @Summary  Obtain an access token
// @Tags     Authentication
// @Accept   x-www-form-urlencoded
// @Produce  json
// @Param    username formData string true "email"
// @Param    password formData string true "password"
// @Success  200 {object} tokenResponse
// @Failure  401 {object} errorPayload
// @Router   /auth [post]
func Login(users service.UserService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.FormValue("username")
		password := c.FormValue("password")
		if email == "" || password == "" {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_BODY", "username and password are required")
		}

		token, err := users.Authenticate(c.UserContext(), email, password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "incorrect username or password")
			}
			logFailure(c, logger, "login", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(tokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// logFailure records an upstream failure with the request id before it is translated.
func logFailure(c *fiber.Ctx, logger *slog.Logger, op string, err error) {
	logger.ErrorContext(c.UserContext(), "request failed",
		"event", op+"_failed",
		"request_id", requestIDFromCtx(c),
		"error", err.Error(),
	)
}
