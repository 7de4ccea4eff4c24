package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"fileapi/internal/auth"
	"fileapi/internal/model"
	"fileapi/internal/repository"
)

// Credentials is the registration payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// UserService defines account use cases.
type UserService interface {
	// Register creates an account with a bcrypt-hashed password.
	Register(ctx context.Context, in Credentials) (*model.User, error)

	// Authenticate checks credentials and issues an access token.
	Authenticate(ctx context.Context, email, password string) (string, error)

	// UserFromToken verifies an access token and reloads its user.
	UserFromToken(ctx context.Context, token string) (*model.User, error)
}

type userService struct {
	repo     repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	validate *validator.Validate
	logger   *slog.Logger
}

// NewUserService constructs a new UserService signing tokens with secret.
func NewUserService(repo repository.UserRepository, secret string, tokenTTL time.Duration, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, in Credentials) (*model.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		// max counts runes; bcrypt caps bytes
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	u := &model.User{Email: in.Email, PasswordHash: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "event", "user_register", "email", u.Email)
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.Email, s.secret, s.tokenTTL)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *userService) UserFromToken(ctx context.Context, token string) (*model.User, error) {
	email, err := auth.SubjectFromToken(token, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
