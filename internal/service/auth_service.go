package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"go-todo-planner/internal/auth"
	"go-todo-planner/internal/model"
	"go-todo-planner/internal/repository"
	"go-todo-planner/pkg/apierror"
)

type AuthService struct {
	users    repository.UserRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	tokenTTL time.Duration

	// dummyHash is compared against when the identifier matches nobody, so
	// unknown users cost a bcrypt round like wrong passwords do.
	dummyHash string
}

func NewAuthService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService, tokenTTL time.Duration) (*AuthService, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.TrimSpace(req.Password) == "" {
		return model.RegisterResponse{}, apierror.Validation("username and password are required", "")
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return model.RegisterResponse{}, apierror.Validation("password must be at most 72 bytes", "password")
	}

	var email *string
	if trimmed := strings.TrimSpace(req.Email); trimmed != "" {
		if !validEmail(trimmed) {
			return model.RegisterResponse{}, apierror.Validation("email is not a valid address", "email")
		}
		email = &trimmed
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.RegisterResponse{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return model.RegisterResponse{}, err
	}

	slog.Info("user registered", "user_id", id, "username", username)
	return model.RegisterResponse{Message: "User registered", ID: id}, nil
}

// Login accepts a username or an email. Unknown identifiers and wrong
// passwords both return model.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier())
	if identifier == "" || req.Password == "" {
		return model.LoginResponse{}, apierror.Validation("username or email and password are required", "")
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if errors.Is(err, model.ErrUserNotFound) {
		s.hasher.Verify(req.Password, s.dummyHash)
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.LoginResponse{}, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username, s.tokenTTL)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return model.LoginResponse{
		Token:     token,
		ID:        user.ID,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

// ForgotPassword only confirms that an account exists. No mail is sent.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (model.ForgotPasswordResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.ForgotPasswordResponse{}, apierror.Validation("email is required", "email")
	}

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ForgotPasswordResponse{}, apierror.NotFound("no account with that email")
		}
		return model.ForgotPasswordResponse{}, err
	}

	return model.ForgotPasswordResponse{Success: true}, nil
}

func validEmail(address string) bool {
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}
