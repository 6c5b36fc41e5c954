package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/auth"
	"github.com/sakif/deck-hub/internal/model"
	"github.com/sakif/deck-hub/internal/repository"
)

const MinPasswordLength = 8

// AuthService handles registration, login, and token validation. Passwords
// and GitHub sign-in both funnel into the same user table; an account has a
// password hash, a GitHub ID, or both.
type AuthService struct {
	repo      repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAuthService(repo repository.UserRepository, passwords *auth.PasswordService, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a new account and returns the user with a signed token.
// Duplicate emails surface as ErrConflict.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return nil, "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, "", err
		}
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("email", user.Email),
	)

	return user, token, nil
}

// Login verifies the credentials and returns the user with a signed token.
// Unknown email and wrong password return the same ErrValidation so the
// response doesn't reveal which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	invalidCredentials := apperror.ValidationFailed("credentials", "invalid email or password")

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, "", invalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	// OAuth-only accounts have no password to check against.
	if user.PasswordHash == "" {
		return nil, "", invalidCredentials
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, "", invalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))

	return user, token, nil
}

// LoginOrRegisterGitHub signs in a GitHub user, creating the local account on
// first sign-in. Keyed on the stable numeric GitHub ID, not the email.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(ghUser.Email))
	if email == "" {
		// GitHub users can hide their email; fall back to the noreply form.
		email = fmt.Sprintf("%s@users.noreply.github.com", ghUser.Login)
	}

	user := &model.User{
		Email:    email,
		GitHubID: ghUser.ID,
	}

	if err := s.repo.UpsertGitHubUser(ctx, user); err != nil {
		s.logger.Error("failed to upsert GitHub user",
			slog.Int64("github_id", ghUser.ID),
			slog.String("error", err.Error()),
		)
		return nil, "", fmt.Errorf("upserting GitHub user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in via GitHub",
		slog.String("id", user.ID),
		slog.Int64("github_id", ghUser.ID),
	)

	return user, token, nil
}

// GetUserByID loads a user's profile.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}
