package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/library-service/internal/config"
	"github.com/Dan9191/library-service/internal/models"
	"github.com/Dan9191/library-service/internal/repository"
)

// bcrypt rejects longer inputs
const maxPasswordBytes = 72

// AuthService handles registration and login
type AuthService struct {
	users  UserStore
	hasher Hasher
	tokens TokenIssuer
	cfg    config.AuthConfig
	log    *logrus.Logger
}

// NewAuthService initializes a new auth service
func NewAuthService(users UserStore, hasher Hasher, tokens TokenIssuer, cfg config.AuthConfig, log *logrus.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, cfg: cfg, log: log}
}

// Register creates a new user with a hashed password
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := s.validateCredentials(username, password); err != nil {
		return err
	}

	_, err := s.users.FindUserByUsername(ctx, username)
	switch {
	case err == nil:
		return fmt.Errorf("%w: username already exists", ErrConflict)
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: username already exists", ErrConflict)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.WithField("user_id", user.ID).Infof("User registered: %s", user.Username)
	return nil
}

// Login authenticates a user and returns a bearer token. Unknown users and
// wrong passwords yield the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.FindUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Debugf("Login failed for %q: unknown user", username)
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Debugf("Login failed for %q: password mismatch", username)
		return "", ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return token, nil
}

func (s *AuthService) validateCredentials(username, password string) error {
	if username == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(username); n < s.cfg.UsernameMinLength || n > s.cfg.UsernameMaxLength {
		return fmt.Errorf("%w: username must be between %d and %d characters",
			ErrInvalidInput, s.cfg.UsernameMinLength, s.cfg.UsernameMaxLength)
	}
	if n := utf8.RuneCountInString(password); n < s.cfg.PasswordMinLength || n > s.cfg.PasswordMaxLength || len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be between %d and %d characters",
			ErrInvalidInput, s.cfg.PasswordMinLength, s.cfg.PasswordMaxLength)
	}
	return nil
}
