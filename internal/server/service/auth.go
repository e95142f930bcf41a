package service

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles the credentials-for-token exchange.
type AuthService struct {
	users    UserRepo
	sessions Sessions
}

// NewAuthService creates a new auth service.
func NewAuthService(users UserRepo, sessions Sessions) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Login verifies credentials and issues a session token. Unknown
// accounts and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	token, err := s.sessions.Create(ctx, user.ID.Hex())
	if err != nil {
		return "", err
	}

	slog.Info("session created", "user_id", user.ID.Hex())
	return token, nil
}

// Logout revokes a session token. Revoking an unknown token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}
