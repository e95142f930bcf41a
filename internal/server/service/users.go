package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/ubonisrael/alx-files-manager/internal/server/database"
	"github.com/ubonisrael/alx-files-manager/internal/server/queue"
)

// UserService handles registration and session-to-user resolution.
type UserService struct {
	users     UserRepo
	sessions  Sessions
	userQueue Enqueuer
}

// NewUserService creates a new user service.
func NewUserService(users UserRepo, sessions Sessions, userQueue Enqueuer) *UserService {
	return &UserService{users: users, sessions: sessions, userQueue: userQueue}
}

// Register validates and creates a new account, then enqueues the
// welcome job. The password is stored only as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, email, password string) (*UserView, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	if strings.TrimSpace(password) == "" {
		return nil, ErrMissingPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, database.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &database.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// Fire-and-forget: a queue failure never fails the registration.
	if err := s.userQueue.Enqueue(ctx, queue.WelcomeJob{UserID: user.ID.Hex()}); err != nil {
		slog.Error("failed to enqueue welcome job", "user_id", user.ID.Hex(), "error", err)
	}

	slog.Info("user registered", "user_id", user.ID.Hex())
	return &UserView{ID: user.ID.Hex(), Email: user.Email}, nil
}

// RequireSession resolves a session token to its user. Absent or
// expired tokens and dangling user references all map to Unauthorized.
func (s *UserService) RequireSession(ctx context.Context, token string) (*database.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// CountUsers returns the number of registered users.
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}
