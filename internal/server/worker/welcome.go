package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ubonisrael/alx-files-manager/internal/server/database"
	"github.com/ubonisrael/alx-files-manager/internal/server/queue"
)

// UserGetter is the slice of the user repository the worker needs.
type UserGetter interface {
	GetByID(ctx context.Context, id bson.ObjectID) (*database.User, error)
}

// WelcomeWorker runs the post-registration side effect.
type WelcomeWorker struct {
	users UserGetter
}

// NewWelcomeWorker creates a welcome worker.
func NewWelcomeWorker(users UserGetter) *WelcomeWorker {
	return &WelcomeWorker{users: users}
}

// Process handles one welcome job. A missing userId or an unresolvable
// user is a permanent failure.
func (w *WelcomeWorker) Process(ctx context.Context, raw []byte) error {
	var payload queue.WelcomeJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("malformed welcome payload: %w", err))
	}

	if payload.UserID == "" {
		return Permanent(errors.New("Missing userId"))
	}

	userID, err := bson.ObjectIDFromHex(payload.UserID)
	if err != nil {
		return Permanent(fmt.Errorf("invalid userId: %w", err))
	}

	user, err := w.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Permanent(errors.New("User not found"))
		}
		return err
	}

	slog.Info(fmt.Sprintf("Welcome %s", user.Email), "user_id", user.ID.Hex())
	return nil
}
