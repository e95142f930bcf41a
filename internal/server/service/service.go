// Package service contains the business logic of the files manager:
// registration, authentication, upload validation and persistence, and
// file retrieval with its visibility rules. Dependencies are consumed
// through narrow interfaces so services can be exercised against
// in-memory doubles.
package service

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ubonisrael/alx-files-manager/internal/server/database"
)

// UserRepo is the slice of the user repository the services need.
type UserRepo interface {
	Create(ctx context.Context, user *database.User) error
	GetByID(ctx context.Context, id bson.ObjectID) (*database.User, error)
	GetByEmail(ctx context.Context, email string) (*database.User, error)
	Count(ctx context.Context) (int64, error)
}

// FileRepo is the slice of the file repository the services need.
type FileRepo interface {
	Create(ctx context.Context, file *database.File) error
	GetByID(ctx context.Context, id bson.ObjectID) (*database.File, error)
	GetOwned(ctx context.Context, id, userID bson.ObjectID) (*database.File, error)
	ListByParent(ctx context.Context, parentID bson.ObjectID, page int64) ([]*database.File, error)
	SetVisibility(ctx context.Context, id, userID bson.ObjectID, isPublic bool) (*database.File, error)
	Count(ctx context.Context) (int64, error)
}

// Sessions issues, resolves and revokes opaque session tokens.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// Enqueuer pushes a typed payload onto a background job queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any) error
}

// RootParentID is the parentId value exposed to clients for top-level
// records.
const RootParentID = "0"

// UserView is the public projection of a user record.
type UserView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// FileView is the public projection of a file record. The blob's local
// path is never exposed to callers.
type FileView struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

func newFileView(f *database.File) *FileView {
	parent := RootParentID
	if f.ParentID != database.RootParent {
		parent = f.ParentID.Hex()
	}
	return &FileView{
		ID:       f.ID.Hex(),
		UserID:   f.UserID.Hex(),
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: parent,
	}
}
