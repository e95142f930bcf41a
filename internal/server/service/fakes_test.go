package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ubonisrael/alx-files-manager/internal/server/database"
)

var errNoFakeSession = errors.New("session not found")

// In-memory doubles for the repository, session and queue interfaces.

type fakeUserRepo struct {
	users     []*database.User
	createErr error
}

func (f *fakeUserRepo) Create(_ context.Context, user *database.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = bson.NewObjectID()
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id bson.ObjectID) (*database.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*database.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeFileRepo struct {
	files []*database.File
}

func (f *fakeFileRepo) Create(_ context.Context, file *database.File) error {
	file.ID = bson.NewObjectID()
	f.files = append(f.files, file)
	return nil
}

func (f *fakeFileRepo) GetByID(_ context.Context, id bson.ObjectID) (*database.File, error) {
	for _, file := range f.files {
		if file.ID == id {
			return file, nil
		}
	}
	return nil, database.ErrFileNotFound
}

func (f *fakeFileRepo) GetOwned(_ context.Context, id, userID bson.ObjectID) (*database.File, error) {
	for _, file := range f.files {
		if file.ID == id && file.UserID == userID {
			return file, nil
		}
	}
	return nil, database.ErrFileNotFound
}

func (f *fakeFileRepo) ListByParent(_ context.Context, parentID bson.ObjectID, page int64) ([]*database.File, error) {
	var matched []*database.File
	for _, file := range f.files {
		if file.ParentID == parentID {
			matched = append(matched, file)
		}
	}

	start := page * database.PageSize
	if start >= int64(len(matched)) {
		return nil, nil
	}
	end := start + database.PageSize
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}
	return matched[start:end], nil
}

func (f *fakeFileRepo) SetVisibility(_ context.Context, id, userID bson.ObjectID, isPublic bool) (*database.File, error) {
	for _, file := range f.files {
		if file.ID == id && file.UserID == userID {
			file.IsPublic = isPublic
			return file, nil
		}
	}
	return nil, database.ErrFileNotFound
}

func (f *fakeFileRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.files)), nil
}

type fakeSessions struct {
	tokens    map[string]string
	nextToken int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: make(map[string]string)}
}

func (f *fakeSessions) Create(_ context.Context, userID string) (string, error) {
	f.nextToken++
	token := fmt.Sprintf("token-%d", f.nextToken)
	f.tokens[token] = userID
	return token, nil
}

func (f *fakeSessions) Resolve(_ context.Context, token string) (string, error) {
	userID, ok := f.tokens[token]
	if !ok {
		return "", errNoFakeSession
	}
	return userID, nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

type fakeQueue struct {
	payloads []any
	err      error
}

func (f *fakeQueue) Enqueue(_ context.Context, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}
