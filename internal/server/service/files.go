package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ubonisrael/alx-files-manager/internal/server/database"
	"github.com/ubonisrael/alx-files-manager/internal/server/queue"
	"github.com/ubonisrael/alx-files-manager/internal/server/storage"
)

// UploadRequest carries the client-supplied fields of a file upload.
// Data is the base64-encoded payload; it is ignored for folders.
type UploadRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Data     string `json:"data"`
	ParentID string `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
}

// FileService handles upload validation and persistence, metadata
// lookups, visibility toggles and content retrieval.
type FileService struct {
	files     FileRepo
	blobs     storage.Store
	fileQueue Enqueuer
}

// NewFileService creates a new file service.
func NewFileService(files FileRepo, blobs storage.Store, fileQueue Enqueuer) *FileService {
	return &FileService{files: files, blobs: blobs, fileQueue: fileQueue}
}

// Upload validates and persists a new record for user. Validation order
// is fixed: name, type, data, parent existence, parent type. For
// non-folder types the blob is written before the metadata record, so a
// failed upload never leaves a partially visible record. Image uploads
// enqueue a thumbnail job and return without waiting on it.
func (s *FileService) Upload(ctx context.Context, user *database.User, req UploadRequest) (*FileView, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if req.Type == "" || !database.ValidType(req.Type) {
		return nil, ErrMissingType
	}
	if req.Data == "" && req.Type != database.TypeFolder {
		return nil, ErrMissingData
	}

	parentID := database.RootParent
	if req.ParentID != "" && req.ParentID != RootParentID {
		id, err := bson.ObjectIDFromHex(req.ParentID)
		if err != nil {
			return nil, ErrParentNotFound
		}
		parent, err := s.files.GetByID(ctx, id)
		if err != nil {
			return nil, ErrParentNotFound
		}
		if parent.Type != database.TypeFolder {
			return nil, ErrParentNotFolder
		}
		parentID = parent.ID
	}

	file := &database.File{
		UserID:   user.ID,
		Name:     req.Name,
		Type:     req.Type,
		IsPublic: req.IsPublic,
		ParentID: parentID,
	}

	if req.Type != database.TypeFolder {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, ErrMissingData
		}

		path, err := s.blobs.Save(data)
		if err != nil {
			return nil, fmt.Errorf("failed to store blob: %w", err)
		}
		file.LocalPath = path
	}

	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	if file.Type == database.TypeImage {
		// Fire-and-forget: the response never waits on thumbnail work,
		// and an enqueue failure never fails the upload.
		job := queue.ThumbnailJob{UserID: user.ID.Hex(), FileID: file.ID.Hex()}
		if err := s.fileQueue.Enqueue(ctx, job); err != nil {
			slog.Error("failed to enqueue thumbnail job", "file_id", file.ID.Hex(), "error", err)
		}
	}

	slog.Info("file uploaded",
		"file_id", file.ID.Hex(),
		"user_id", user.ID.Hex(),
		"type", file.Type,
	)
	return newFileView(file), nil
}

// Get returns the projection of a record owned by user.
func (s *FileService) Get(ctx context.Context, user *database.User, id string) (*FileView, error) {
	file, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return newFileView(file), nil
}

// List returns one page of records under a parent. The parent defaults
// to the root sentinel; pages hold at most 20 records, zero-indexed.
func (s *FileService) List(ctx context.Context, user *database.User, parentID string, page int64) ([]*FileView, error) {
	parent := database.RootParent
	if parentID != "" && parentID != RootParentID {
		id, err := bson.ObjectIDFromHex(parentID)
		if err != nil {
			// An unparseable parent can't match any record.
			return []*FileView{}, nil
		}
		parent = id
	}

	files, err := s.files.ListByParent(ctx, parent, page)
	if err != nil {
		return nil, err
	}

	views := make([]*FileView, 0, len(files))
	for _, f := range files {
		views = append(views, newFileView(f))
	}
	return views, nil
}

// SetVisibility atomically sets isPublic on a record owned by user and
// returns the updated projection.
func (s *FileService) SetVisibility(ctx context.Context, user *database.User, id string, isPublic bool) (*FileView, error) {
	fileID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	file, err := s.files.SetVisibility(ctx, fileID, user.ID, isPublic)
	if err != nil {
		return nil, ErrNotFound
	}
	return newFileView(file), nil
}

// Content returns the raw bytes and content type of a record's blob.
// The record must exist, be owned by user, not be a folder, be public,
// and have its blob present on disk; every failure maps to Not found.
func (s *FileService) Content(ctx context.Context, user *database.User, id string) ([]byte, string, error) {
	file, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, "", err
	}

	if file.Type == database.TypeFolder {
		return nil, "", ErrNotFound
	}
	if !file.IsPublic {
		return nil, "", ErrNotFound
	}
	if !s.blobs.Exists(file.LocalPath) {
		return nil, "", ErrNotFound
	}

	data, err := s.blobs.Read(file.LocalPath)
	if err != nil {
		return nil, "", ErrNotFound
	}

	return data, contentType(file.LocalPath, data), nil
}

// CountFiles returns the number of file records.
func (s *FileService) CountFiles(ctx context.Context) (int64, error) {
	return s.files.Count(ctx)
}

func (s *FileService) getOwned(ctx context.Context, user *database.User, id string) (*database.File, error) {
	fileID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	file, err := s.files.GetOwned(ctx, fileID, user.ID)
	if err != nil {
		return nil, ErrNotFound
	}
	return file, nil
}

// contentType derives a MIME type from the stored path's extension,
// falling back to signature sniffing. Blobs are stored under opaque
// extensionless names, so the sniffing path is the common one.
func contentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
