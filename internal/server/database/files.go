package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrFileNotFound = errors.New("file not found")

// PageSize is the fixed number of records returned per listing page.
const PageSize = 20

// FileRepository provides CRUD and listing operations for file records.
type FileRepository struct {
	db *DB
}

// NewFileRepository creates a new FileRepository.
func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a new file record and fills in its generated id.
func (r *FileRepository) Create(ctx context.Context, file *File) error {
	file.ID = bson.NewObjectID()
	if _, err := r.db.Files().InsertOne(ctx, file); err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

// GetByID retrieves a file record by id regardless of owner.
func (r *FileRepository) GetByID(ctx context.Context, id bson.ObjectID) (*File, error) {
	file := &File{}
	err := r.db.Files().FindOne(ctx, bson.M{"_id": id}).Decode(file)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	return file, nil
}

// GetOwned retrieves a file record by id restricted to a single owner.
// A record owned by someone else is indistinguishable from a missing one.
func (r *FileRepository) GetOwned(ctx context.Context, id, userID bson.ObjectID) (*File, error) {
	file := &File{}
	err := r.db.Files().FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(file)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	return file, nil
}

// ListByParent returns one page of records under a parent, sorted by id
// so that paging is stable. Page numbers are zero-indexed.
func (r *FileRepository) ListByParent(ctx context.Context, parentID bson.ObjectID, page int64) ([]*File, error) {
	if page < 0 {
		page = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(page * PageSize).
		SetLimit(PageSize)

	cursor, err := r.db.Files().Find(ctx, bson.M{"parentId": parentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	defer cursor.Close(ctx)

	var files []*File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode file records: %w", err)
	}
	return files, nil
}

// SetVisibility atomically updates isPublic on a record owned by userID
// and returns the updated document. A single conditional update keyed by
// id+owner; concurrent toggles are last-writer-wins.
func (r *FileRepository) SetVisibility(ctx context.Context, id, userID bson.ObjectID, isPublic bool) (*File, error) {
	file := &File{}
	err := r.db.Files().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isPublic": isPublic}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(file)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to update file visibility: %w", err)
	}
	return file, nil
}

// Count returns the number of file records.
func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.db.Files().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}
