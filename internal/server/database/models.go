package database

import "go.mongodb.org/mongo-driver/v2/bson"

// File type values.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
	TypeImage  = "image"
)

// RootParent is the parentId sentinel for top-level records: the zero
// ObjectID, which never collides with a real document id.
var RootParent = bson.NilObjectID

// User is an account record. Users are immutable after creation and
// never deleted.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
}

// File is a metadata record describing a folder, file or image.
// LocalPath points at the stored blob and is set iff Type != folder.
// Thumbnail derivatives are not separate records, only disk artifacts
// named by appending a width suffix to LocalPath.
type File struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"userId"`
	Name      string        `bson:"name"`
	Type      string        `bson:"type"`
	IsPublic  bool          `bson:"isPublic"`
	ParentID  bson.ObjectID `bson:"parentId"`
	LocalPath string        `bson:"localPath,omitempty"`
}

// ValidType reports whether t is one of the known file types.
func ValidType(t string) bool {
	return t == TypeFolder || t == TypeFile || t == TypeImage
}
