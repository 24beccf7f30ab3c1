package files

import (
	"context"
	"errors"
	"io"
)

// Record types.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
	TypeImage  = "image"
)

// RootParent is the sentinel parent id for records at the top level.
const RootParent int64 = 0

// PageSize is the fixed number of records per listing page.
const PageSize = 20

// ErrBlobNotFound reports that a storage path has no content behind it.
// The blob medium can lose content independently of the metadata record.
var ErrBlobNotFound = errors.New("blob not found")

// File is a file or folder metadata record.
//
// ParentID defaults to RootParent and IsPublic to false; both defaults are
// applied at construction in Service.Create, not at call sites. LocalPath is
// the storage path of the content, empty for folders, and never serialized
// to clients.
type File struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsPublic  bool   `json:"isPublic"`
	ParentID  int64  `json:"parentId"`
	LocalPath string `json:"-"`
}

// IsFolder reports whether the record is a folder.
func (f *File) IsFolder() bool { return f.Type == TypeFolder }

// Repository defines the interface for the document collection holding file
// records. FindByID returns (nil, nil) when no record matches.
type Repository interface {
	// Create inserts a record and sets its ID.
	Create(ctx context.Context, file *File) error

	// FindByID retrieves a record by id.
	FindByID(ctx context.Context, id int64) (*File, error)

	// List returns records owned by userID under parentID, most recent
	// first, honoring offset and limit.
	List(ctx context.Context, userID, parentID int64, offset, limit int) ([]*File, error)

	// SetPublic flips the visibility flag. Blind write, last write wins.
	SetPublic(ctx context.Context, id int64, public bool) error

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)
}

// BlobStorage defines the interface for the physical content medium, keyed
// by storage path.
type BlobStorage interface {
	// Save writes content under the given object name and returns the
	// storage path to record in metadata.
	Save(ctx context.Context, name string, data []byte) (string, error)

	// Open reads back content at a previously returned storage path.
	// Returns ErrBlobNotFound when nothing is stored there.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
