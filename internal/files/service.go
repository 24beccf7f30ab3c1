package files

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ade-bello/filedepot/internal/apperr"
)

// AnonymousID is the requester id used when no valid session accompanies a
// request. User ids start at 1, so it never matches an owner.
const AnonymousID int64 = 0

// Service provides application-level file operations: creation with parent
// validation, access-controlled reads, paginated listing, publishing and
// content resolution.
type Service struct {
	repo     Repository
	storage  BlobStorage
	validate *validator.Validate
}

// NewService creates a new file service
func NewService(repo Repository, storage BlobStorage) *Service {
	return &Service{
		repo:     repo,
		storage:  storage,
		validate: validator.New(),
	}
}

// CreateInput is a file creation request. Data carries the base64-encoded
// content for non-folder types.
type CreateInput struct {
	UserID   int64
	Name     string `validate:"required"`
	Type     string `validate:"required,oneof=folder file image"`
	ParentID int64
	IsPublic bool
	Data     string
}

// Create validates the request, checks the parent reference and inserts the
// record. Non-folder content is decoded and written to blob storage before
// the metadata insert.
func (s *Service) Create(ctx context.Context, in CreateInput) (*File, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, createValidationError(err)
	}
	if in.Type != TypeFolder && in.Data == "" {
		return nil, apperr.BadRequest("Missing data")
	}

	if in.ParentID != RootParent {
		parent, err := s.repo.FindByID(ctx, in.ParentID)
		if err != nil {
			return nil, apperr.Unavailable(err)
		}
		if parent == nil {
			return nil, apperr.BadRequest("Parent not found")
		}
		if !parent.IsFolder() {
			return nil, apperr.BadRequest("Parent is not a folder")
		}
	}

	file := &File{
		UserID:   in.UserID,
		Name:     in.Name,
		Type:     in.Type,
		IsPublic: in.IsPublic,
		ParentID: in.ParentID,
	}

	if in.Type != TypeFolder {
		content, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, apperr.BadRequest("Invalid data")
		}
		path, err := s.storage.Save(ctx, uuid.NewString(), content)
		if err != nil {
			return nil, apperr.Unavailable(err)
		}
		file.LocalPath = path
	}

	if err := s.repo.Create(ctx, file); err != nil {
		return nil, apperr.Unavailable(err)
	}

	return file, nil
}

// Get returns a record visible to the given requester. Records owned by
// someone else render as Not found, never as Unauthorized, so private
// records do not leak their existence.
func (s *Service) Get(ctx context.Context, requesterID, fileID int64) (*File, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if file == nil || file.UserID != requesterID {
		return nil, apperr.NotFound()
	}
	return file, nil
}

// List returns one page of records owned by userID under parentID, most
// recent first. Pages beyond the collection yield an empty slice.
func (s *Service) List(ctx context.Context, userID, parentID int64, page int) ([]*File, error) {
	if page < 0 {
		page = 0
	}

	out, err := s.repo.List(ctx, userID, parentID, page*PageSize, PageSize)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if out == nil {
		out = []*File{}
	}
	return out, nil
}

// SetPublic flips the visibility of a record owned by the requester and
// returns the updated record. The update is blind; concurrent publish and
// unpublish race with last write winning.
func (s *Service) SetPublic(ctx context.Context, requesterID, fileID int64, public bool) (*File, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if file == nil || file.UserID != requesterID {
		return nil, apperr.NotFound()
	}

	if err := s.repo.SetPublic(ctx, fileID, public); err != nil {
		return nil, apperr.Unavailable(err)
	}

	file.IsPublic = public
	return file, nil
}

// Content resolves a record to its stored bytes and MIME type. requesterID
// is AnonymousID for unauthenticated requests. A non-zero size addresses a
// pre-generated derived variant stored under "<path>_<size>".
func (s *Service) Content(ctx context.Context, requesterID, fileID, size int64) (io.ReadCloser, string, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return nil, "", apperr.Unavailable(err)
	}
	if file == nil {
		return nil, "", apperr.NotFound()
	}

	// Folders have no content, whoever asks.
	if file.IsFolder() {
		return nil, "", apperr.BadRequest("A folder doesn't have content")
	}

	if !file.IsPublic && file.UserID != requesterID {
		return nil, "", apperr.NotFound()
	}

	path := file.LocalPath
	if size != 0 {
		path = fmt.Sprintf("%s_%d", path, size)
	}

	content, err := s.storage.Open(ctx, path)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, "", apperr.NotFound()
		}
		return nil, "", apperr.Unavailable(err)
	}

	return content, ContentType(file.Name), nil
}

// createValidationError translates field-level validation failures into the
// API's error messages.
func createValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Field() {
			case "Name":
				return apperr.BadRequest("Missing name")
			case "Type":
				return apperr.BadRequest("Missing type or invalid type")
			}
		}
	}
	return apperr.BadRequest("Invalid request")
}
