package users

import (
	"context"

	"github.com/ade-bello/filedepot/internal/apperr"
)

// Service provides application-level user operations
type Service struct {
	repo Repository
}

// NewService creates a new user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new account. Emails are unique; registering an email
// twice fails with "Already exist".
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if email == "" {
		return nil, apperr.BadRequest("Missing email")
	}
	if password == "" {
		return nil, apperr.BadRequest("Missing password")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if existing != nil {
		return nil, apperr.BadRequest("Already exist")
	}

	user, err := s.repo.Create(ctx, email, HashPassword(password))
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	return user, nil
}

// Get returns the user with the given id. A missing user renders as
// Unauthorized: the only way to hold a userId is through a session, so a
// dangling one means the session no longer identifies an account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if user == nil {
		return nil, apperr.Unauthorized()
	}
	return user, nil
}
