package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ade-bello/filedepot/internal/apperr"
	"github.com/ade-bello/filedepot/internal/users"
)

// sessionKeyPrefix namespaces session entries in the store.
const sessionKeyPrefix = "auth_"

// Service verifies credentials and manages the session lifecycle.
type Service struct {
	users    users.Repository
	sessions SessionStore
	ttl      time.Duration
}

// NewService creates a new auth service. ttl is the fixed session lifetime.
func NewService(repo users.Repository, sessions SessionStore, ttl time.Duration) *Service {
	return &Service{
		users:    repo,
		sessions: sessions,
		ttl:      ttl,
	}
}

// Authenticate verifies a "Basic" Authorization header and opens a session,
// returning the new token.
func (s *Service) Authenticate(ctx context.Context, authHeader string) (string, error) {
	email, password, ok := decodeBasic(authHeader)
	if !ok {
		return "", apperr.Unauthorized()
	}
	return s.AuthenticateCredentials(ctx, email, password)
}

// AuthenticateCredentials verifies an email/password pair and opens a
// session. A missing email and a wrong password are indistinguishable to the
// caller, which keeps account enumeration impossible.
func (s *Service) AuthenticateCredentials(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.Unauthorized()
	}

	user, err := s.users.FindByCredentials(ctx, email, users.HashPassword(password))
	if err != nil {
		return "", apperr.Unavailable(err)
	}
	if user == nil {
		return "", apperr.Unauthorized()
	}

	token := uuid.NewString()
	if err := s.sessions.Put(ctx, sessionKeyPrefix+token, user.ID, s.ttl); err != nil {
		return "", apperr.Unavailable(err)
	}

	return token, nil
}

// Resolve maps a session token to the authenticated user's id.
func (s *Service) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, apperr.Unauthorized()
	}

	userID, ok, err := s.sessions.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return 0, apperr.Unavailable(err)
	}
	if !ok {
		return 0, apperr.Unauthorized()
	}

	return userID, nil
}

// Revoke closes a session. Revoking a token that is absent or already
// revoked fails with Unauthorized.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Unauthorized()
	}

	key := sessionKeyPrefix + token
	_, ok, err := s.sessions.Get(ctx, key)
	if err != nil {
		return apperr.Unavailable(err)
	}
	if !ok {
		return apperr.Unauthorized()
	}

	if err := s.sessions.Delete(ctx, key); err != nil {
		return apperr.Unavailable(err)
	}

	return nil
}

// decodeBasic extracts the email/password pair from a "Basic" Authorization
// header value.
func decodeBasic(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}

	return strings.Cut(string(raw), ":")
}
