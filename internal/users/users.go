package users

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// User is a registered account.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Repository defines the interface for user persistence. Lookups return
// (nil, nil) when no user matches.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByCredentials(ctx context.Context, email, passwordHash string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Count(ctx context.Context) (int64, error)
}

// HashPassword computes the one-way digest stored for a password. The
// digest is treated as opaque by everything except FindByCredentials.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
