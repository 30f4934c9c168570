package port

import (
	"context"
	"time"

	"github.com/arturoeanton/soundgate/internal/domain"
)

// UserStore persists accounts and their password hashes for the dev backend.
type UserStore interface {
	// CreateUser stores u; ErrConflict when the email is taken.
	CreateUser(ctx context.Context, u *domain.User, passwordHash string) (*domain.User, error)

	// GetUserByEmail returns the user and its password hash, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, string, error)

	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionStore keeps live sessions keyed by their secret.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session, ttl time.Duration) error

	// Get returns the session for secret, or ErrNotFound once it expired.
	Get(ctx context.Context, secret string) (*domain.Session, error)

	// Delete drops one session.
	Delete(ctx context.Context, s *domain.Session) error

	// DeleteUser drops every session of userID.
	DeleteUser(ctx context.Context, userID string) error
}

// FileContent serves stored file bytes.
type FileContent interface {
	GetFile(ctx context.Context, bucketID, fileID string) (*domain.File, []byte, error)
}
