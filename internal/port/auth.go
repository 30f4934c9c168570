package port

import (
	"context"

	"github.com/arturoeanton/soundgate/internal/domain"
)

// CurrentSession is the session id alias the backend resolves to the caller's
// own session.
const CurrentSession = "current"

// Account abstracts the backend's identity operations.
// Implementations carry whatever credential the host platform uses
// (cookie jar or session secret) between calls.
type Account interface {
	// Create registers a new account. It does not sign the caller in.
	Create(ctx context.Context, userID, email, password, name string) (*domain.User, error)

	// CreateEmailPasswordSession signs in and returns the new session.
	CreateEmailPasswordSession(ctx context.Context, email, password string) (*domain.Session, error)

	// Get returns the account of the current session.
	Get(ctx context.Context) (*domain.User, error)

	// GetSession returns a session by id; pass CurrentSession for the caller's own.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// DeleteSession removes one session. Removing the session returned by the
	// latest CreateEmailPasswordSession puts back the credential held before it.
	DeleteSession(ctx context.Context, sessionID string) error

	// DeleteSessions signs the account out everywhere.
	DeleteSessions(ctx context.Context) error
}
