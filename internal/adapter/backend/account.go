package backend

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/arturoeanton/soundgate/internal/domain"
)

// AccountService implements port.Account over the REST API.
type AccountService struct {
	rc *restClient

	// the credential held before the latest sign-in, for DeleteSession
	mu       sync.Mutex
	lastID   string
	previous string
}

// Create registers a new account.
func (a *AccountService) Create(ctx context.Context, userID, email, password, name string) (*domain.User, error) {
	payload := map[string]any{
		"userId":   userID,
		"email":    email,
		"password": password,
	}
	if name != "" {
		payload["name"] = name
	}
	var user domain.User
	if err := a.rc.call(ctx, "account.create", http.MethodPost, "/account", nil, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateEmailPasswordSession signs in and keeps the credential for later calls.
func (a *AccountService) CreateEmailPasswordSession(ctx context.Context, email, password string) (*domain.Session, error) {
	payload := map[string]any{"email": email, "password": password}
	var session domain.Session
	previous := a.rc.creds.snapshot()
	if err := a.rc.call(ctx, "account.createEmailPasswordSession", http.MethodPost, "/account/sessions/email", nil, payload, &session); err != nil {
		return nil, err
	}
	a.rc.creds.remember(&session)

	a.mu.Lock()
	a.lastID, a.previous = session.ID, previous
	a.mu.Unlock()
	return &session, nil
}

// Get returns the current account.
func (a *AccountService) Get(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := a.rc.call(ctx, "account.get", http.MethodGet, "/account", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetSession returns a session by id.
func (a *AccountService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	path := "/account/sessions/" + url.PathEscape(sessionID)
	if err := a.rc.call(ctx, "account.getSession", http.MethodGet, path, nil, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes one session. Deleting the session created by the
// latest sign-in also reinstates the credential held before it, even when
// the request fails.
func (a *AccountService) DeleteSession(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	rollback := sessionID != "" && sessionID == a.lastID
	previous := a.previous
	if rollback {
		a.lastID, a.previous = "", ""
	}
	a.mu.Unlock()

	path := "/account/sessions/" + url.PathEscape(sessionID)
	err := a.rc.call(ctx, "account.deleteSession", http.MethodDelete, path, nil, nil, nil)
	if rollback {
		a.rc.creds.restore(previous)
	}
	return err
}

// DeleteSessions signs out everywhere. The local credential is dropped even
// when the request fails.
func (a *AccountService) DeleteSessions(ctx context.Context) error {
	defer a.rc.creds.forget()
	a.mu.Lock()
	a.lastID, a.previous = "", ""
	a.mu.Unlock()
	return a.rc.call(ctx, "account.deleteSessions", http.MethodDelete, "/account/sessions", nil, nil, nil)
}
