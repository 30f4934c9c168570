package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

// MinPasswordLength is the shortest password the dev backend accepts.
const MinPasswordLength = 8

// IdentityService is the dev backend's side of email/password auth:
// registration, session issuing and session resolution.
type IdentityService struct {
	users    port.UserStore
	sessions port.SessionStore
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

// NewIdentityService creates an identity service issuing sessions valid for ttl.
func NewIdentityService(users port.UserStore, sessions port.SessionStore, ttl time.Duration) *IdentityService {
	return &IdentityService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// HashPassword hashes a plaintext password using bcrypt.
func (s *IdentityService) HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, port.ErrInvalidArgument)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Register creates an account. userID may be empty to let the backend pick.
func (s *IdentityService) Register(ctx context.Context, userID, email, password, name string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q: %w", email, port.ErrInvalidArgument)
	}
	if userID == "" || userID == "unique()" {
		userID = uuid.NewString()
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, &domain.User{ID: userID, Email: email, Name: name}, hash)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	slog.Info("account created", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues a session. The returned session
// carries its secret.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, hash, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, port.ErrNotFound) {
		return nil, port.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, port.ErrInvalidCredentials
	}

	secret, err := newSecret()
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Provider:  domain.SessionProviderEmail,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Secret:    secret,
	}
	if err := s.sessions.Create(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	slog.Info("session created", "user_id", user.ID, "session_id", session.ID)
	return session, nil
}

// Resolve returns the session and user a secret belongs to.
func (s *IdentityService) Resolve(ctx context.Context, secret string) (*domain.Session, *domain.User, error) {
	session, err := s.sessions.Get(ctx, secret)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve session: %w", err)
	}
	return session, user, nil
}

// LogoutSession deletes a single session.
func (s *IdentityService) LogoutSession(ctx context.Context, session *domain.Session) error {
	if err := s.sessions.Delete(ctx, session); err != nil {
		return fmt.Errorf("logout session: %w", err)
	}
	slog.Info("session deleted", "user_id", session.UserID, "session_id", session.ID)
	return nil
}

// Logout deletes every session of userID.
func (s *IdentityService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	slog.Info("sessions deleted", "user_id", userID)
	return nil
}

func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
