package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

// SignUpStage names the step of SignUp that failed.
type SignUpStage string

const (
	StageCreateAccount SignUpStage = "create_account"
	StageSignIn        SignUpStage = "sign_in"
)

// SignUpError tells a failed registration apart from a registration whose
// follow-up sign-in failed (AccountCreated is true in that case).
type SignUpError struct {
	Stage          SignUpStage
	AccountCreated bool
	Err            error
}

func (e *SignUpError) Error() string {
	return fmt.Sprintf("sign up: %s: %v", e.Stage, e.Err)
}

func (e *SignUpError) Unwrap() error { return e.Err }

// SessionManager is the single source of truth for who is signed in.
//
// The UI reads snapshots through State or Subscribe and drives transitions
// with SignIn, SignUp and SignOut. Commands run one at a time; a command
// issued while another is in flight waits for it.
type SessionManager struct {
	account port.Account
	newID   func() string

	cmd         *semaphore.Weighted
	restoreOnce sync.Once

	mu    sync.RWMutex
	state domain.AuthState
	subs  []chan domain.AuthState
}

// NewSessionManager creates a manager in the Unknown state.
func NewSessionManager(account port.Account) *SessionManager {
	return &SessionManager{
		account: account,
		newID:   uuid.NewString,
		cmd:     semaphore.NewWeighted(1),
		state:   domain.UnknownState(false),
	}
}

// State returns a snapshot of the current auth state.
func (m *SessionManager) State() domain.AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.state)
}

// Subscribe returns a channel that receives every state transition and a
// func that stops delivery and closes the channel. Slow readers miss
// intermediate states; State always has the latest.
func (m *SessionManager) Subscribe() (<-chan domain.AuthState, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan domain.AuthState, 8)
	m.subs = append(m.subs, ch)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s == ch {
					m.subs = append(m.subs[:i], m.subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
}

// update is the only write path for the auth state. fn sees the current
// state under the lock and returns the next one, which is stored as a copy.
func (m *SessionManager) update(fn func(cur domain.AuthState) domain.AuthState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := snapshot(fn(m.state))
	m.state = next
	for _, ch := range m.subs {
		select {
		case ch <- snapshot(next):
		default:
		}
	}
}

func (m *SessionManager) setState(next domain.AuthState) {
	m.update(func(domain.AuthState) domain.AuthState { return next })
}

// Start runs restoration once per manager, as on the first mount of the UI.
func (m *SessionManager) Start(ctx context.Context) domain.AuthState {
	m.restoreOnce.Do(func() {
		m.Restore(ctx)
	})
	return m.State()
}

// Restore probes the backend for an existing session. It always leaves
// Unknown: Authenticated when both the account and its current session are
// readable, Anonymous otherwise.
func (m *SessionManager) Restore(ctx context.Context) domain.AuthState {
	if err := m.cmd.Acquire(ctx, 1); err != nil {
		m.update(func(cur domain.AuthState) domain.AuthState {
			if cur.Status == domain.AuthUnknown {
				return domain.AnonymousState()
			}
			return cur
		})
		return m.State()
	}
	defer m.cmd.Release(1)

	m.update(func(cur domain.AuthState) domain.AuthState {
		cur.IsLoading = true
		return cur
	})

	session, user, err := m.current(ctx)
	if err != nil {
		slog.Info("no session restored", "error", err)
		m.setState(domain.AnonymousState())
		return m.State()
	}

	slog.Info("session restored", "user_id", user.ID, "session_id", session.ID)
	m.setState(domain.AuthenticatedState(session, user))
	return m.State()
}

func (m *SessionManager) current(ctx context.Context) (*domain.Session, *domain.User, error) {
	user, err := m.account.Get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get account: %w", err)
	}
	session, err := m.account.GetSession(ctx, port.CurrentSession)
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	if user == nil || session == nil {
		return nil, nil, port.ErrNotFound
	}
	return session, user, nil
}

// SignIn creates a session and fetches its user as one unit. On failure the
// state is left untouched and an auth-kind *port.Error is returned.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	const op = "session.signIn"
	if err := m.cmd.Acquire(ctx, 1); err != nil {
		return nil, &port.Error{Kind: port.KindAuth, Op: op, Message: "sign in not started", Cause: err}
	}
	defer m.cmd.Release(1)

	session, user, err := m.login(ctx, email, password)
	if err != nil {
		slog.Warn("sign in failed", "email", email, "error", err)
		return nil, &port.Error{Kind: port.KindAuth, Op: op, Message: "sign in failed", Cause: err}
	}

	m.setState(domain.AuthenticatedState(session, user))
	slog.Info("user signed in", "user_id", user.ID)
	return user, nil
}

// SignUp creates the account, then signs in with the same credentials.
// Failures propagate as *SignUpError.
func (m *SessionManager) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	if err := m.cmd.Acquire(ctx, 1); err != nil {
		return nil, &SignUpError{Stage: StageCreateAccount, Err: err}
	}
	defer m.cmd.Release(1)

	if _, err := m.account.Create(ctx, m.newID(), email, password, name); err != nil {
		slog.Error("account creation failed", "email", email, "error", err)
		return nil, &SignUpError{Stage: StageCreateAccount, Err: err}
	}

	session, user, err := m.login(ctx, email, password)
	if err != nil {
		slog.Error("sign in after sign up failed", "email", email, "error", err)
		return nil, &SignUpError{Stage: StageSignIn, AccountCreated: true, Err: err}
	}

	m.setState(domain.AuthenticatedState(session, user))
	slog.Info("user signed up", "user_id", user.ID)
	return user, nil
}

func (m *SessionManager) login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, nil, port.ErrInvalidCredentials
	}

	session, err := m.account.CreateEmailPasswordSession(ctx, email, password)
	if err != nil {
		if errors.Is(err, port.ErrUnauthorized) {
			err = fmt.Errorf("%w: %w", port.ErrInvalidCredentials, err)
		}
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	user, err := m.account.Get(ctx)
	if err != nil {
		// Drop the half-made session so later calls keep the old identity.
		if derr := m.account.DeleteSession(context.WithoutCancel(ctx), session.ID); derr != nil {
			slog.Warn("rollback of new session failed", "session_id", session.ID, "error", derr)
		}
		return nil, nil, fmt.Errorf("get account: %w", err)
	}
	return session, user, nil
}

// SignOut deletes the remote sessions and clears local state. Local state
// becomes Anonymous even if the remote call fails; that error is returned
// for reporting only.
func (m *SessionManager) SignOut(ctx context.Context) error {
	if err := m.cmd.Acquire(ctx, 1); err != nil {
		m.setState(domain.AnonymousState())
		return fmt.Errorf("sign out: %w", err)
	}
	defer m.cmd.Release(1)

	err := m.account.DeleteSessions(ctx)
	m.setState(domain.AnonymousState())
	if err != nil {
		slog.Warn("remote sign out failed, local state cleared", "error", err)
		return fmt.Errorf("sign out: %w", err)
	}
	slog.Info("user signed out")
	return nil
}

// snapshot deep-copies s so readers cannot reach the manager's state.
// The session secret never leaves the credential layer.
func snapshot(s domain.AuthState) domain.AuthState {
	if s.Session != nil {
		sess := *s.Session
		sess.Secret = ""
		s.Session = &sess
	}
	if s.User != nil {
		u := *s.User
		u.Prefs = maps.Clone(u.Prefs)
		s.User = &u
	}
	return s
}
