package domain

// AuthStatus is the session lifecycle state seen by the UI.
type AuthStatus string

const (
	AuthUnknown       AuthStatus = "unknown"
	AuthAnonymous     AuthStatus = "anonymous"
	AuthAuthenticated AuthStatus = "authenticated"
)

// AuthState is the client-local projection of {Session, User, IsLoading}.
// User is set if and only if Session is set; build values with the
// constructors below rather than by hand.
type AuthState struct {
	Status    AuthStatus `json:"status"`
	Session   *Session   `json:"session,omitempty"`
	User      *User      `json:"user,omitempty"`
	IsLoading bool       `json:"is_loading"`
}

// UnknownState is the state before restoration resolves.
func UnknownState(loading bool) AuthState {
	return AuthState{Status: AuthUnknown, IsLoading: loading}
}

// AnonymousState has neither session nor user.
func AnonymousState() AuthState {
	return AuthState{Status: AuthAnonymous}
}

// AuthenticatedState pairs a session with its user. A nil half yields the
// anonymous state so an orphan can never be stored.
func AuthenticatedState(session *Session, user *User) AuthState {
	if session == nil || user == nil {
		return AnonymousState()
	}
	return AuthState{Status: AuthAuthenticated, Session: session, User: user}
}

// SignedIn reports whether the state carries a session.
func (s AuthState) SignedIn() bool {
	return s.Status == AuthAuthenticated
}
