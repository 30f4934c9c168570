package domain

import "time"

// User represents the authenticated identity as the backend reports it.
// Held in memory only; the client never persists it.
type User struct {
	ID        string         `json:"$id"        db:"id"`
	Email     string         `json:"email"      db:"email"`
	Name      string         `json:"name"       db:"name"`
	Prefs     map[string]any `json:"prefs"      db:"prefs"`
	CreatedAt time.Time      `json:"$createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"$updatedAt" db:"updated_at"`
}

// Session is one authenticated login. Expiry is owned by the backend; the
// client treats it as an opaque token.
type Session struct {
	ID        string    `json:"$id"`
	UserID    string    `json:"userId"`
	Provider  string    `json:"provider"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"$createdAt"`
	ExpiresAt time.Time `json:"expire"`
	// Secret is only filled for native hosts, which cannot rely on cookies.
	Secret string `json:"secret,omitempty"`
}

// SessionProviderEmail is the provider reported for email/password sessions.
const SessionProviderEmail = "email"

// SessionCookieName is the cookie that carries a browser session for projectID.
func SessionCookieName(projectID string) string {
	return "a_session_" + projectID
}
