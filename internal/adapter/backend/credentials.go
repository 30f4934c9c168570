package backend

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arturoeanton/soundgate/internal/domain"
)

// credentials carries the signed-in session between requests.
type credentials interface {
	apply(req *http.Request)
	remember(s *domain.Session)
	forget()

	// snapshot and restore save and reinstate the held secret ("" = none).
	snapshot() string
	restore(secret string)
}

// cookieCredentials leaves the session to the backend's cookie, like a browser does.
type cookieCredentials struct {
	jar       http.CookieJar
	endpoint  *url.URL
	projectID string
}

func newCookieCredentials(endpoint, projectID string) (*cookieCredentials, http.CookieJar, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("parse endpoint: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &cookieCredentials{jar: jar, endpoint: u, projectID: projectID}, jar, nil
}

func (c *cookieCredentials) apply(*http.Request) {}

func (c *cookieCredentials) remember(*domain.Session) {}

func (c *cookieCredentials) forget() {
	c.jar.SetCookies(c.endpoint, []*http.Cookie{{
		Name:   SessionCookie(c.projectID),
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

func (c *cookieCredentials) snapshot() string {
	for _, ck := range c.jar.Cookies(c.endpoint) {
		if ck.Name == SessionCookie(c.projectID) {
			return ck.Value
		}
	}
	return ""
}

func (c *cookieCredentials) restore(secret string) {
	if secret == "" {
		c.forget()
		return
	}
	c.jar.SetCookies(c.endpoint, []*http.Cookie{{
		Name:     SessionCookie(c.projectID),
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
	}})
}

// SecretCache persists a native session secret across process restarts so
// restoration can find it on a cold start.
type SecretCache interface {
	Load() (string, error)
	Save(secret string) error
	Clear() error
}

// secretCredentials sends the session secret as a header, like a native SDK.
type secretCredentials struct {
	mu     sync.RWMutex
	secret string
	cache  SecretCache
}

func newSecretCredentials(cache SecretCache) *secretCredentials {
	c := &secretCredentials{cache: cache}
	if cache != nil {
		if s, err := cache.Load(); err == nil {
			c.secret = s
		}
	}
	return c
}

func (c *secretCredentials) apply(req *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.secret != "" {
		req.Header.Set(HeaderSession, c.secret)
	}
}

func (c *secretCredentials) remember(s *domain.Session) {
	if s == nil || s.Secret == "" {
		return
	}
	c.mu.Lock()
	c.secret = s.Secret
	c.mu.Unlock()
	if c.cache != nil {
		_ = c.cache.Save(s.Secret)
	}
}

func (c *secretCredentials) forget() {
	c.mu.Lock()
	c.secret = ""
	c.mu.Unlock()
	if c.cache != nil {
		_ = c.cache.Clear()
	}
}

func (c *secretCredentials) snapshot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secret
}

func (c *secretCredentials) restore(secret string) {
	if secret == "" {
		c.forget()
		return
	}
	c.remember(&domain.Session{Secret: secret})
}

// FileSecretCache stores the secret in a single 0600 file.
type FileSecretCache struct {
	Path string
}

// NewFileSecretCache returns a cache at dir/<projectID>.session.
func NewFileSecretCache(dir, projectID string) *FileSecretCache {
	return &FileSecretCache{Path: filepath.Join(dir, projectID+".session")}
}

func (f *FileSecretCache) Load() (string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (f *FileSecretCache) Save(secret string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(secret), 0o600)
}

func (f *FileSecretCache) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
