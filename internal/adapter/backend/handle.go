// Package backend binds the client core to the hosted backend. It resolves,
// once per process, which binding fits the host platform and hands out an
// immutable Handle exposing the account, document-store and blob-store
// capability groups.
package backend

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/arturoeanton/soundgate/internal/platform"
	"github.com/arturoeanton/soundgate/internal/port"
	"github.com/arturoeanton/soundgate/pkg/config"
)

// Binding is the closed set of backend bindings.
type Binding int

const (
	BrowserBinding Binding = iota + 1
	NativeBinding
)

func (b Binding) String() string {
	switch b {
	case BrowserBinding:
		return "browser"
	case NativeBinding:
		return "native"
	}
	return "unknown"
}

func bindingFor(k platform.Kind) Binding {
	if k == platform.Browser {
		return BrowserBinding
	}
	return NativeBinding
}

// Handle is the resolved set of backend capabilities. It is immutable after
// construction, independent of any session, and safe for concurrent use.
type Handle struct {
	binding   Binding
	account   *AccountService
	databases *DatabasesService
	storage   *StorageService
}

// Binding reports which binding the handle was built with.
func (h *Handle) Binding() Binding { return h.binding }

// Account returns the identity operations.
func (h *Handle) Account() port.Account { return h.account }

// Databases returns the document-store operations.
func (h *Handle) Databases() port.Databases { return h.databases }

// Storage returns the blob-store operations.
func (h *Handle) Storage() port.Storage { return h.storage }

// Options tune how the handle is built. Zero values pick the defaults.
type Options struct {
	Probe       platform.Probe // default platform.Detect
	HTTPClient  *http.Client   // template; the browser binding gets its own cookie jar
	SecretCache SecretCache    // native only
}

// Factory builds the Handle on first use and memoizes the outcome, error
// included. Construct one at application start and share it.
type Factory struct {
	cfg  *config.Config
	opts Options

	once   sync.Once
	handle *Handle
	err    error
}

// NewFactory creates a factory for cfg. Nothing is validated until Instance.
func NewFactory(cfg *config.Config, opts Options) *Factory {
	if opts.Probe == nil {
		opts.Probe = platform.Detect
	}
	return &Factory{cfg: cfg, opts: opts}
}

// Instance returns the process-wide handle, building it on the first call.
func (f *Factory) Instance() (*Handle, error) {
	f.once.Do(func() {
		f.handle, f.err = build(f.cfg, f.opts)
	})
	return f.handle, f.err
}

func build(cfg *config.Config, opts Options) (*Handle, error) {
	binding := bindingFor(opts.Probe())
	if err := cfg.Validate(binding == NativeBinding); err != nil {
		slog.Error("backend configuration invalid", "binding", binding.String(), "error", err)
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		httpClient = &clone
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = 30 * time.Second
	}

	rc := &restClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		projectID:  cfg.ProjectID,
		httpClient: httpClient,
	}

	switch binding {
	case BrowserBinding:
		creds, jar, err := newCookieCredentials(rc.endpoint, cfg.ProjectID)
		if err != nil {
			return nil, port.Wrap(port.KindConfig, "backend.build", "invalid endpoint", err)
		}
		httpClient.Jar = jar
		rc.creds = creds
	case NativeBinding:
		rc.origin = "appwrite-native://" + cfg.BundleID
		cache := opts.SecretCache
		if cache == nil && cfg.SessionCacheDir != "" {
			cache = NewFileSecretCache(cfg.SessionCacheDir, cfg.ProjectID)
		}
		rc.creds = newSecretCredentials(cache)
	}

	slog.Info("backend handle ready", "binding", binding.String(), "endpoint", rc.endpoint)
	return &Handle{
		binding:   binding,
		account:   &AccountService{rc: rc},
		databases: &DatabasesService{rc: rc},
		storage:   &StorageService{rc: rc},
	}, nil
}
