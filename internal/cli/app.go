package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arturoeanton/soundgate/internal/adapter/backend"
	"github.com/arturoeanton/soundgate/internal/platform"
	"github.com/arturoeanton/soundgate/internal/port"
	"github.com/arturoeanton/soundgate/internal/service"
	"github.com/arturoeanton/soundgate/pkg/config"
)

// app holds what the commands share. Everything backend-related is built
// lazily so that --help works without configuration.
type app struct {
	cfg     *config.Config
	out     io.Writer
	kind    platform.Kind
	factory *backend.Factory
	picker  port.Picker
}

func newApp(cfg *config.Config, out io.Writer) *app {
	kind := platform.Detect()
	if k, ok := platform.Parse(cfg.Platform); ok {
		kind = k
	}
	if cfg.SessionCacheDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.SessionCacheDir = filepath.Join(dir, "soundgate")
		}
	}
	if cfg.SessionCacheDir != "" {
		if err := os.MkdirAll(cfg.SessionCacheDir, 0o700); err != nil {
			slog.Warn("session cache unavailable", "dir", cfg.SessionCacheDir, "error", err)
			cfg.SessionCacheDir = ""
		}
	}

	return &app{
		cfg:     cfg,
		out:     out,
		kind:    kind,
		factory: backend.NewFactory(cfg, backend.Options{Probe: platform.Fixed(kind)}),
		picker:  newFilePicker(),
	}
}

func (a *app) handle() (*backend.Handle, error) {
	return a.factory.Instance()
}

// sessions returns a manager that has restored any saved session.
func (a *app) sessions(ctx context.Context) (*service.SessionManager, error) {
	h, err := a.handle()
	if err != nil {
		return nil, err
	}
	m := service.NewSessionManager(h.Account())
	m.Start(ctx)
	return m, nil
}

func (a *app) uploads() (*service.UploadService, error) {
	h, err := a.handle()
	if err != nil {
		return nil, err
	}
	return service.NewUploadService(h.Storage(), a.picker, a.kind), nil
}

// bucket resolves a short bucket name to its configured id.
func (a *app) bucket(name string) string {
	switch name {
	case "covers":
		return a.cfg.AlbumCoversBucketID
	case "tracks":
		return a.cfg.MusicTracksBucketID
	case "reels":
		return a.cfg.ReelsBucketID
	default:
		return name
	}
}
