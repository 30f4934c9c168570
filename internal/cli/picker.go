package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/gabriel-vasile/mimetype"

	"github.com/arturoeanton/soundgate/internal/domain"
)

// allowedTypes are the extensions offered per media kind.
var allowedTypes = map[domain.MediaKind][]string{
	domain.MediaImage:    {".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic"},
	domain.MediaVideo:    {".mp4", ".mov", ".webm", ".m4v"},
	domain.MediaAudio:    {".mp3", ".wav", ".aac", ".flac", ".m4a", ".ogg"},
	domain.MediaDocument: nil,
}

// filePicker is the terminal file picker. Aborting the form is a
// cancellation, not an error.
type filePicker struct {
	dir string
	run func(*huh.Form) error
}

func newFilePicker() *filePicker {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return &filePicker{dir: dir, run: func(f *huh.Form) error { return f.Run() }}
}

func (p *filePicker) form(kind domain.MediaKind, path *string) *huh.Form {
	fp := huh.NewFilePicker().
		Title(fmt.Sprintf("Select a %s file", kind)).
		CurrentDirectory(p.dir).
		Picking(true).
		Value(path)
	if types := allowedTypes[kind]; len(types) > 0 {
		fp = fp.AllowedTypes(types)
	}
	return huh.NewForm(huh.NewGroup(fp))
}

// Pick shows the picker and describes the chosen file.
func (p *filePicker) Pick(ctx context.Context, kind domain.MediaKind) (domain.Asset, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Asset{}, false, err
	}
	var path string
	err := p.run(p.form(kind, &path))
	if errors.Is(err, huh.ErrUserAborted) {
		return domain.Asset{}, false, nil
	}
	if err != nil {
		return domain.Asset{}, false, fmt.Errorf("file picker: %w", err)
	}
	if path == "" {
		return domain.Asset{}, false, nil
	}
	return describe(path)
}

// describe builds an asset for a local file, sniffing its media type.
func describe(path string) (domain.Asset, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Asset{}, false, fmt.Errorf("file picker: %w", err)
	}
	asset := domain.Asset{
		URI:  path,
		Name: filepath.Base(path),
		Size: info.Size(),
	}
	if m, err := mimetype.DetectFile(path); err == nil && !m.Is("application/octet-stream") {
		asset.MimeType = m.String()
	}
	return asset, true, nil
}
