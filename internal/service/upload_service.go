package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/platform"
	"github.com/arturoeanton/soundgate/internal/port"
)

const octetStream = "application/octet-stream"

// InferMimeType guesses an audio media type from a file name. An unknown
// extension yields the audio wildcard; a wrong guess only degrades metadata.
func InferMimeType(name string) string {
	if name == "" {
		return octetStream
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "aac":
		return "audio/aac"
	case "flac":
		return "audio/flac"
	default:
		return "audio/*"
	}
}

// UploadService normalizes picked files for the host platform and stores
// them in the blob store.
type UploadService struct {
	storage  port.Storage
	picker   port.Picker
	platform platform.Kind
	fetcher  *http.Client
	newID    func() string
}

// NewUploadService creates an upload service for the given host platform.
// picker may be nil when only Upload is used.
func NewUploadService(storage port.Storage, picker port.Picker, kind platform.Kind) *UploadService {
	return &UploadService{
		storage:  storage,
		picker:   picker,
		platform: kind,
		fetcher:  http.DefaultClient,
		newID:    uuid.NewString,
	}
}

// WithFetcher sets the HTTP client used to read object URLs on browser hosts.
func (s *UploadService) WithFetcher(c *http.Client) *UploadService {
	s.fetcher = c
	return s
}

// PickAndUpload shows the picker and uploads the selection. ok is false when
// the user cancelled; no request is made in that case.
func (s *UploadService) PickAndUpload(ctx context.Context, bucketID string, kind domain.MediaKind) (viewURL string, ok bool, err error) {
	if s.picker == nil {
		return "", false, port.Wrap(port.KindInvalidArgument, "upload.pick", "no picker configured", port.ErrInvalidArgument)
	}

	asset, ok, err := s.picker.Pick(ctx, kind)
	if err != nil {
		return "", false, fmt.Errorf("pick %s: %w", kind, err)
	}
	if !ok {
		slog.Info("file picking cancelled", "kind", kind)
		return "", false, nil
	}

	if kind == domain.MediaAudio {
		asset.MimeType = InferMimeType(asset.Name)
	}

	viewURL, err = s.Upload(ctx, bucketID, asset)
	if err != nil {
		return "", true, err
	}
	slog.Info("upload successful", "kind", kind, "url", viewURL)
	return viewURL, true, nil
}

// Upload stores asset in bucketID under a fresh id and returns its public
// view URL.
func (s *UploadService) Upload(ctx context.Context, bucketID string, asset domain.Asset) (string, error) {
	const op = "upload.media"
	if asset.URI == "" {
		return "", port.Wrap(port.KindInvalidArgument, op, "no file selected in asset", port.ErrInvalidArgument)
	}
	if bucketID == "" {
		return "", port.Wrap(port.KindInvalidArgument, op, "bucket id is required", port.ErrInvalidArgument)
	}

	payload, err := s.Prepare(ctx, asset)
	if err != nil {
		slog.Error("upload preparation failed", "uri", asset.URI, "error", err)
		return "", err
	}

	file, err := s.storage.CreateFile(ctx, bucketID, s.newID(), payload)
	if err != nil {
		slog.Error("file upload failed", "bucket_id", bucketID, "error", err)
		return "", fmt.Errorf("create file: %w", err)
	}
	slog.Info("file uploaded", "bucket_id", bucketID, "file_id", file.ID, "size", payload.Size)

	return s.storage.GetFileView(bucketID, file.ID), nil
}

// Prepare turns a picker asset into an upload payload for the host platform.
func (s *UploadService) Prepare(ctx context.Context, asset domain.Asset) (*domain.UploadPayload, error) {
	if s.platform == platform.Browser {
		return s.prepareBrowser(ctx, asset)
	}
	return prepareNative(asset)
}

// prepareBrowser reads the object URL as a blob. No disk access.
func (s *UploadService) prepareBrowser(ctx context.Context, asset domain.Asset) (*domain.UploadPayload, error) {
	const op = "upload.prepareBrowser"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URI, nil)
	if err != nil {
		return nil, port.Wrap(port.KindInvalidArgument, op, "bad object url", err)
	}
	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, port.Wrap(port.KindLocalFile, op, "fetch object url", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, port.Wrap(port.KindLocalFile, op, asset.URI, port.ErrFileNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, port.Wrap(port.KindLocalFile, op, asset.URI, fmt.Errorf("fetch returned %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, port.Wrap(port.KindLocalFile, op, "read blob", err)
	}

	name := asset.Name
	if name == "" {
		if u, err := url.Parse(asset.URI); err == nil {
			name = path.Base(u.Path)
		}
	}

	mimeType := asset.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	if mimeType == "" || mimeType == octetStream {
		mimeType = mimetype.Detect(data).String()
	}

	return &domain.UploadPayload{
		SourceURI: asset.URI,
		Name:      name,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		Data:      data,
	}, nil
}

// prepareNative confirms the file exists and reads it base64 encoded.
func prepareNative(asset domain.Asset) (*domain.UploadPayload, error) {
	const op = "upload.prepareNative"
	p := localPath(asset.URI)

	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, port.Wrap(port.KindLocalFile, op, p, port.ErrFileNotFound)
	}
	if err != nil {
		return nil, port.Wrap(port.KindLocalFile, op, p, err)
	}
	if info.IsDir() {
		return nil, port.Wrap(port.KindLocalFile, op, p, fmt.Errorf("is a directory"))
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, port.Wrap(port.KindLocalFile, op, p, err)
	}

	name := asset.Name
	if name == "" {
		name = filepath.Base(p)
	}
	mimeType := asset.MimeType
	if mimeType == "" {
		mimeType = sniffMimeType(data, name)
	}

	return &domain.UploadPayload{
		SourceURI: asset.URI,
		Name:      name,
		MimeType:  mimeType,
		Size:      info.Size(),
		Base64:    base64.StdEncoding.EncodeToString(data),
		Encoded:   true,
	}, nil
}

// sniffMimeType trusts content signatures and falls back to the file name
// for content that carries none.
func sniffMimeType(data []byte, name string) string {
	m := mimetype.Detect(data)
	if m.Is(octetStream) || m.Is("text/plain") {
		return InferMimeType(name)
	}
	return m.String()
}

// localPath accepts plain paths and file:// URIs.
func localPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		if u, err := url.Parse(uri); err == nil {
			return filepath.FromSlash(u.Path)
		}
	}
	return uri
}

// GetFileView returns the public view URL of a stored file.
func (s *UploadService) GetFileView(bucketID, fileID string) string {
	return s.storage.GetFileView(bucketID, fileID)
}

// DeleteFile removes a stored file.
func (s *UploadService) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	if err := s.storage.DeleteFile(ctx, bucketID, fileID); err != nil {
		slog.Error("delete file failed", "bucket_id", bucketID, "file_id", fileID, "error", err)
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
