package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

// StorageService implements port.Storage over the REST API.
type StorageService struct {
	rc *restClient
}

func filesPath(bucketID string) string {
	return "/storage/buckets/" + url.PathEscape(bucketID) + "/files"
}

// CreateFile uploads payload as multipart/form-data.
func (s *StorageService) CreateFile(ctx context.Context, bucketID, fileID string, payload *domain.UploadPayload) (*domain.File, error) {
	const op = "storage.createFile"
	if payload == nil {
		return nil, port.NewError(port.KindInvalidArgument, op, "nil payload")
	}
	content, err := payload.Bytes()
	if err != nil {
		return nil, port.Wrap(port.KindInvalidArgument, op, "decode payload", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileId", fileID); err != nil {
		return nil, port.Wrap(port.KindInvalidArgument, op, "write form", err)
	}

	mimeType := payload.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(payload.Name)))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, port.Wrap(port.KindInvalidArgument, op, "write form", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, port.Wrap(port.KindInvalidArgument, op, "write form", err)
	}
	if err := mw.Close(); err != nil {
		return nil, port.Wrap(port.KindInvalidArgument, op, "write form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.rc.url(filesPath(bucketID), nil), &buf)
	if err != nil {
		return nil, port.Wrap(port.KindInvalidArgument, op, "create request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var file domain.File
	if err := s.rc.send(op, req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetFileView builds the public view URL for a stored file.
func (s *StorageService) GetFileView(bucketID, fileID string) string {
	q := url.Values{"project": {s.rc.projectID}}
	return s.rc.url(filesPath(bucketID)+"/"+url.PathEscape(fileID)+"/view", q)
}

// DeleteFile removes a stored file.
func (s *StorageService) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	path := filesPath(bucketID) + "/" + url.PathEscape(fileID)
	return s.rc.call(ctx, "storage.deleteFile", http.MethodDelete, path, nil, nil, nil)
}

// ListFiles lists files in a bucket; pass Limit/Offset queries to page.
func (s *StorageService) ListFiles(ctx context.Context, bucketID string, queries ...port.Query) (*domain.FileList, error) {
	var list domain.FileList
	if err := s.rc.call(ctx, "storage.listFiles", http.MethodGet, filesPath(bucketID), encodeQueries(queries), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
