package port

import (
	"context"

	"github.com/arturoeanton/soundgate/internal/domain"
)

// Databases abstracts the backend's document store. Every call is scoped to
// a database id + collection id pair supplied by configuration.
type Databases interface {
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...Query) (*domain.DocumentList, error)
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*domain.Document, error)
	UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*domain.Document, error)
}

// Storage abstracts the backend's blob store.
type Storage interface {
	// CreateFile stores payload under bucketID with the given file id.
	CreateFile(ctx context.Context, bucketID, fileID string, payload *domain.UploadPayload) (*domain.File, error)

	// GetFileView returns the public view URL. It performs no request.
	GetFileView(bucketID, fileID string) string

	DeleteFile(ctx context.Context, bucketID, fileID string) error

	ListFiles(ctx context.Context, bucketID string, queries ...Query) (*domain.FileList, error)
}

// Picker presents a file picker. ok is false when the user cancelled, which
// is not an error.
type Picker interface {
	Pick(ctx context.Context, kind domain.MediaKind) (asset domain.Asset, ok bool, err error)
}
