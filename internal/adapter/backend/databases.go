package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

// DatabasesService implements port.Databases over the REST API.
type DatabasesService struct {
	rc *restClient
}

func documentsPath(databaseID, collectionID string) string {
	return "/databases/" + url.PathEscape(databaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}

func encodeQueries(queries []port.Query) url.Values {
	if len(queries) == 0 {
		return nil
	}
	v := url.Values{}
	for _, q := range queries {
		v.Add("queries[]", q.String())
	}
	return v
}

// ListDocuments lists documents matching all queries.
func (d *DatabasesService) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...port.Query) (*domain.DocumentList, error) {
	var list domain.DocumentList
	path := documentsPath(databaseID, collectionID)
	if err := d.rc.call(ctx, "databases.listDocuments", http.MethodGet, path, encodeQueries(queries), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateDocument stores data under documentID.
func (d *DatabasesService) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	payload := map[string]any{"documentId": documentID, "data": data}
	var doc domain.Document
	path := documentsPath(databaseID, collectionID)
	if err := d.rc.call(ctx, "databases.createDocument", http.MethodPost, path, nil, payload, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument merges data into an existing document.
func (d *DatabasesService) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	payload := map[string]any{"data": data}
	var doc domain.Document
	path := documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID)
	if err := d.rc.call(ctx, "databases.updateDocument", http.MethodPatch, path, nil, payload, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
