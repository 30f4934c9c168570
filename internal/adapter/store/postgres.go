package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

// PostgresStore handles all relational database operations of the dev backend.
type PostgresStore struct {
	db        *sql.DB
	publicURL string
	projectID string
}

// NewPostgresStore opens a connection and returns a store instance.
// publicURL is the externally visible API root used to build file view URLs.
func NewPostgresStore(databaseURL, publicURL, projectID string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db, publicURL: strings.TrimRight(publicURL, "/"), projectID: projectID}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// isUniqueViolation reports a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, port.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// --- Users ---

// CreateUser inserts a new account.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User, passwordHash string) (*domain.User, error) {
	prefs, err := json.Marshal(nonNilMap(u.Prefs))
	if err != nil {
		return nil, fmt.Errorf("encode prefs: %w", err)
	}

	query := `INSERT INTO users (id, email, name, password_hash, prefs)
	          VALUES ($1, $2, $3, $4, $5::jsonb)
	          RETURNING created_at, updated_at`

	user := *u
	user.Prefs = nonNilMap(u.Prefs)
	err = s.db.QueryRowContext(ctx, query, u.ID, u.Email, u.Name, passwordHash, string(prefs)).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create user: %w", port.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail returns a user and its password hash.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	query := `SELECT id, email, name, prefs, password_hash, created_at, updated_at
	          FROM users WHERE email = $1`

	var (
		user  domain.User
		prefs []byte
		hash  string
	)
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &prefs, &hash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, "", notFound(err, "get user")
	}
	if err := json.Unmarshal(prefs, &user.Prefs); err != nil {
		return nil, "", fmt.Errorf("decode prefs: %w", err)
	}
	return &user, hash, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, name, prefs, created_at, updated_at FROM users WHERE id = $1`

	var (
		user  domain.User
		prefs []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &prefs, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "get user")
	}
	if err := json.Unmarshal(prefs, &user.Prefs); err != nil {
		return nil, fmt.Errorf("decode prefs: %w", err)
	}
	return &user, nil
}

// --- Documents ---

// ListDocuments returns the documents of a collection that match queries.
func (s *PostgresStore) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...port.Query) (*domain.DocumentList, error) {
	f, err := buildFilter([]any{databaseID, collectionID}, queries, documentColumn, "created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w: %w", port.ErrInvalidArgument, err)
	}

	query := `SELECT id, database_id, collection_id, data, created_at, updated_at, COUNT(*) OVER()
	          FROM documents WHERE database_id = $1 AND collection_id = $2` + f.tail()

	rows, err := s.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	list := &domain.DocumentList{Documents: []domain.Document{}}
	for rows.Next() {
		var (
			d    domain.Document
			data []byte
		)
		if err := rows.Scan(&d.ID, &d.DatabaseID, &d.CollectionID, &data, &d.CreatedAt, &d.UpdatedAt, &list.Total); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if err := json.Unmarshal(data, &d.Data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", d.ID, err)
		}
		list.Documents = append(list.Documents, d)
	}
	return list, rows.Err()
}

// CreateDocument inserts a document.
func (s *PostgresStore) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	raw, err := json.Marshal(nonNilMap(data))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	query := `INSERT INTO documents (id, database_id, collection_id, data)
	          VALUES ($1, $2, $3, $4::jsonb)
	          RETURNING created_at, updated_at`

	d := domain.Document{ID: documentID, DatabaseID: databaseID, CollectionID: collectionID, Data: nonNilMap(data)}
	err = s.db.QueryRowContext(ctx, query, documentID, databaseID, collectionID, string(raw)).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create document: %w", port.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return &d, nil
}

// UpdateDocument merges data into an existing document.
func (s *PostgresStore) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	raw, err := json.Marshal(nonNilMap(data))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	query := `UPDATE documents SET data = data || $4::jsonb, updated_at = NOW()
	          WHERE database_id = $1 AND collection_id = $2 AND id = $3
	          RETURNING data, created_at, updated_at`

	d := domain.Document{ID: documentID, DatabaseID: databaseID, CollectionID: collectionID}
	var merged []byte
	err = s.db.QueryRowContext(ctx, query, databaseID, collectionID, documentID, string(raw)).
		Scan(&merged, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "update document")
	}
	if err := json.Unmarshal(merged, &d.Data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &d, nil
}

// --- Files ---

// CreateFile stores an uploaded file. Native uploads arrive base64 encoded
// and are decoded here.
func (s *PostgresStore) CreateFile(ctx context.Context, bucketID, fileID string, p *domain.UploadPayload) (*domain.File, error) {
	data, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("create file: %w: %w", port.ErrInvalidArgument, err)
	}

	query := `INSERT INTO files (id, bucket_id, name, mime_type, size, content)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`

	f := domain.File{ID: fileID, BucketID: bucketID, Name: p.Name, MimeType: p.MimeType, SizeOriginal: int64(len(data))}
	err = s.db.QueryRowContext(ctx, query, fileID, bucketID, p.Name, p.MimeType, f.SizeOriginal, data).Scan(&f.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create file: %w", port.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	return &f, nil
}

// GetFile returns file metadata and content.
func (s *PostgresStore) GetFile(ctx context.Context, bucketID, fileID string) (*domain.File, []byte, error) {
	query := `SELECT id, bucket_id, name, mime_type, size, content, created_at
	          FROM files WHERE bucket_id = $1 AND id = $2`

	var (
		f       domain.File
		content []byte
	)
	err := s.db.QueryRowContext(ctx, query, bucketID, fileID).Scan(
		&f.ID, &f.BucketID, &f.Name, &f.MimeType, &f.SizeOriginal, &content, &f.CreatedAt,
	)
	if err != nil {
		return nil, nil, notFound(err, "get file")
	}
	return &f, content, nil
}

// GetFileView returns the public view URL of a file.
func (s *PostgresStore) GetFileView(bucketID, fileID string) string {
	return s.publicURL + "/storage/buckets/" + url.PathEscape(bucketID) + "/files/" +
		url.PathEscape(fileID) + "/view?project=" + url.QueryEscape(s.projectID)
}

// DeleteFile removes a file.
func (s *PostgresStore) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE bucket_id = $1 AND id = $2`, bucketID, fileID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete file: %w", port.ErrNotFound)
	}
	return nil
}

// ListFiles lists a bucket without file contents.
func (s *PostgresStore) ListFiles(ctx context.Context, bucketID string, queries ...port.Query) (*domain.FileList, error) {
	f, err := buildFilter([]any{bucketID}, queries, fileColumn, "created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list files: %w: %w", port.ErrInvalidArgument, err)
	}

	query := `SELECT id, bucket_id, name, mime_type, size, created_at, COUNT(*) OVER()
	          FROM files WHERE bucket_id = $1` + f.tail()

	rows, err := s.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	list := &domain.FileList{Files: []domain.File{}}
	for rows.Next() {
		var file domain.File
		if err := rows.Scan(&file.ID, &file.BucketID, &file.Name, &file.MimeType, &file.SizeOriginal, &file.CreatedAt, &list.Total); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		list.Files = append(list.Files, file)
	}
	return list, rows.Err()
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(context.Background(), query,
		userID, action, resource, resourceID, details, ip, userAgent,
	)
	return err
}

// ListAuditLogs returns recent audit logs with optional filters.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details, ip, user_agent, created_at
	          FROM audit_logs`
	args := []any{}
	argIdx := 1

	if action != "" {
		query += fmt.Sprintf(" WHERE action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
