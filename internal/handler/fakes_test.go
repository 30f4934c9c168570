package handler

import (
	"context"
	"slices"
	"sync"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/middleware"
	"github.com/arturoeanton/soundgate/internal/port"
)

// fakeIdentity accepts a@b.com/secret123 and issues the secret "tok".
type fakeIdentity struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	loggedOut []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: map[string]*domain.User{}}
}

func (f *fakeIdentity) Register(_ context.Context, userID, email, _, name string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return nil, port.ErrConflict
	}
	u := &domain.User{ID: userID, Email: email, Name: name}
	f.users[email] = u
	return u, nil
}

func (f *fakeIdentity) Login(_ context.Context, email, password string) (*domain.Session, error) {
	if email != "a@b.com" || password != "secret123" {
		return nil, port.ErrInvalidCredentials
	}
	return &domain.Session{ID: "s1", UserID: "u1", Provider: domain.SessionProviderEmail, Secret: "tok"}, nil
}

func (f *fakeIdentity) Logout(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, userID)
	return nil
}

func (f *fakeIdentity) LogoutSession(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, s.UserID+"/"+s.ID)
	return nil
}

func (f *fakeIdentity) Resolve(_ context.Context, secret string) (*domain.Session, *domain.User, error) {
	if secret != "tok" {
		return nil, nil, port.ErrNotFound
	}
	return &domain.Session{ID: "s1", UserID: "u1", Secret: "tok"},
		&domain.User{ID: "u1", Email: "a@b.com", Name: "A"}, nil
}

// memFiles is an in-memory FileStore.
type memFiles struct {
	mu      sync.Mutex
	files   map[string]domain.File
	content map[string][]byte
	lastQs  []port.Query
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string]domain.File{}, content: map[string][]byte{}}
}

func (m *memFiles) CreateFile(_ context.Context, bucketID, fileID string, p *domain.UploadPayload) (*domain.File, error) {
	data, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f := domain.File{ID: fileID, BucketID: bucketID, Name: p.Name, MimeType: p.MimeType, SizeOriginal: int64(len(data))}
	m.files[bucketID+"/"+fileID] = f
	m.content[bucketID+"/"+fileID] = data
	return &f, nil
}

func (m *memFiles) GetFileView(bucketID, fileID string) string {
	return "/v1/storage/buckets/" + bucketID + "/files/" + fileID + "/view"
}

func (m *memFiles) DeleteFile(_ context.Context, bucketID, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[bucketID+"/"+fileID]; !ok {
		return port.ErrNotFound
	}
	delete(m.files, bucketID+"/"+fileID)
	return nil
}

func (m *memFiles) ListFiles(_ context.Context, bucketID string, queries ...port.Query) (*domain.FileList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQs = queries
	list := &domain.FileList{}
	for _, f := range m.files {
		if f.BucketID == bucketID {
			list.Files = append(list.Files, f)
		}
	}
	list.Total = len(list.Files)
	return list, nil
}

func (m *memFiles) GetFile(_ context.Context, bucketID, fileID string) (*domain.File, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[bucketID+"/"+fileID]
	if !ok {
		return nil, nil, port.ErrNotFound
	}
	return &f, m.content[bucketID+"/"+fileID], nil
}

// memDocs is an in-memory port.Databases.
type memDocs struct {
	mu     sync.Mutex
	docs   map[string]*domain.Document
	lastQs []port.Query
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[string]*domain.Document{}}
}

func (m *memDocs) ListDocuments(_ context.Context, databaseID, collectionID string, queries ...port.Query) (*domain.DocumentList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQs = queries
	list := &domain.DocumentList{Documents: []domain.Document{}}
	for _, d := range m.docs {
		if d.DatabaseID == databaseID && d.CollectionID == collectionID {
			list.Documents = append(list.Documents, *d)
		}
	}
	list.Total = len(list.Documents)
	return list, nil
}

func (m *memDocs) CreateDocument(_ context.Context, databaseID, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[documentID]; ok {
		return nil, port.ErrConflict
	}
	d := &domain.Document{ID: documentID, DatabaseID: databaseID, CollectionID: collectionID, Data: data}
	m.docs[documentID] = d
	return d, nil
}

func (m *memDocs) UpdateDocument(_ context.Context, _, _, documentID string, data map[string]any) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[documentID]
	if !ok {
		return nil, port.ErrNotFound
	}
	for k, v := range data {
		d.Data[k] = v
	}
	return d, nil
}

// memAudit collects audit entries written by the handlers.
type memAudit struct {
	mu      sync.Mutex
	entries []string
}

func (m *memAudit) WriteAudit(userID, action, resource, resourceID, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, userID+" "+action+" "+resource+" "+resourceID)
	return nil
}

func (m *memAudit) has(entry string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.entries, entry)
}

type testBackend struct {
	app      *fiber.App
	identity *fakeIdentity
	docs     *memDocs
	files    *memFiles
	audit    *memAudit
}

func newTestBackend() *testBackend {
	tb := &testBackend{identity: newFakeIdentity(), docs: newMemDocs(), files: newMemFiles(), audit: &memAudit{}}
	tb.app = fiber.New()
	v1 := tb.app.Group("/v1", middleware.SessionMiddleware(tb.identity))
	RegisterHealth(v1, "test")
	NewAccountHandler(tb.identity, tb.audit).Register(v1)
	NewDatabasesHandler(tb.docs, tb.audit).Register(v1)
	NewStorageHandler(tb.files, tb.audit).Register(v1)
	return tb
}

// memUsers is an in-memory port.UserStore.
type memUsers struct {
	mu     sync.Mutex
	byMail map[string]*domain.User
	hashes map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byMail: map[string]*domain.User{}, hashes: map[string]string{}}
}

func (m *memUsers) CreateUser(_ context.Context, u *domain.User, hash string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMail[u.Email]; ok {
		return nil, port.ErrConflict
	}
	cp := *u
	m.byMail[u.Email] = &cp
	m.hashes[u.Email] = hash
	return &cp, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byMail[email]
	if !ok {
		return nil, "", port.ErrNotFound
	}
	return u, m.hashes[email], nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byMail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, port.ErrNotFound
}
