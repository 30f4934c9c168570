package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

var errBackendDown = errors.New("backend unreachable")

// fakeAccount is an in-memory identity backend.
type fakeAccount struct {
	mu        sync.Mutex
	users     map[string]*domain.User // by email
	passwords map[string]string
	current   *domain.Session
	currentU  *domain.User
	prev      *domain.Session
	prevU     *domain.User

	getErr        error
	getSessionErr error
	deleteErr     error
	createErr     error
	sessionErr    error

	onCreateSession func()
	onGet           func()

	deletedSessions []string

	sessionCalls atomic.Int32
	deleteCalls  atomic.Int32
}

func newFakeAccount() *fakeAccount {
	return &fakeAccount{users: map[string]*domain.User{}, passwords: map[string]string{}}
}

func (f *fakeAccount) seed(email, password, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = &domain.User{ID: "u-" + email, Email: email, Name: name}
	f.passwords[email] = password
}

func (f *fakeAccount) Create(_ context.Context, userID, email, password, name string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[email]; ok {
		return nil, &port.Error{Kind: port.KindRemote, Op: "account.create", Message: "user exists", Cause: port.ErrConflict}
	}
	u := &domain.User{ID: userID, Email: email, Name: name}
	f.users[email] = u
	f.passwords[email] = password
	return u, nil
}

func (f *fakeAccount) CreateEmailPasswordSession(_ context.Context, email, password string) (*domain.Session, error) {
	f.sessionCalls.Add(1)
	if f.onCreateSession != nil {
		f.onCreateSession()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	u, ok := f.users[email]
	if !ok || f.passwords[email] != password {
		return nil, &port.Error{Kind: port.KindRemote, Op: "account.createEmailPasswordSession", Message: "Invalid credentials", Cause: port.ErrUnauthorized}
	}
	f.prev, f.prevU = f.current, f.currentU
	f.current = &domain.Session{ID: "s-" + u.ID, UserID: u.ID, Provider: domain.SessionProviderEmail, Current: true, Secret: "secret-" + u.ID}
	f.currentU = u
	return f.current, nil
}

func (f *fakeAccount) Get(context.Context) (*domain.User, error) {
	if f.onGet != nil {
		f.onGet()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.currentU == nil {
		return nil, port.ErrUnauthorized
	}
	return f.currentU, nil
}

func (f *fakeAccount) GetSession(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getSessionErr != nil {
		return nil, f.getSessionErr
	}
	if f.current == nil || id != port.CurrentSession {
		return nil, port.ErrNotFound
	}
	return f.current, nil
}

func (f *fakeAccount) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedSessions = append(f.deletedSessions, id)
	if f.current != nil && f.current.ID == id {
		f.current, f.currentU = f.prev, f.prevU
		f.prev, f.prevU = nil, nil
	}
	return nil
}

func (f *fakeAccount) DeleteSessions(context.Context) error {
	f.deleteCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.current, f.currentU = nil, nil
	return nil
}

// fakeStorage records blob-store traffic.
type fakeStorage struct {
	mu       sync.Mutex
	created  []*domain.UploadPayload
	buckets  []string
	files    map[string][]domain.File
	calls    atomic.Int32
	err      error
	listArgs [][]port.Query
}

func (f *fakeStorage) CreateFile(_ context.Context, bucketID, fileID string, p *domain.UploadPayload) (*domain.File, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	f.buckets = append(f.buckets, bucketID)
	return &domain.File{ID: fileID, BucketID: bucketID, Name: p.Name, MimeType: p.MimeType}, nil
}

func (f *fakeStorage) GetFileView(bucketID, fileID string) string {
	return "https://backend.test/v1/storage/buckets/" + bucketID + "/files/" + fileID + "/view?project=p"
}

func (f *fakeStorage) DeleteFile(context.Context, string, string) error {
	f.calls.Add(1)
	return f.err
}

func (f *fakeStorage) ListFiles(_ context.Context, bucketID string, queries ...port.Query) (*domain.FileList, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listArgs = append(f.listArgs, queries)
	files := f.files[bucketID]
	return &domain.FileList{Total: len(files), Files: files}, f.err
}

// fakeDatabases keeps documents per collection.
type fakeDatabases struct {
	mu      sync.Mutex
	docs    map[string][]domain.Document
	queries [][]port.Query
	calls   atomic.Int32
	err     error
}

func newFakeDatabases() *fakeDatabases {
	return &fakeDatabases{docs: map[string][]domain.Document{}}
}

func (f *fakeDatabases) ListDocuments(_ context.Context, _, collectionID string, queries ...port.Query) (*domain.DocumentList, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, queries)
	var out []domain.Document
	for _, d := range f.docs[collectionID] {
		if matches(d, queries) {
			out = append(out, d)
		}
	}
	return &domain.DocumentList{Total: len(out), Documents: out}, nil
}

func matches(d domain.Document, queries []port.Query) bool {
	for _, q := range queries {
		if q.Method != port.QueryEqual {
			continue
		}
		got := d.Data[q.Attribute]
		if q.Attribute == "$id" {
			got = d.ID
		}
		if got != q.Values[0] {
			return false
		}
	}
	return true
}

func (f *fakeDatabases) CreateDocument(_ context.Context, databaseID, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := domain.Document{ID: documentID, DatabaseID: databaseID, CollectionID: collectionID, Data: data}
	f.docs[collectionID] = append(f.docs[collectionID], d)
	return &d, nil
}

func (f *fakeDatabases) UpdateDocument(_ context.Context, _, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.docs[collectionID] {
		if d.ID == documentID {
			for k, v := range data {
				d.Data[k] = v
			}
			f.docs[collectionID][i] = d
			return &d, nil
		}
	}
	return nil, port.ErrNotFound
}

// fakePicker returns a fixed selection, or cancels when asset is nil.
type fakePicker struct {
	asset *domain.Asset
	err   error
	kinds []domain.MediaKind
}

func (p *fakePicker) Pick(_ context.Context, kind domain.MediaKind) (domain.Asset, bool, error) {
	p.kinds = append(p.kinds, kind)
	if p.err != nil {
		return domain.Asset{}, false, p.err
	}
	if p.asset == nil {
		return domain.Asset{}, false, nil
	}
	return *p.asset, true, nil
}
