package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/dmitrijs2005/docverify/internal/dbx"
	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/documents"
	refreshtokensrepo "github.com/dmitrijs2005/docverify/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/signatures"
	usersrepo "github.com/dmitrijs2005/docverify/internal/server/repositories/users"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/verifications"
	"github.com/dmitrijs2005/docverify/internal/verification"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byName map[string]*models.User
	byID   map[int64]*models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = 1
	return u, nil
}

func (f *fakeUsersRepo) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byName[userName]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	consumeOut *models.RefreshToken
	consumeErr error
	consumed   []string

	purgeErr error
	purged   []int64

	createErr error
	created   []int64
	expiries  []time.Time
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, userID)
	f.expiries = append(f.expiries, expiresAt)
	return nil
}

func (f *fakeRefreshRepo) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.consumed = append(f.consumed, token)
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return f.consumeOut, nil
}

func (f *fakeRefreshRepo) PurgeExpired(ctx context.Context, userID int64, now time.Time) (int64, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.purged = append(f.purged, userID)
	return 0, nil
}

// --- documents ---

type fakeDocsRepo struct {
	mu     sync.Mutex
	docs   map[int64]*models.Document
	nextID int64

	getErr    error
	updateErr error
}

func newFakeDocs(docs ...*models.Document) *fakeDocsRepo {
	f := &fakeDocsRepo{docs: map[int64]*models.Document{}, nextID: 100}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *fakeDocsRepo) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	doc.ID = f.nextID
	doc.Status = models.DocumentPending
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	cp := *doc
	f.docs[doc.ID] = &cp
	return doc, nil
}

func (f *fakeDocsRepo) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.docs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocsRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Document, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeDocsRepo) mutate(id int64, fn func(d *models.Document)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	d, ok := f.docs[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(d)
	return nil
}

func (f *fakeDocsRepo) UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus) error {
	return f.mutate(id, func(d *models.Document) { d.Status = status })
}

func (f *fakeDocsRepo) SetStorageKey(ctx context.Context, id int64, key string) error {
	return f.mutate(id, func(d *models.Document) { d.StorageKey = key })
}

func (f *fakeDocsRepo) SetSignatureData(ctx context.Context, id int64, data string) error {
	return f.mutate(id, func(d *models.Document) { d.SignatureData = data })
}

func (f *fakeDocsRepo) get(id int64) models.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.docs[id]
}

// --- verification records ---

type fakeVerifsRepo struct {
	mu     sync.Mutex
	byDoc  map[int64]*models.VerificationRecord
	byCode map[string]*models.VerificationRecord

	// createErrs is consumed one per Create call before the insert happens.
	createErrs []error
	creates    int
	getErr     error
	// onCreate runs under the lock before each insert.
	onCreate func()
}

func newFakeVerifs(recs ...*models.VerificationRecord) *fakeVerifsRepo {
	f := &fakeVerifsRepo{byDoc: map[int64]*models.VerificationRecord{}, byCode: map[string]*models.VerificationRecord{}}
	for _, r := range recs {
		f.byDoc[r.DocumentID] = r
		f.byCode[r.Code] = r
	}
	return f
}

func (f *fakeVerifsRepo) Create(ctx context.Context, rec *models.VerificationRecord) (*models.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.onCreate != nil {
		f.onCreate()
	}
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if _, ok := f.byCode[rec.Code]; ok {
		return nil, common.ErrCodeConflict
	}
	if _, ok := f.byDoc[rec.DocumentID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	rec.CreatedAt = time.Now()
	cp := *rec
	f.byDoc[rec.DocumentID] = &cp
	f.byCode[rec.Code] = &cp
	return rec, nil
}

func (f *fakeVerifsRepo) GetByCode(ctx context.Context, code string) (*models.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.byCode[code]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeVerifsRepo) GetByDocumentID(ctx context.Context, documentID int64) (*models.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.byDoc[documentID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

// --- signature records ---

type fakeSigsRepo struct {
	mu      sync.Mutex
	recs    []verification.SignatureRecord
	nextID  int64
	listErr error
}

func (f *fakeSigsRepo) Create(ctx context.Context, rec *verification.SignatureRecord) (*verification.SignatureRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = f.nextID
	f.recs = append(f.recs, *rec)
	return rec, nil
}

func (f *fakeSigsRepo) ListByDocument(ctx context.Context, documentID int64) ([]verification.SignatureRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []verification.SignatureRecord
	for _, r := range f.recs {
		if r.DocumentID == documentID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	d *fakeDocsRepo
	v *fakeVerifsRepo
	s *fakeSigsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Documents(db dbx.DBTX) documents.Repository             { return m.d }
func (m *fakeRepoManager) Verifications(db dbx.DBTX) verifications.Repository     { return m.v }
func (m *fakeRepoManager) Signatures(db dbx.DBTX) signatures.Repository           { return m.s }

// --- object store ---

type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	putErr     error
	presignErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = append([]byte(nil), body...)
	s.types[key] = contentType
	return nil
}

func (s *fakeStore) PresignGet(ctx context.Context, key string) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://s3.example/" + key + "?sig=1", nil
}
