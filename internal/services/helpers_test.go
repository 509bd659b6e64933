package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/dbx"
	"github.com/hhvault/hhvault/internal/logging"
	"github.com/hhvault/hhvault/internal/models"
	"github.com/hhvault/hhvault/internal/notify"
	grantsrepo "github.com/hhvault/hhvault/internal/repositories/grants"
	recordsrepo "github.com/hhvault/hhvault/internal/repositories/records"
	"github.com/hhvault/hhvault/internal/session"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// newSessionWith establishes id as the live principal and returns the
// manager together with a valid token for it.
func newSessionWith(t *testing.T, id *models.Identity) (*session.Manager, string) {
	t.Helper()
	m := session.NewManager("test-secret", time.Hour)
	token, err := m.Establish(id)
	if err != nil {
		t.Fatalf("Establish error: %v", err)
	}
	return m, token
}

func patientIdentity(hh, wallet string) *models.Identity {
	return &models.Identity{Role: models.RolePatient, HHNumber: hh, WalletAddress: wallet, Name: "Test Patient"}
}

func doctorIdentity(hh, wallet string) *models.Identity {
	return &models.Identity{Role: models.RoleDoctor, HHNumber: hh, WalletAddress: wallet, Name: "Test Doctor"}
}

// --- fake signer ---

type fakeSigner struct {
	addr    string
	addrErr error

	attestErr error
	attested  []string // recipients, in call order
	changes   chan string
}

func newFakeSigner(addr string) *fakeSigner {
	return &fakeSigner{addr: addr, changes: make(chan string, 4)}
}

func (f *fakeSigner) CurrentAddress(ctx context.Context) (string, error) {
	if f.addrErr != nil {
		return "", f.addrErr
	}
	return f.addr, nil
}

func (f *fakeSigner) Attest(ctx context.Context, to, value string) (*models.AttestReceipt, error) {
	if f.attestErr != nil {
		return nil, f.attestErr
	}
	f.attested = append(f.attested, to)
	return &models.AttestReceipt{TxHash: "tx1", From: f.addr, To: to, Value: value, Height: 1}, nil
}

func (f *fakeSigner) AccountChanges() <-chan string { return f.changes }

// --- fake registry ---

type regKey struct {
	role models.Role
	hh   string
}

type fakeRegistry struct {
	identities map[regKey]*models.Identity
	passwords  map[regKey]string

	err error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		identities: make(map[regKey]*models.Identity),
		passwords:  make(map[regKey]string),
	}
}

func (f *fakeRegistry) add(id *models.Identity, password string) {
	k := regKey{id.Role, id.HHNumber}
	f.identities[k] = id
	f.passwords[k] = password
}

func (f *fakeRegistry) IsRegistered(ctx context.Context, role models.Role, hh string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.identities[regKey{role, hh}]
	return ok, nil
}

func (f *fakeRegistry) ValidatePassword(ctx context.Context, role models.Role, hh, password string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	stored, ok := f.passwords[regKey{role, hh}]
	return ok && stored == password, nil
}

func (f *fakeRegistry) GetDetails(ctx context.Context, role models.Role, hh string) (*models.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	id, ok := f.identities[regKey{role, hh}]
	if !ok {
		return nil, common.ErrNotFound
	}
	return id, nil
}

// --- in-memory repositories ---

type fakeGrantsRepo struct {
	mu     sync.Mutex
	grants []models.AccessGrant

	upsertErr error
	deleteErr error
}

func (f *fakeGrantsRepo) Upsert(ctx context.Context, g *models.AccessGrant) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.grants {
		if existing.PatientHH == g.PatientHH && existing.DoctorHH == g.DoctorHH {
			return nil
		}
	}
	f.grants = append(f.grants, *g)
	return nil
}

func (f *fakeGrantsRepo) Delete(ctx context.Context, patientHH, doctorHH string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.grants[:0]
	for _, g := range f.grants {
		if g.PatientHH != patientHH || g.DoctorHH != doctorHH {
			kept = append(kept, g)
		}
	}
	f.grants = kept
	return nil
}

func (f *fakeGrantsRepo) Exists(ctx context.Context, patientHH, doctorHH string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.grants {
		if g.PatientHH == patientHH && g.DoctorHH == doctorHH {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGrantsRepo) ListByPatient(ctx context.Context, patientHH string) ([]models.AccessGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.AccessGrant
	for _, g := range f.grants {
		if g.PatientHH == patientHH {
			result = append(result, g)
		}
	}
	return result, nil
}

func (f *fakeGrantsRepo) ListPatientsByDoctor(ctx context.Context, doctorHH string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []string
	for _, g := range f.grants {
		if g.DoctorHH == doctorHH {
			result = append(result, g.PatientHH)
		}
	}
	return result, nil
}

type fakeRecordsRepo struct {
	mu   sync.Mutex
	refs []models.RecordReference

	appendErr error
	listErr   error
}

func (f *fakeRecordsRepo) Append(ctx context.Context, ref *models.RecordReference) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs = append(f.refs, *ref)
	return nil
}

func (f *fakeRecordsRepo) ListByPatient(ctx context.Context, patientHH string) ([]models.RecordReference, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.RecordReference
	for _, r := range f.refs {
		if r.PatientHH == patientHH {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRecordsRepo) DeleteByID(ctx context.Context, patientHH, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.refs {
		if r.PatientHH == patientHH && r.RecordID == recordID {
			f.refs = append(f.refs[:i], f.refs[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeRepoManager struct {
	g *fakeGrantsRepo
	r *fakeRecordsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{g: &fakeGrantsRepo{}, r: &fakeRecordsRepo{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Grants(db dbx.DBTX) grantsrepo.Repository    { return m.g }
func (m *fakeRepoManager) Records(db dbx.DBTX) recordsrepo.Repository  { return m.r }

// --- fake blob store ---

type failStore struct{}

func (failStore) Pin(ctx context.Context, name string, data []byte) (string, error) {
	return "", errBoom{}
}
func (failStore) Fetch(ctx context.Context, cid string) ([]byte, error) {
	return nil, common.ErrNotFound
}
func (failStore) GatewayURL(cid string) string { return "" }

// --- drain helper ---

func drainEvents(t *testing.T, ch <-chan notify.Event, n int) []notify.Event {
	t.Helper()
	var events []notify.Event
	for i := 0; i < n; i++ {
		select {
		case e := <-ch:
			events = append(events, e)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
	return events
}
