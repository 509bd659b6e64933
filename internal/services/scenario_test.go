package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hhvault/hhvault/internal/blobstore"
	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/notify"
	"github.com/hhvault/hhvault/internal/session"
)

// Exercises the whole flow end to end on in-memory collaborators: the
// patient uploads a record and grants a doctor access, the doctor sees the
// patient and the record, the patient revokes, the doctor sees nothing.
func TestScenario_GrantUploadViewRevoke(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	ctx := context.Background()

	patient := patientIdentity("123456", "0xpatient")
	doctor := doctorIdentity("654321", "0xdoctor")

	reg := newFakeRegistry()
	reg.add(patient, "patient-pass")
	reg.add(doctor, "doctor-pass")

	signer := newFakeSigner("0xpatient")
	sessions := session.NewManager("test-secret", time.Hour)
	repos := newFakeRepoManager()
	broker := notify.NewBroker()
	blobs := blobstore.NewMemoryStore("http://gw")

	identities := NewIdentityService(reg, signer, sessions, testLogger())
	grants := NewGrantService(db, repos, reg, signer, sessions, broker, testLogger())
	records := NewRecordService(db, repos, grants, signer, sessions, broker, testLogger())
	pipeline := NewUploadPipeline(signer, blobs, records, sessions, "0.001", testLogger())

	// patient logs in and uploads scan.pdf
	_, patientToken, err := identities.Login(ctx, patient.Role, "123456", "patient-pass")
	if err != nil {
		t.Fatalf("patient login: %v", err)
	}

	events, cancelSub := broker.Subscribe()
	defer cancelSub()

	ref, err := pipeline.Run(ctx, patientToken, UploadRequest{
		FileName: "scan.pdf", Data: []byte("scan bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	drainEvents(t, events, 1)

	// patient grants the doctor
	if err := grants.Grant(ctx, patientToken, "654321"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	drainEvents(t, events, 1)

	// doctor logs in (wallet switches with the account)
	signer.addr = "0xdoctor"
	_, doctorToken, err := identities.Login(ctx, doctor.Role, "654321", "doctor-pass")
	if err != nil {
		t.Fatalf("doctor login: %v", err)
	}

	patients, err := grants.ListAuthorizedPatients(ctx, "654321")
	if err != nil || len(patients) != 1 || patients[0] != "123456" {
		t.Fatalf("authorized patients: %v err=%v", patients, err)
	}

	list, err := records.ListForDoctor(ctx, doctorToken, "123456")
	if err != nil || len(list) != 1 || list[0].FileName != "scan.pdf" {
		t.Fatalf("doctor view: %v err=%v", list, err)
	}
	if payload, err := blobs.Fetch(ctx, list[0].CID); err != nil || string(payload) != "scan bytes" {
		t.Fatalf("payload fetch: %q %v", payload, err)
	}

	// the patient logs back in and revokes
	signer.addr = "0xpatient"
	_, patientToken, err = identities.Login(ctx, patient.Role, "123456", "patient-pass")
	if err != nil {
		t.Fatalf("patient re-login: %v", err)
	}
	if err := grants.Revoke(ctx, patientToken, "654321"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// the doctor's token is stale now (principal changed) and the grant is
	// gone anyway; a fresh doctor session confirms the lost visibility
	signer.addr = "0xdoctor"
	_, doctorToken, err = identities.Login(ctx, doctor.Role, "654321", "doctor-pass")
	if err != nil {
		t.Fatalf("doctor re-login: %v", err)
	}
	if _, err := records.ListForDoctor(ctx, doctorToken, "123456"); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("after revoke: want ErrUnauthorized, got %v", err)
	}
	if patients, _ := grants.ListAuthorizedPatients(ctx, "654321"); len(patients) != 0 {
		t.Fatalf("after revoke: authorized patients %v", patients)
	}

	// the record itself survives the revoke; only visibility changed
	own, err := records.List(ctx, "123456")
	if err != nil || len(own) != 1 || own[0].RecordID != ref.RecordID {
		t.Fatalf("patient list after revoke: %v err=%v", own, err)
	}
}
