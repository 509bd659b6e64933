package records

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestAppend_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+record_refs\s*\(record_id,\s*patient_hh,\s*cid,\s*file_name,\s*uploaded_at,\s*uploader_role,\s*uploader_hh,\s*report_details\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8\)\s*$`

	now := time.Now()
	mock.ExpectExec(q).
		WithArgs("r1", "123456", "cid1", "scan.pdf", now, "patient", "123456", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), &models.RecordReference{
		RecordID: "r1", PatientHH: "123456", CID: "cid1", FileName: "scan.pdf",
		UploadedAt: now, UploaderRole: models.RolePatient, UploaderHH: "123456",
	})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestAppend_WithReportDetails(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`INSERT\s+INTO\s+record_refs`).
		WithArgs("r1", "123456", "cid1", "lab.pdf", now, "doctor", "654321",
			`{"doctorName":"Dr. Bob"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), &models.RecordReference{
		RecordID: "r1", PatientHH: "123456", CID: "cid1", FileName: "lab.pdf",
		UploadedAt: now, UploaderRole: models.RoleDoctor, UploaderHH: "654321",
		ReportDetails: map[string]string{"doctorName": "Dr. Bob"},
	})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+record_refs`).
		WillReturnError(errors.New("db down"))

	err := repo.Append(context.Background(), &models.RecordReference{
		RecordID: "r1", PatientHH: "123456", CID: "c", FileName: "f", UploadedAt: time.Now(),
	})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListByPatient_ParsesDetails(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+record_id,\s*patient_hh,\s*cid,\s*file_name,\s*uploaded_at,\s*uploader_role,\s*uploader_hh,\s*report_details\s+FROM\s+record_refs\s+WHERE\s+patient_hh\s*=\s*\$1\s+ORDER\s+BY\s+seq\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"record_id", "patient_hh", "cid", "file_name", "uploaded_at", "uploader_role", "uploader_hh", "report_details",
	}).
		AddRow("r1", "123456", "cid1", "scan.pdf", now, "patient", "123456", nil).
		AddRow("r2", "123456", "cid2", "lab.pdf", now, "doctor", "654321", `{"age":"34","doctorName":"Dr. Bob"}`)

	mock.ExpectQuery(q).WithArgs("123456").WillReturnRows(rows)

	list, err := repo.ListByPatient(context.Background(), "123456")
	if err != nil {
		t.Fatalf("ListByPatient error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 records, got %d", len(list))
	}
	if list[0].ReportDetails != nil {
		t.Fatalf("patient upload must have nil details: %+v", list[0].ReportDetails)
	}
	if list[1].UploaderRole != models.RoleDoctor || list[1].ReportDetails["doctorName"] != "Dr. Bob" {
		t.Fatalf("unexpected second record: %+v", list[1])
	}
}

func TestDeleteByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+record_refs\s+WHERE\s+patient_hh\s*=\s*\$1\s+AND\s+record_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("123456", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.DeleteByID(context.Background(), "123456", "r1"); err != nil {
		t.Fatalf("DeleteByID error: %v", err)
	}

	mock.ExpectExec(q).
		WithArgs("123456", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.DeleteByID(context.Background(), "123456", "ghost"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
