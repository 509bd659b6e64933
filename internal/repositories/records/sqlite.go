package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/dbx"
	"github.com/hhvault/hhvault/internal/models"
)

// SQLiteRepository implements Repository on the embedded backend.
// Timestamps are stored as RFC 3339 strings, report details as JSON text.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, ref *models.RecordReference) error {
	details, err := marshalDetails(ref.ReportDetails)
	if err != nil {
		return err
	}

	query := `INSERT INTO record_refs
			(record_id, patient_hh, cid, file_name, uploaded_at, uploader_role, uploader_hh, report_details)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		ref.RecordID, ref.PatientHH, ref.CID, ref.FileName,
		ref.UploadedAt.UTC().Format(time.RFC3339Nano),
		string(ref.UploaderRole), ref.UploaderHH, details)
	if err != nil {
		return fmt.Errorf("failed to insert record ref: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByPatient(ctx context.Context, patientHH string) ([]models.RecordReference, error) {
	query := `SELECT record_id, patient_hh, cid, file_name, uploaded_at, uploader_role, uploader_hh, report_details
			FROM record_refs WHERE patient_hh = ? ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, patientHH)
	if err != nil {
		return nil, fmt.Errorf("failed to select record refs: %w", err)
	}
	defer rows.Close()

	var result []models.RecordReference
	for rows.Next() {
		var ref models.RecordReference
		var role, uploadedAt string
		var details sql.NullString
		if err := rows.Scan(&ref.RecordID, &ref.PatientHH, &ref.CID, &ref.FileName,
			&uploadedAt, &role, &ref.UploaderHH, &details); err != nil {
			return nil, err
		}
		ref.UploaderRole = models.Role(role)
		ref.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt)
		if err != nil {
			return nil, fmt.Errorf("bad uploaded_at %q: %w", uploadedAt, err)
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &ref.ReportDetails); err != nil {
				return nil, fmt.Errorf("bad report_details: %w", err)
			}
		}
		result = append(result, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, patientHH, recordID string) error {
	query := `DELETE FROM record_refs WHERE patient_hh = ? AND record_id = ?`

	res, err := r.db.ExecContext(ctx, query, patientHH, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete record ref: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}
