package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/dbx"
	"github.com/hhvault/hhvault/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, ref *models.RecordReference) error {
	details, err := marshalDetails(ref.ReportDetails)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO record_refs
		   (record_id, patient_hh, cid, file_name, uploaded_at, uploader_role, uploader_hh, report_details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err = r.db.ExecContext(ctx, query,
		ref.RecordID, ref.PatientHH, ref.CID, ref.FileName, ref.UploadedAt,
		string(ref.UploaderRole), ref.UploaderHH, details)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByPatient(ctx context.Context, patientHH string) ([]models.RecordReference, error) {
	query :=
		`SELECT record_id, patient_hh, cid, file_name, uploaded_at, uploader_role, uploader_hh, report_details
		 FROM record_refs
		 WHERE patient_hh = $1
		 ORDER BY seq
		 `

	rows, err := r.db.QueryContext(ctx, query, patientHH)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.RecordReference
	for rows.Next() {
		var ref models.RecordReference
		var role string
		var details sql.NullString
		if err := rows.Scan(&ref.RecordID, &ref.PatientHH, &ref.CID, &ref.FileName,
			&ref.UploadedAt, &role, &ref.UploaderHH, &details); err != nil {
			return nil, err
		}
		ref.UploaderRole = models.Role(role)
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

func (r *PostgresRepository) DeleteByID(ctx context.Context, patientHH, recordID string) error {
	query :=
		`DELETE FROM record_refs
		 WHERE patient_hh = $1 AND record_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, patientHH, recordID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func marshalDetails(details map[string]string) (any, error) {
	if len(details) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal report_details: %w", err)
	}
	return string(b), nil
}
