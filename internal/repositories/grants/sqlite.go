package grants

import (
	"context"
	"fmt"
	"time"

	"github.com/hhvault/hhvault/internal/dbx"
	"github.com/hhvault/hhvault/internal/models"
)

// SQLiteRepository implements Repository on the embedded backend.
// Timestamps are stored as RFC 3339 strings.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, g *models.AccessGrant) error {
	query := `INSERT INTO access_grants (patient_hh, doctor_hh, granted_at)
			VALUES (?, ?, ?)
			ON CONFLICT(patient_hh, doctor_hh) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		g.PatientHH, g.DoctorHH, g.GrantedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert grant: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, patientHH, doctorHH string) error {
	query := `DELETE FROM access_grants WHERE patient_hh = ? AND doctor_hh = ?`
	if _, err := r.db.ExecContext(ctx, query, patientHH, doctorHH); err != nil {
		return fmt.Errorf("failed to delete grant: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, patientHH, doctorHH string) (bool, error) {
	query := `SELECT COUNT(1) FROM access_grants WHERE patient_hh = ? AND doctor_hh = ?`

	var n int
	if err := r.db.QueryRowContext(ctx, query, patientHH, doctorHH).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to query grant: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListByPatient(ctx context.Context, patientHH string) ([]models.AccessGrant, error) {
	query := `SELECT patient_hh, doctor_hh, granted_at FROM access_grants
			WHERE patient_hh = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, patientHH)
	if err != nil {
		return nil, fmt.Errorf("failed to select grants: %w", err)
	}
	defer rows.Close()

	var result []models.AccessGrant
	for rows.Next() {
		var g models.AccessGrant
		var grantedAt string
		if err := rows.Scan(&g.PatientHH, &g.DoctorHH, &grantedAt); err != nil {
			return nil, err
		}
		g.GrantedAt, err = time.Parse(time.RFC3339Nano, grantedAt)
		if err != nil {
			return nil, fmt.Errorf("bad granted_at %q: %w", grantedAt, err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListPatientsByDoctor(ctx context.Context, doctorHH string) ([]string, error) {
	query := `SELECT patient_hh FROM access_grants WHERE doctor_hh = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, doctorHH)
	if err != nil {
		return nil, fmt.Errorf("failed to select grants: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var hh string
		if err := rows.Scan(&hh); err != nil {
			return nil, err
		}
		result = append(result, hh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
