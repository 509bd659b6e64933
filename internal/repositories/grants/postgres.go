package grants

import (
	"context"
	"fmt"

	"github.com/hhvault/hhvault/internal/dbx"
	"github.com/hhvault/hhvault/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, g *models.AccessGrant) error {
	query :=
		`INSERT INTO access_grants (patient_hh, doctor_hh, granted_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (patient_hh, doctor_hh) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, g.PatientHH, g.DoctorHH, g.GrantedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, patientHH, doctorHH string) error {
	query :=
		`DELETE FROM access_grants
		 WHERE patient_hh = $1 AND doctor_hh = $2
		 `

	_, err := r.db.ExecContext(ctx, query, patientHH, doctorHH)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, patientHH, doctorHH string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM access_grants WHERE patient_hh = $1 AND doctor_hh = $2
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, patientHH, doctorHH).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByPatient(ctx context.Context, patientHH string) ([]models.AccessGrant, error) {
	query :=
		`SELECT patient_hh, doctor_hh, granted_at FROM access_grants
		 WHERE patient_hh = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, patientHH)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.AccessGrant
	for rows.Next() {
		var g models.AccessGrant
		if err := rows.Scan(&g.PatientHH, &g.DoctorHH, &g.GrantedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListPatientsByDoctor(ctx context.Context, doctorHH string) ([]string, error) {
	query :=
		`SELECT patient_hh FROM access_grants
		 WHERE doctor_hh = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, doctorHH)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
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
