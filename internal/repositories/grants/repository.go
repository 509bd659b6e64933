// Package grants persists the access-grant mapping: which doctors a patient
// has allowed to view their records.
package grants

import (
	"context"

	"github.com/hhvault/hhvault/internal/models"
)

// Repository is the storage port for access grants. Implementations must
// keep at most one row per (patient, doctor) pair and preserve insertion
// order in ListByPatient.
type Repository interface {
	// Upsert inserts the grant unless the pair already exists, in which case
	// the original GrantedAt is kept (idempotent grant).
	Upsert(ctx context.Context, g *models.AccessGrant) error

	// Delete removes the grant. Deleting an absent pair is a no-op.
	Delete(ctx context.Context, patientHH, doctorHH string) error

	// Exists reports whether the pair is currently granted.
	Exists(ctx context.Context, patientHH, doctorHH string) (bool, error)

	// ListByPatient returns the patient's grants in insertion order.
	ListByPatient(ctx context.Context, patientHH string) ([]models.AccessGrant, error)

	// ListPatientsByDoctor returns the hh numbers of all patients who have
	// granted doctorHH access, in grant insertion order.
	ListPatientsByDoctor(ctx context.Context, doctorHH string) ([]string, error)
}
