// Package records persists per-patient ordered lists of record references.
package records

import (
	"context"

	"github.com/hhvault/hhvault/internal/models"
)

// Repository is the storage port for record references. The per-patient list
// is append-only except for explicit owner deletes; ListByPatient returns
// insertion (chronological) order.
type Repository interface {
	// Append adds a reference to the end of the patient's list.
	Append(ctx context.Context, ref *models.RecordReference) error

	// ListByPatient returns the patient's references in insertion order.
	ListByPatient(ctx context.Context, patientHH string) ([]models.RecordReference, error)

	// DeleteByID removes one reference; common.ErrNotFound when absent.
	DeleteByID(ctx context.Context, patientHH, recordID string) error
}
