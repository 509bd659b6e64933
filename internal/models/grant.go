package models

import "time"

// AccessGrant records that a patient allowed a doctor to view their record
// list. At most one grant exists per (PatientHH, DoctorHH) pair; granting is
// idempotent and revoking removes the row entirely.
type AccessGrant struct {
	PatientHH string
	DoctorHH  string
	GrantedAt time.Time
}
